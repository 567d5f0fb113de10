/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the verdict for one entry.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeWarn Outcome = "WARN"
	OutcomeFail Outcome = "FAIL"
	OutcomeSkip Outcome = "SKIP"
)

// severity orders outcomes so a worse verdict replaces a milder one.
func (o Outcome) severity() int {
	switch o {
	case OutcomeFail:
		return 3
	case OutcomeWarn:
		return 2
	case OutcomePass:
		return 1
	default:
		return 0
	}
}

// Worse reports whether o is more severe than other.
func (o Outcome) Worse(other Outcome) bool {
	return o.severity() > other.severity()
}

// Error classes used as message prefixes.
const (
	ClassTypeMismatch       = "TypeMismatch"
	ClassPatternMismatch    = "PatternMismatch"
	ClassRangeError         = "RangeError"
	ClassRequiredMissing    = "RequiredMissing"
	ClassNullNotAllowed     = "NullNotAllowed"
	ClassUnknownProperty    = "UnknownProperty"
	ClassUriMismatch        = "UriMismatch"
	ClassActionError        = "ActionError"
	ClassExcerptError       = "ExcerptError"
	ClassPermissionError    = "PermissionError"
	ClassDeprecatedProperty = "DeprecatedProperty"
	ClassAllowHeader        = "AllowHeader"
	ClassPayloadError       = "PayloadError"
	ClassSchemaError        = "SchemaError"
	ClassOdataError         = "OdataError"
	ClassAdditionalProperty = "AdditionalProperty"
)

// Display values for non-scalar payload values.
const (
	DisplayObject        = "[Object]"
	DisplayArray         = "[Array]"
	DisplayEmptyString   = "[Empty String]"
	DisplayNull          = "[null]"
	DisplayNotPresent    = "[Not Present]"
	DisplayResourceLevel = "[Resource-level]"
)

// ResourcePath is the entry path for checks that concern the whole resource.
const ResourcePath = "@resource"

// Entry is the validation outcome for one property path.
type Entry struct {
	Path    string  `json:"path" yaml:"path"`
	Value   string  `json:"value" yaml:"value"`
	Type    string  `json:"type,omitempty" yaml:"type,omitempty"`
	Exists  bool    `json:"exists" yaml:"exists"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Messagef builds a class-prefixed message.
func Messagef(class, format string, args ...any) string {
	return class + ": " + fmt.Sprintf(format, args...)
}

// Class returns the error class prefix of the message, or "" when the
// message carries none.
func (e Entry) Class() string {
	i := strings.Index(e.Message, ":")
	if i <= 0 {
		return ""
	}
	class := e.Message[:i]
	if strings.ContainsAny(class, " \t/") {
		return ""
	}
	return class
}

// DisplayValue renders a payload value the way reports show it.
func DisplayValue(v any, exists bool) string {
	if !exists {
		return DisplayNotPresent
	}
	switch t := v.(type) {
	case nil:
		return DisplayNull
	case string:
		if t == "" {
			return DisplayEmptyString
		}
		return t
	case map[string]any:
		if id, ok := t["@odata.id"].(string); ok && len(t) == 1 {
			return "[Link to: " + id + "]"
		}
		return DisplayObject
	case []any:
		return DisplayArray
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
