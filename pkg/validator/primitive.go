/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

var (
	dateTimeOffsetPattern = regexp.MustCompile(`^.*(Z|(\+|-)[0-9][0-9]:[0-9][0-9])$`)
	durationPattern       = regexp.MustCompile(`^P([0-9]+D)?(T([0-9]+H)?([0-9]+M)?([0-9]+(\.[0-9]+)?S)?)?$`)
	guidPattern           = regexp.MustCompile(`^([0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12})$`)
)

// durableNamePatterns are selected by the DurableNameFormat sibling.
var durableNamePatterns = map[string]string{
	"NAA":        `^(([0-9A-Fa-f]{2}){8}){1,2}$`,
	"FC_WWN":     `^([0-9A-Fa-f]{2}[:-]){7}([0-9A-Fa-f]{2})$`,
	"UUID":       guidPattern.String(),
	"EUI":        `^([0-9A-Fa-f]{2}[:-]){7}([0-9A-Fa-f]{2})$`,
	"NGUID":      `^([0-9A-Fa-f]{2}){16}$`,
	"MACAddress": `^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`,
}

var integerTypes = map[string]bool{
	"Edm.Int16": true,
	"Edm.Int32": true,
	"Edm.Int64": true,
	"Edm.Int":   true,
	"Edm.Byte":  true,
	"Edm.SByte": true,
}

var numberTypes = map[string]bool{
	"Edm.Decimal": true,
	"Edm.Double":  true,
	"Edm.Single":  true,
}

// number reads JSON numbers decoded either as float64 or json.Number.
// integral is false for json.Number values written with a fraction or
// exponent, even when their value is whole.
func number(v any) (f float64, integral, ok bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return float64(i), true, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false, false
		}
		return f, false, true
	case float64:
		return n, !math.IsInf(n, 0) && n == math.Trunc(n), true
	case float32:
		return float64(n), float64(n) == math.Trunc(float64(n)), true
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	default:
		return 0, false, false
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}

// checkPrimitive checks a non-null value against an Edm type and facets.
func (p *pass) checkPrimitive(edm string, v any, facets catalog.Facets) *finding {
	switch {
	case edm == "Edm.Boolean":
		if _, ok := v.(bool); !ok {
			return failf(result.ClassTypeMismatch, "expected a boolean, got %s", jsonKind(v))
		}
		return nil

	case integerTypes[edm]:
		f, integral, ok := number(v)
		if !ok || !integral {
			return failf(result.ClassTypeMismatch, "expected an integer, got %s", jsonKind(v))
		}
		return checkRange(f, facets)

	case numberTypes[edm]:
		f, _, ok := number(v)
		if !ok {
			return failf(result.ClassTypeMismatch, "expected a number, got %s", jsonKind(v))
		}
		return checkRange(f, facets)

	case edm == "Edm.Primitive" || edm == "Edm.PrimitiveType":
		if !isScalar(v) {
			return failf(result.ClassTypeMismatch, "expected a primitive value, got %s", jsonKind(v))
		}
		return nil
	}

	s, ok := v.(string)
	if !ok {
		return failf(result.ClassTypeMismatch, "expected a string, got %s", jsonKind(v))
	}

	switch edm {
	case "Edm.String":
		return p.checkString(s, facets)
	case "Edm.Guid":
		if !guidPattern.MatchString(s) {
			return failf(result.ClassPatternMismatch, "%q is not a GUID", s)
		}
	case "Edm.DateTimeOffset":
		if !dateTimeOffsetPattern.MatchString(s) {
			return failf(result.ClassPatternMismatch, "%q is not a date-time with offset", s)
		}
	case "Edm.Duration":
		if !durationPattern.MatchString(s) {
			return failf(result.ClassPatternMismatch, "%q is not an ISO 8601 duration", s)
		}
	default:
		return failf(result.ClassTypeMismatch, "unsupported primitive type %s", edm)
	}
	return nil
}

func (p *pass) checkString(s string, facets catalog.Facets) *finding {
	switch {
	case facets.Pattern != "":
		re, err := p.v.pattern(facets.Pattern)
		if err != nil {
			return warnf(result.ClassSchemaError, "pattern %q cannot be compiled: %v", facets.Pattern, err)
		}
		if !re.MatchString(s) {
			return failf(result.ClassPatternMismatch, "%q does not match %s", s, facets.Pattern)
		}
	case len(facets.Enumeration) > 0:
		for _, m := range facets.Enumeration {
			if s == m {
				return nil
			}
		}
		return failf(result.ClassPatternMismatch, "%q is not one of %s", s, strings.Join(facets.Enumeration, ", "))
	}
	return nil
}

func checkRange(f float64, facets catalog.Facets) *finding {
	if facets.Minimum != nil && f < *facets.Minimum {
		return failf(result.ClassRangeError, "%v is below the minimum %v", f, *facets.Minimum)
	}
	if facets.Maximum != nil && f > *facets.Maximum {
		return failf(result.ClassRangeError, "%v is above the maximum %v", f, *facets.Maximum)
	}
	return nil
}

// checkEnum checks membership and member lifecycle. Version-added is only
// compared when the enum belongs to the resource's own schema family.
func (p *pass) checkEnum(def *catalog.TypeDef, members []catalog.EnumMember, v any) *finding {
	s, ok := v.(string)
	if !ok {
		return failf(result.ClassTypeMismatch, "expected an enum string, got %s", jsonKind(v))
	}
	var member *catalog.EnumMember
	for i := range members {
		if members[i].Name == s {
			member = &members[i]
			break
		}
	}
	if member == nil {
		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, m.Name)
		}
		return failf(result.ClassPatternMismatch, "%q is not a member of %s (%s)", s, enumName(def), strings.Join(names, ", "))
	}

	if def != nil && !member.Lifecycle.VersionAdded.IsZero() &&
		catalog.BaseNamespace(def.Namespace) == catalog.BaseNamespace(p.resourceNamespace) {
		if ver, ok := catalog.ParseVersion(p.resourceNamespace); ok && member.Lifecycle.VersionAdded.Compare(ver) > 0 {
			return failf(result.ClassPatternMismatch, "%q was added in %s, the resource is %s", s, member.Lifecycle.VersionAdded, ver)
		}
	}
	if member.Lifecycle.Deprecated {
		msg := member.Lifecycle.DeprecatedMessage
		if msg == "" {
			msg = "no replacement given"
		}
		return warnf(result.ClassDeprecatedProperty, "enum member %q is deprecated: %s", s, msg)
	}
	return nil
}

func enumName(def *catalog.TypeDef) string {
	if def == nil {
		return "enum"
	}
	return def.QualifiedName()
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, integral, ok := number(v); ok {
		if integral {
			return "integer"
		}
		return "number"
	}
	return "unknown"
}

// mergeFacets prefers property facets over those of the type definition.
func mergeFacets(prop, typ catalog.Facets) catalog.Facets {
	out := prop
	if out.Pattern == "" {
		out.Pattern = typ.Pattern
	}
	if out.Minimum == nil {
		out.Minimum = typ.Minimum
	}
	if out.Maximum == nil {
		out.Maximum = typ.Maximum
	}
	if len(out.Enumeration) == 0 {
		out.Enumeration = typ.Enumeration
	}
	return out
}
