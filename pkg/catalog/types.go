/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"strconv"
	"strings"
)

// Annotation terms understood by the catalog.
const (
	TermRequired             = "Redfish.Required"
	TermPermissions          = "OData.Permissions"
	TermAutoExpand           = "OData.AutoExpand"
	TermDeprecated           = "Redfish.Deprecated"
	TermRevisions            = "Redfish.Revisions"
	TermExcerptCopy          = "Redfish.ExcerptCopy"
	TermExcerpt              = "Redfish.Excerpt"
	TermExcerptCopyOnly      = "Redfish.ExcerptCopyOnly"
	TermAdditionalProperties = "OData.AdditionalProperties"
	TermDynamicProperties    = "Redfish.DynamicPropertyPatterns"
	TermURIs                 = "Redfish.Uris"
	TermDeprecatedURIs       = "Redfish.DeprecatedURIs"
	TermInsertRestrictions   = "Capabilities.InsertRestrictions"
	TermUpdateRestrictions   = "Capabilities.UpdateRestrictions"
	TermDeleteRestrictions   = "Capabilities.DeleteRestrictions"
	TermPattern              = "Validation.Pattern"
	TermMinimum              = "Validation.Minimum"
	TermMaximum              = "Validation.Maximum"
	TermEnumeration          = "Redfish.Enumeration"
	TermDescription          = "OData.Description"
	TermLongDescription      = "OData.LongDescription"
)

// Kind is the declaration element a TypeDef came from.
type Kind int

const (
	KindEntityType Kind = iota
	KindComplexType
	KindEnumType
	KindTypeDefinition
	KindAction
	KindTerm
)

func (k Kind) String() string {
	switch k {
	case KindEntityType:
		return "EntityType"
	case KindComplexType:
		return "ComplexType"
	case KindEnumType:
		return "EnumType"
	case KindTypeDefinition:
		return "TypeDefinition"
	case KindAction:
		return "Action"
	case KindTerm:
		return "Term"
	default:
		return "Unknown"
	}
}

// Permission is the OData.Permissions class of a property.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionReadWrite
	PermissionWrite
	PermissionNone
)

func (p Permission) String() string {
	switch p {
	case PermissionReadWrite:
		return "ReadWrite"
	case PermissionWrite:
		return "WriteOnly"
	case PermissionNone:
		return "None"
	default:
		return "ReadOnly"
	}
}

func parsePermission(member string) Permission {
	switch strings.TrimPrefix(member, "OData.Permission/") {
	case "ReadWrite":
		return PermissionReadWrite
	case "Write":
		return PermissionWrite
	case "None":
		return PermissionNone
	default:
		return PermissionRead
	}
}

// ExcerptKind classifies how a property takes part in excerpts.
type ExcerptKind int

const (
	// ExcerptNeutral properties are not excerpt related.
	ExcerptNeutral ExcerptKind = iota
	// ExcerptContains marks a navigation property holding an excerpt copy.
	ExcerptContains
	// ExcerptAllowed properties may appear inside excerpt copies.
	ExcerptAllowed
	// ExcerptExclusive properties appear only inside excerpt copies.
	ExcerptExclusive
)

func (e ExcerptKind) String() string {
	switch e {
	case ExcerptContains:
		return "Contains"
	case ExcerptAllowed:
		return "Allowed"
	case ExcerptExclusive:
		return "Exclusive"
	default:
		return "Neutral"
	}
}

var excerptTerms = []struct {
	term string
	kind ExcerptKind
}{
	{TermExcerptCopy, ExcerptContains},
	{TermExcerpt, ExcerptAllowed},
	{TermExcerptCopyOnly, ExcerptExclusive},
}

// Annotation is a CSDL annotation reduced to its scalar value, string
// collection and records.
type Annotation struct {
	Term    string              `json:"term" yaml:"term"`
	Value   string              `json:"value,omitempty" yaml:"value,omitempty"`
	Strings []string            `json:"strings,omitempty" yaml:"strings,omitempty"`
	Records []map[string]string `json:"records,omitempty" yaml:"records,omitempty"`
}

// BoolValue reads the annotation scalar as a boolean. A present annotation
// without a value counts as true, as for Redfish.Required.
func (a Annotation) BoolValue() bool {
	if a.Value == "" {
		return true
	}
	b, err := strconv.ParseBool(a.Value)
	return err == nil && b
}

// RecordBool reads a boolean PropertyValue from the first record.
func (a Annotation) RecordBool(property string) (bool, bool) {
	for _, r := range a.Records {
		if v, ok := r[property]; ok {
			b, err := strconv.ParseBool(v)
			return err == nil && b, true
		}
	}
	return false, false
}

// Revision is one Redfish.Revisions record.
type Revision struct {
	Kind        string  `json:"kind" yaml:"kind"`
	Version     Version `json:"version" yaml:"version"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

func parseRevisions(a Annotation) []Revision {
	out := make([]Revision, 0, len(a.Records))
	for _, r := range a.Records {
		rev := Revision{
			Kind:        strings.TrimPrefix(r["Kind"], "Redfish.RevisionKind/"),
			Description: r["Description"],
		}
		rev.Version, _ = ParseVersion(r["Version"])
		out = append(out, rev)
	}
	return out
}

// Lifecycle holds version-added and deprecation markers.
type Lifecycle struct {
	VersionAdded      Version `json:"versionAdded" yaml:"versionAdded"`
	Deprecated        bool    `json:"deprecated" yaml:"deprecated"`
	DeprecatedMessage string  `json:"deprecatedMessage,omitempty" yaml:"deprecatedMessage,omitempty"`
	DeprecatedVersion Version `json:"deprecatedVersion" yaml:"deprecatedVersion"`
}

func lifecycleFrom(ann map[string]Annotation) Lifecycle {
	var l Lifecycle
	if a, ok := ann[TermDeprecated]; ok {
		l.Deprecated = true
		l.DeprecatedMessage = a.Value
	}
	if a, ok := ann[TermRevisions]; ok {
		for _, rev := range parseRevisions(a) {
			switch rev.Kind {
			case "Added":
				l.VersionAdded = rev.Version
			case "Deprecated":
				l.Deprecated = true
				l.DeprecatedVersion = rev.Version
				if l.DeprecatedMessage == "" {
					l.DeprecatedMessage = rev.Description
				}
			}
		}
	}
	return l
}

// Facets are value restrictions from Validation and Redfish annotations.
type Facets struct {
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Enumeration []string `json:"enumeration,omitempty" yaml:"enumeration,omitempty"`
}

func facetsFrom(ann map[string]Annotation) Facets {
	var f Facets
	if a, ok := ann[TermPattern]; ok {
		f.Pattern = a.Value
	}
	f.Minimum = numberAnnotation(ann, TermMinimum)
	f.Maximum = numberAnnotation(ann, TermMaximum)
	if a, ok := ann[TermEnumeration]; ok {
		for _, r := range a.Records {
			if m := r["Member"]; m != "" {
				f.Enumeration = append(f.Enumeration, m)
			}
		}
	}
	return f
}

// merge fills unset facets in f from o.
func (f Facets) merge(o Facets) Facets {
	if f.Pattern == "" {
		f.Pattern = o.Pattern
	}
	if f.Minimum == nil {
		f.Minimum = o.Minimum
	}
	if f.Maximum == nil {
		f.Maximum = o.Maximum
	}
	if len(f.Enumeration) == 0 {
		f.Enumeration = o.Enumeration
	}
	return f
}

func numberAnnotation(ann map[string]Annotation, term string) *float64 {
	a, ok := ann[term]
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return nil
	}
	return &n
}

// PropertyDef is a Property or NavigationProperty of a structured type,
// or a Parameter of an action.
type PropertyDef struct {
	Name        string                `json:"name" yaml:"name"`
	Type        string                `json:"type" yaml:"type"`
	Owner       string                `json:"owner" yaml:"owner"`
	Collection  bool                  `json:"collection" yaml:"collection"`
	Nullable    bool                  `json:"nullable" yaml:"nullable"`
	Required    bool                  `json:"required" yaml:"required"`
	Permission  Permission            `json:"permission" yaml:"permission"`
	Navigation  bool                  `json:"navigation" yaml:"navigation"`
	AutoExpand  bool                  `json:"autoExpand" yaml:"autoExpand"`
	Excerpt     ExcerptKind           `json:"excerpt" yaml:"excerpt"`
	ExcerptTags []string              `json:"excerptTags,omitempty" yaml:"excerptTags,omitempty"`
	Facets      Facets                `json:"facets" yaml:"facets"`
	Lifecycle   Lifecycle             `json:"lifecycle" yaml:"lifecycle"`
	Annotations map[string]Annotation `json:"-" yaml:"-"`
}

// ElementType is the property type with any Collection() wrapper removed.
func (p *PropertyDef) ElementType() string {
	return StripCollection(p.Type)
}

func newPropertyDef(owner string, raw csdlProperty) *PropertyDef {
	ann := convertAnnotations(raw.Annotations)
	p := &PropertyDef{
		Name:        raw.Name,
		Type:        raw.Type,
		Owner:       owner,
		Collection:  IsCollection(raw.Type),
		Nullable:    parseNullable(raw.Nullable),
		Navigation:  raw.XMLName.Local == "NavigationProperty",
		Facets:      facetsFrom(ann),
		Lifecycle:   lifecycleFrom(ann),
		Annotations: ann,
	}
	if _, ok := ann[TermRequired]; ok {
		p.Required = true
	}
	if a, ok := ann[TermPermissions]; ok {
		p.Permission = parsePermission(a.Value)
	}
	if a, ok := ann[TermAutoExpand]; ok {
		p.AutoExpand = a.BoolValue()
	}
	for _, et := range excerptTerms {
		if a, ok := ann[et.term]; ok {
			p.Excerpt = et.kind
			p.ExcerptTags = splitTags(a.Value)
		}
	}
	return p
}

func parseNullable(s string) bool {
	return !strings.EqualFold(strings.TrimSpace(s), "false")
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// EnumMember is one member of an EnumType.
type EnumMember struct {
	Name      string    `json:"name" yaml:"name"`
	Lifecycle Lifecycle `json:"lifecycle" yaml:"lifecycle"`
}

// DynamicPattern describes Redfish.DynamicPropertyPatterns.
type DynamicPattern struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Type    string `json:"type" yaml:"type"`
}

// TypeDef is one declaration addressed by (Namespace, Name).
type TypeDef struct {
	Kind           Kind                  `json:"kind" yaml:"kind"`
	Namespace      string                `json:"namespace" yaml:"namespace"`
	Name           string                `json:"name" yaml:"name"`
	Document       string                `json:"document" yaml:"document"`
	BaseType       string                `json:"baseType,omitempty" yaml:"baseType,omitempty"`
	UnderlyingType string                `json:"underlyingType,omitempty" yaml:"underlyingType,omitempty"`
	Abstract       bool                  `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Properties     []*PropertyDef        `json:"properties,omitempty" yaml:"properties,omitempty"`
	Members        []EnumMember          `json:"members,omitempty" yaml:"members,omitempty"`
	Bound          bool                  `json:"bound,omitempty" yaml:"bound,omitempty"`
	Facets         Facets                `json:"facets" yaml:"facets"`
	Lifecycle      Lifecycle             `json:"lifecycle" yaml:"lifecycle"`
	Annotations    map[string]Annotation `json:"-" yaml:"-"`

	propIndex map[string]int
}

// QualifiedName returns Namespace.Name.
func (t *TypeDef) QualifiedName() string {
	return Qualify(t.Namespace, t.Name)
}

func (t *TypeDef) String() string {
	return t.QualifiedName()
}

// Property returns the property declared directly on t.
func (t *TypeDef) Property(name string) *PropertyDef {
	if i, ok := t.propIndex[name]; ok {
		return t.Properties[i]
	}
	return nil
}

// Annotation returns the annotation for term declared directly on t.
func (t *TypeDef) Annotation(term string) (Annotation, bool) {
	a, ok := t.Annotations[term]
	return a, ok
}

// Member returns the enum member named name.
func (t *TypeDef) Member(name string) (EnumMember, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Description returns OData.Description when present.
func (t *TypeDef) Description() string {
	return t.Annotations[TermDescription].Value
}

// LongDescription returns OData.LongDescription when present.
func (t *TypeDef) LongDescription() string {
	return t.Annotations[TermLongDescription].Value
}

func (t *TypeDef) addProperty(p *PropertyDef) {
	if t.propIndex == nil {
		t.propIndex = make(map[string]int)
	}
	if i, ok := t.propIndex[p.Name]; ok {
		t.Properties[i] = p
		return
	}
	t.propIndex[p.Name] = len(t.Properties)
	t.Properties = append(t.Properties, p)
}
