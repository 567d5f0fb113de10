/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"log/slog"
	"strings"
)

// MaxTreeDepth bounds base type traversal. Schemas with many minor and
// errata revisions (Chassis, ComputerSystem) chain dozens of types.
const MaxTreeDepth = 1000

// TypeTree is a type and its ancestors, most-derived first.
type TypeTree struct {
	// Types holds the declared ancestors starting with the leaf.
	Types []*TypeDef
	// Primitive is the terminal Edm type when the chain ends in one.
	Primitive string

	props []*PropertyDef
	index map[string]int
}

// BuildTypeTree follows BaseType (UnderlyingType for TypeDefinitions) from t
// to the root. The walk stops at a repeated type. The tree built so far is
// returned together with a MissingSchemaError when an ancestor is absent.
func (c *Catalog) BuildTypeTree(t *TypeDef) (*TypeTree, error) {
	tree := &TypeTree{Types: []*TypeDef{t}}
	seen := map[string]struct{}{t.QualifiedName(): {}}

	cur := t
	for depth := 0; depth < MaxTreeDepth; depth++ {
		next := cur.BaseType
		if cur.Kind == KindTypeDefinition || cur.Kind == KindTerm {
			next = cur.UnderlyingType
		}
		if next == "" {
			tree.mergeProperties()
			return tree, nil
		}
		if IsPrimitive(next) {
			tree.Primitive = StripCollection(next)
			tree.mergeProperties()
			return tree, nil
		}

		parent, err := c.Lookup(next)
		if err != nil {
			tree.mergeProperties()
			return tree, err
		}
		if _, dup := seen[parent.QualifiedName()]; dup {
			slog.Error("type hierarchy contains a loop", "type", t.QualifiedName(), "repeated", parent.QualifiedName())
			tree.mergeProperties()
			return tree, nil
		}
		seen[parent.QualifiedName()] = struct{}{}
		tree.Types = append(tree.Types, parent)
		cur = parent
	}

	slog.Error("type hierarchy exceeds maximum depth", "type", t.QualifiedName(), "depth", MaxTreeDepth)
	tree.mergeProperties()
	return tree, nil
}

// mergeProperties walks root to leaf so the most-derived declaration wins
// while ancestor ordering is kept.
func (tt *TypeTree) mergeProperties() {
	tt.props = nil
	tt.index = make(map[string]int)
	for i := len(tt.Types) - 1; i >= 0; i-- {
		for _, p := range tt.Types[i].Properties {
			if at, ok := tt.index[p.Name]; ok {
				tt.props[at] = p
				continue
			}
			tt.index[p.Name] = len(tt.props)
			tt.props = append(tt.props, p)
		}
	}
}

// Leaf returns the most-derived type.
func (tt *TypeTree) Leaf() *TypeDef {
	return tt.Types[0]
}

// Names returns the qualified names in the tree, leaf first, followed by the
// terminal primitive when present.
func (tt *TypeTree) Names() []string {
	out := make([]string, 0, len(tt.Types)+1)
	for _, t := range tt.Types {
		out = append(out, t.QualifiedName())
	}
	if tt.Primitive != "" {
		out = append(out, tt.Primitive)
	}
	return out
}

// Contains reports whether qualified names a type in the tree.
func (tt *TypeTree) Contains(qualified string) bool {
	q := StripCollection(stripHash(qualified))
	for _, t := range tt.Types {
		if t.QualifiedName() == q {
			return true
		}
	}
	return tt.Primitive != "" && tt.Primitive == q
}

// ContainsName reports whether any type in the tree has the given unversioned
// base and local name, e.g. ("Resource", "OemObject").
func (tt *TypeTree) ContainsName(base, name string) bool {
	for _, t := range tt.Types {
		if t.Name == name && BaseNamespace(t.Namespace) == base {
			return true
		}
	}
	return false
}

// Properties returns the merged property set.
func (tt *TypeTree) Properties() []*PropertyDef {
	return tt.props
}

// Property returns the merged property named name.
func (tt *TypeTree) Property(name string) *PropertyDef {
	if i, ok := tt.index[name]; ok {
		return tt.props[i]
	}
	return nil
}

// nearest returns the annotation from the most-derived type declaring term.
func (tt *TypeTree) nearest(term string) (Annotation, bool) {
	for _, t := range tt.Types {
		if a, ok := t.Annotations[term]; ok {
			return a, true
		}
	}
	return Annotation{}, false
}

// URIs returns the Redfish.Uris patterns of the nearest declaring type.
func (tt *TypeTree) URIs() []string {
	a, _ := tt.nearest(TermURIs)
	return a.Strings
}

// DeprecatedURIs returns the Redfish.DeprecatedURIs of the nearest declaring type.
func (tt *TypeTree) DeprecatedURIs() []string {
	a, _ := tt.nearest(TermDeprecatedURIs)
	return a.Strings
}

// AdditionalProperties reports OData.AdditionalProperties of the nearest
// declaring type. Types without the annotation do not allow additional
// properties.
func (tt *TypeTree) AdditionalProperties() bool {
	a, ok := tt.nearest(TermAdditionalProperties)
	return ok && a.BoolValue()
}

// DynamicPattern returns the Redfish.DynamicPropertyPatterns descriptor of
// the nearest declaring type, or nil.
func (tt *TypeTree) DynamicPattern() *DynamicPattern {
	a, ok := tt.nearest(TermDynamicProperties)
	if !ok {
		return nil
	}
	for _, r := range a.Records {
		pattern, hasPattern := r["Pattern"]
		typ, hasType := r["Type"]
		if hasPattern && hasType {
			return &DynamicPattern{Pattern: pattern, Type: typ}
		}
		if hasPattern != hasType {
			slog.Warn("dynamic property pattern needs both Pattern and Type", "type", tt.Leaf().QualifiedName())
		}
	}
	return nil
}

// Capabilities are the Capabilities restrictions of a resource type.
type Capabilities struct {
	Insertable bool `json:"insertable" yaml:"insertable"`
	Updatable  bool `json:"updatable" yaml:"updatable"`
	Deletable  bool `json:"deletable" yaml:"deletable"`
}

// Capabilities resolves each restriction term from its nearest declaring type.
func (tt *TypeTree) Capabilities() Capabilities {
	var caps Capabilities
	if a, ok := tt.nearest(TermInsertRestrictions); ok {
		caps.Insertable, _ = a.RecordBool("Insertable")
	}
	if a, ok := tt.nearest(TermUpdateRestrictions); ok {
		caps.Updatable, _ = a.RecordBool("Updatable")
	}
	if a, ok := tt.nearest(TermDeleteRestrictions); ok {
		caps.Deletable, _ = a.RecordBool("Deletable")
	}
	return caps
}

// AllowedMethods lists the HTTP methods the capabilities permit.
func (tt *TypeTree) AllowedMethods() []string {
	caps := tt.Capabilities()
	methods := []string{"GET", "HEAD"}
	if caps.Insertable {
		methods = append(methods, "POST")
	}
	if caps.Updatable {
		methods = append(methods, "PATCH", "PUT")
	}
	if caps.Deletable {
		methods = append(methods, "DELETE")
	}
	return methods
}

// ResolvedKind is the tagged union discriminator for property types.
type ResolvedKind int

const (
	ResolvedPrimitive ResolvedKind = iota
	ResolvedEnum
	ResolvedComplex
	ResolvedEntity
	ResolvedAlias
)

func (k ResolvedKind) String() string {
	switch k {
	case ResolvedPrimitive:
		return "primitive"
	case ResolvedEnum:
		return "enum"
	case ResolvedComplex:
		return "complex"
	case ResolvedEntity:
		return "entity"
	case ResolvedAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Resolved is a type reference resolved once into its kind and the data
// that kind needs.
type Resolved struct {
	Kind       ResolvedKind
	Ref        string
	Collection bool

	// Primitive is the Edm type for primitives and aliases.
	Primitive string
	// Def is the declaring type for enums, complex, entity and alias kinds.
	Def *TypeDef
	// Tree is set for complex and entity kinds.
	Tree *TypeTree
	// Facets merges TypeDefinition restrictions along an alias chain.
	Facets Facets
	// Members of an enum.
	Members []EnumMember
}

// QualifiedName returns the resolved definition name or the primitive.
func (r *Resolved) QualifiedName() string {
	if r.Def != nil {
		return r.Def.QualifiedName()
	}
	return r.Primitive
}

// Resolve resolves a type reference. Complex types are upgraded to the
// highest revision not above ceiling when ceiling belongs to the same
// namespace family; otherwise the highest revision is used.
func (c *Catalog) Resolve(ref, ceiling string) (*Resolved, error) {
	elem := StripCollection(ref)
	out := &Resolved{Ref: ref, Collection: IsCollection(ref)}

	if IsPrimitive(elem) {
		out.Kind = ResolvedPrimitive
		out.Primitive = elem
		return out, nil
	}

	def, err := c.Lookup(elem)
	if err != nil {
		return nil, err
	}

	switch def.Kind {
	case KindEnumType:
		out.Kind = ResolvedEnum
		out.Def = def
		out.Members = def.Members
		return out, nil

	case KindTypeDefinition:
		out.Kind = ResolvedAlias
		out.Def = def
		facets := def.Facets
		cur := def
		for depth := 0; depth < MaxTreeDepth; depth++ {
			under := cur.UnderlyingType
			if IsPrimitive(under) || under == "" {
				out.Primitive = StripCollection(under)
				break
			}
			next, lerr := c.Lookup(under)
			if lerr != nil {
				return nil, lerr
			}
			if next.Kind == KindEnumType {
				out.Members = next.Members
				out.Primitive = "Edm.String"
				break
			}
			facets = facets.merge(next.Facets)
			cur = next
		}
		out.Facets = facets
		return out, nil

	case KindComplexType:
		out.Kind = ResolvedComplex
		def = c.upgrade(def, ceiling)

	case KindEntityType:
		out.Kind = ResolvedEntity

	default:
		return nil, &MissingSchemaError{Namespace: def.Namespace, Type: def.Name, Reason: "not a value type: " + def.Kind.String()}
	}

	tree, err := c.BuildTypeTree(def)
	if err != nil {
		slog.Debug("incomplete type tree", "type", def.QualifiedName(), "error", err)
	}
	out.Def = def
	out.Tree = tree
	return out, nil
}

// upgrade picks the best revision of a complex type. An abstract type in an
// unversioned namespace (Settings.Settings) moves to its newest concrete
// revision; a type only declared unversioned (Resource.Status) stays put.
func (c *Catalog) upgrade(def *TypeDef, ceiling string) *TypeDef {
	ns, ok := c.namespaces[def.Namespace]
	if !ok {
		return def
	}
	limit := ""
	if ceiling != "" && BaseNamespace(ceiling) == ns.Base {
		limit = ceiling
	}
	best, err := c.ResolveType(def.Namespace, def.Name, ResolveOptions{Ceiling: limit})
	if err != nil || best == nil {
		return def
	}
	if strings.EqualFold(best.Namespace, def.Namespace) {
		return def
	}
	return best
}
