/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type key struct {
	namespace string
	name      string
}

// Namespace is one Schema element of a document.
type Namespace struct {
	Name      string  `json:"name" yaml:"name"`
	Base      string  `json:"base" yaml:"base"`
	Version   Version `json:"version" yaml:"version"`
	Versioned bool    `json:"versioned" yaml:"versioned"`
	Document  string  `json:"document" yaml:"document"`

	types   map[string]struct{}
	actions map[string]struct{}
}

// HasType reports whether the namespace declares a type named name.
func (n *Namespace) HasType(name string) bool {
	_, ok := n.types[name]
	return ok
}

// Reference is one edmx:Include.
type Reference struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Alias     string `json:"alias,omitempty" yaml:"alias,omitempty"`
	URI       string `json:"uri" yaml:"uri"`
}

// Document is a loaded schema file.
type Document struct {
	Name       string      `json:"name" yaml:"name"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
	Namespaces []string    `json:"namespaces" yaml:"namespaces"`
}

// Catalog holds every loaded type definition.
type Catalog struct {
	// PackVersion is the content of the optional version marker file.
	PackVersion string
	// Errors collects documents that failed to load.
	Errors []*SchemaError

	types      map[key]*TypeDef
	actions    map[key]*TypeDef
	terms      map[key]*TypeDef
	namespaces map[string]*Namespace
	byBase     map[string][]*Namespace
	aliases    map[string]string
	documents  []*Document
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		types:      make(map[key]*TypeDef),
		actions:    make(map[key]*TypeDef),
		terms:      make(map[key]*TypeDef),
		namespaces: make(map[string]*Namespace),
		byBase:     make(map[string][]*Namespace),
		aliases:    make(map[string]string),
	}
}

// LoadDirectory reads every schema document in dir. Malformed documents are
// logged and recorded in Catalog.Errors; the returned error is non-nil only
// when dir itself cannot be read.
func LoadDirectory(ctx context.Context, dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %q: %w", dir, err)
	}

	c := New()
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)

		if isVersionMarker(name) {
			if b, rerr := os.ReadFile(path); rerr == nil {
				c.PackVersion = firstLine(string(b))
			}
			continue
		}
		if !isSchemaFile(name) {
			slog.Debug("skipping non-schema file", "file", name)
			continue
		}

		if lerr := c.loadFile(path, name); lerr != nil {
			slog.Error("failed to load schema document", "file", name, "error", lerr)
			c.Errors = append(c.Errors, &SchemaError{Kind: SchemaMalformedDocument, Document: name, Err: lerr})
		}
	}

	slog.Debug("schema catalog loaded",
		"dir", dir,
		"documents", len(c.documents),
		"namespaces", len(c.namespaces),
		"types", len(c.types),
		"errors", len(c.Errors))

	return c, nil
}

func (c *Catalog) loadFile(path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.LoadDocument(name, f)
}

func isSchemaFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xml") || name == "$metadata"
}

func isVersionMarker(name string) bool {
	return !isSchemaFile(name) && strings.Contains(strings.ToLower(name), "version")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// LoadDocument parses a single CSDL document into the catalog. Nothing is
// added when the document fails to parse.
func (c *Catalog) LoadDocument(name string, r io.Reader) error {
	var raw edmxDocument
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("invalid CSDL document: %w", err)
	}
	if len(raw.DataServices.Schemas) == 0 && len(raw.References) == 0 {
		return fmt.Errorf("document has no references and no schemas")
	}

	doc := &Document{Name: name}
	for _, ref := range raw.References {
		for _, inc := range ref.Includes {
			if inc.Namespace == "" || ref.URI == "" {
				slog.Warn("ignoring incomplete schema reference", "file", name, "namespace", inc.Namespace, "uri", ref.URI)
				continue
			}
			doc.References = append(doc.References, Reference{Namespace: inc.Namespace, Alias: inc.Alias, URI: ref.URI})
			if inc.Alias != "" && inc.Alias != inc.Namespace {
				c.aliases[inc.Alias] = inc.Namespace
			}
		}
	}

	for _, s := range raw.DataServices.Schemas {
		if s.Namespace == "" {
			slog.Warn("ignoring schema without namespace", "file", name)
			continue
		}
		c.addSchema(doc, s)
		doc.Namespaces = append(doc.Namespaces, s.Namespace)
	}

	c.documents = append(c.documents, doc)
	return nil
}

func (c *Catalog) addSchema(doc *Document, s csdlSchema) {
	ns := c.namespaces[s.Namespace]
	if ns == nil {
		v, ok := ParseVersion(s.Namespace)
		ns = &Namespace{
			Name:      s.Namespace,
			Base:      BaseNamespace(s.Namespace),
			Version:   v,
			Versioned: ok,
			Document:  doc.Name,
			types:     make(map[string]struct{}),
			actions:   make(map[string]struct{}),
		}
		c.namespaces[s.Namespace] = ns
		c.indexNamespace(ns)
	}
	if s.Alias != "" && s.Alias != s.Namespace {
		c.aliases[s.Alias] = s.Namespace
	}

	add := func(t *TypeDef) {
		t.Namespace = s.Namespace
		t.Document = doc.Name
		c.types[key{s.Namespace, t.Name}] = t
		ns.types[t.Name] = struct{}{}
	}

	for _, et := range s.EntityTypes {
		add(newStructured(KindEntityType, s.Namespace, et))
	}
	for _, ct := range s.ComplexTypes {
		add(newStructured(KindComplexType, s.Namespace, ct))
	}
	for _, en := range s.EnumTypes {
		t := &TypeDef{Kind: KindEnumType, Name: en.Name, Annotations: convertAnnotations(en.Annotations)}
		t.Lifecycle = lifecycleFrom(t.Annotations)
		for _, m := range en.Members {
			t.Members = append(t.Members, EnumMember{Name: m.Name, Lifecycle: lifecycleFrom(convertAnnotations(m.Annotations))})
		}
		add(t)
	}
	for _, td := range s.TypeDefinitions {
		t := &TypeDef{Kind: KindTypeDefinition, Name: td.Name, UnderlyingType: td.UnderlyingType, Annotations: convertAnnotations(td.Annotations)}
		t.Facets = facetsFrom(t.Annotations)
		t.Lifecycle = lifecycleFrom(t.Annotations)
		add(t)
	}
	for _, a := range s.Actions {
		t := &TypeDef{Kind: KindAction, Namespace: s.Namespace, Name: a.Name, Document: doc.Name,
			Bound: strings.EqualFold(a.IsBound, "true"), Annotations: convertAnnotations(a.Annotations)}
		t.Lifecycle = lifecycleFrom(t.Annotations)
		for _, p := range a.Parameters {
			t.addProperty(newPropertyDef(t.QualifiedName(), p))
		}
		c.actions[key{s.Namespace, a.Name}] = t
		ns.actions[a.Name] = struct{}{}
	}
	for _, term := range s.Terms {
		t := &TypeDef{Kind: KindTerm, Namespace: s.Namespace, Name: term.Name, Document: doc.Name,
			UnderlyingType: term.Type, Annotations: convertAnnotations(term.Annotations)}
		t.addProperty(newPropertyDef(t.QualifiedName(), csdlProperty{
			XMLName: xml.Name{Local: "Property"}, Name: term.Name, Type: term.Type,
			Nullable: term.Nullable, Annotations: term.Annotations,
		}))
		c.terms[key{s.Namespace, term.Name}] = t
	}
}

func newStructured(kind Kind, namespace string, raw csdlStructured) *TypeDef {
	t := &TypeDef{
		Kind:        kind,
		Name:        raw.Name,
		BaseType:    raw.BaseType,
		Abstract:    strings.EqualFold(raw.Abstract, "true"),
		Annotations: convertAnnotations(raw.Annotations),
	}
	t.Lifecycle = lifecycleFrom(t.Annotations)
	owner := Qualify(namespace, raw.Name)
	for _, m := range raw.Members {
		switch m.XMLName.Local {
		case "Property", "NavigationProperty":
			t.addProperty(newPropertyDef(owner, m))
		}
	}
	return t
}

func (c *Catalog) indexNamespace(ns *Namespace) {
	list := append(c.byBase[ns.Base], ns)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Version.Compare(list[j].Version) < 0
	})
	c.byBase[ns.Base] = list
}

// Documents returns the loaded documents in load order.
func (c *Catalog) Documents() []*Document {
	return c.documents
}

// Namespace returns the namespace named name after alias resolution.
func (c *Catalog) Namespace(name string) (*Namespace, bool) {
	ns, ok := c.namespaces[c.CanonicalNamespace(name)]
	return ns, ok
}

// Namespaces returns every revision sharing base, lowest version first.
func (c *Catalog) Namespaces(base string) []*Namespace {
	return c.byBase[c.CanonicalNamespace(base)]
}

// CanonicalNamespace maps an alias to the namespace it stands for.
func (c *Catalog) CanonicalNamespace(ns string) string {
	if real, ok := c.aliases[ns]; ok {
		return real
	}
	return ns
}

// Canonical resolves the namespace part of a qualified name through the
// alias table and drops any leading '#'.
func (c *Catalog) Canonical(qualified string) string {
	q := StripCollection(stripHash(qualified))
	return Qualify(c.CanonicalNamespace(NamespaceOf(q)), TypeName(q))
}

// Lookup finds a type by exact qualified name.
func (c *Catalog) Lookup(qualified string) (*TypeDef, error) {
	q := StripCollection(stripHash(qualified))
	return c.ResolveType(NamespaceOf(q), TypeName(q), ResolveOptions{Exact: true})
}

// Action finds an action by qualified name (Namespace.Action). When the
// named namespace does not declare it, the newest revision of the family
// that does is used.
func (c *Catalog) Action(qualified string) (*TypeDef, error) {
	q := stripHash(qualified)
	ns, name := c.CanonicalNamespace(NamespaceOf(q)), TypeName(q)
	if a, ok := c.actions[key{ns, name}]; ok {
		return a, nil
	}
	family := c.byBase[BaseNamespace(ns)]
	if len(family) == 0 {
		return nil, &MissingSchemaError{Namespace: ns, Type: name, Reason: "no schema family " + BaseNamespace(ns)}
	}
	for i := len(family) - 1; i >= 0; i-- {
		if _, ok := family[i].actions[name]; ok {
			return c.actions[key{family[i].Name, name}], nil
		}
	}
	return nil, &MissingSchemaError{Namespace: ns, Type: name, Reason: "no such action"}
}

// Term finds an annotation term such as Redfish.Settings, falling back to
// the newest revision of the family that declares it.
func (c *Catalog) Term(qualified string) (*TypeDef, error) {
	q := strings.TrimPrefix(qualified, "@")
	ns, name := c.CanonicalNamespace(NamespaceOf(q)), TypeName(q)
	if t, ok := c.terms[key{ns, name}]; ok {
		return t, nil
	}
	family := c.byBase[BaseNamespace(ns)]
	for i := len(family) - 1; i >= 0; i-- {
		if t, ok := c.terms[key{family[i].Name, name}]; ok {
			return t, nil
		}
	}
	return nil, &MissingSchemaError{Namespace: ns, Type: name, Reason: "no such term"}
}

// ResolveOptions controls ResolveType.
type ResolveOptions struct {
	// Exact requires a literal namespace and name match.
	Exact bool
	// Ceiling is a version string; revisions above it are not chosen.
	// An empty or unparseable ceiling means no ceiling.
	Ceiling string
}

// ResolveType finds typeName within namespace. Without Exact, the highest
// revision of the namespace family that does not exceed opts.Ceiling and
// declares typeName is returned; when every declaring revision exceeds the
// ceiling the overall highest is returned and the substitution is logged.
func (c *Catalog) ResolveType(namespace, typeName string, opts ResolveOptions) (*TypeDef, error) {
	ns := c.CanonicalNamespace(strings.TrimPrefix(namespace, "#"))

	if opts.Exact {
		if t, ok := c.types[key{ns, typeName}]; ok {
			return t, nil
		}
		return nil, &MissingSchemaError{Namespace: ns, Type: typeName}
	}

	base := BaseNamespace(ns)
	family := c.byBase[base]
	if len(family) == 0 {
		return nil, &MissingSchemaError{Namespace: ns, Type: typeName, Reason: "no schema family " + base}
	}

	ceiling, limited := ParseVersion(opts.Ceiling)

	var best, highest *Namespace
	for _, cand := range family {
		if !cand.HasType(typeName) {
			continue
		}
		highest = cand
		if limited && cand.Version.Compare(ceiling) > 0 {
			continue
		}
		best = cand
	}

	switch {
	case best != nil:
		return c.types[key{best.Name, typeName}], nil
	case highest != nil:
		slog.Warn("no revision within version ceiling, using highest available",
			"namespace", ns,
			"type", typeName,
			"ceiling", opts.Ceiling,
			"using", highest.Name)
		return c.types[key{highest.Name, typeName}], nil
	default:
		return nil, &MissingSchemaError{Namespace: ns, Type: typeName}
	}
}

// GetHighestVersion returns the namespace of the highest revision declaring
// the local name of qualifiedType that does not exceed limit. A limit with no
// version is ignored. When nothing qualifies the unversioned base is returned.
func (c *Catalog) GetHighestVersion(qualifiedType, limit string) string {
	base := c.CanonicalNamespace(BaseNamespace(qualifiedType))
	name := TypeName(qualifiedType)
	ceiling, limited := ParseVersion(limit)

	var best *Namespace
	for _, cand := range c.byBase[base] {
		if !cand.HasType(name) {
			continue
		}
		if limited {
			if !cand.Versioned || cand.Version.Compare(ceiling) > 0 {
				continue
			}
		}
		if best == nil || cand.Version.Compare(best.Version) >= 0 {
			best = cand
		}
	}
	if best == nil {
		return base
	}
	return best.Name
}
