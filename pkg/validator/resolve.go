/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

var typeTag = regexp.MustCompile(`^#.+`)

// effectiveType picks the type payload is validated as. A usable
// @odata.type is resolved exactly, walking down revisions when the exact
// one is missing. Otherwise declared is resolved to the newest revision not
// above ceiling. Substitutions are recorded at the object's @odata.type.
func (p *pass) effectiveType(path string, payload map[string]any, declared, ceiling string) (*catalog.TypeTree, bool) {
	tagPath := joinPath(path, "@odata.type")

	if tag, ok := payload["@odata.type"].(string); ok && typeTag.MatchString(tag) {
		if tree, ok := p.taggedType(tagPath, tag); ok {
			return tree, true
		}
		if declared == "" {
			return nil, false
		}
		p.add(result.Entry{
			Path:    tagPath,
			Value:   tag,
			Exists:  true,
			Outcome: result.OutcomeWarn,
			Message: result.Messagef(result.ClassSchemaError, "no schema for %s, validating as %s", tag, declared),
		})
	}

	if declared == "" {
		return nil, false
	}
	ns, name := catalog.NamespaceOf(declared), catalog.TypeName(declared)
	if catalog.BaseNamespace(ceiling) != catalog.BaseNamespace(ns) {
		ceiling = ""
	}
	def, err := p.v.cat.ResolveType(ns, name, catalog.ResolveOptions{Ceiling: ceiling})
	if err != nil {
		slog.Debug("declared type not found", "type", declared, "error", err)
		return nil, false
	}
	return p.tree(def), true
}

// taggedType resolves an @odata.type value. When the exact revision is
// missing the newest lower revision of the same major version that
// declares the type is used and the substitution recorded.
func (p *pass) taggedType(tagPath, tag string) (*catalog.TypeTree, bool) {
	qualified := strings.TrimPrefix(tag, "#")
	if def, err := p.v.cat.Lookup(qualified); err == nil {
		return p.tree(def), true
	}

	ns, name := catalog.NamespaceOf(qualified), catalog.TypeName(qualified)
	want, versioned := catalog.ParseVersion(ns)
	if !versioned {
		return nil, false
	}
	family := p.v.cat.Namespaces(catalog.BaseNamespace(ns))
	for i := len(family) - 1; i >= 0; i-- {
		cand := family[i]
		if !cand.Versioned || cand.Version.Major != want.Major || cand.Version.Compare(want) >= 0 || !cand.HasType(name) {
			continue
		}
		def, err := p.v.cat.Lookup(catalog.Qualify(cand.Name, name))
		if err != nil {
			continue
		}
		p.add(result.Entry{
			Path:    tagPath,
			Value:   tag,
			Exists:  true,
			Outcome: result.OutcomeWarn,
			Message: result.Messagef(result.ClassSchemaError, "%s is not in the schema set, validating as %s", qualified, def.QualifiedName()),
		})
		return p.tree(def), true
	}
	return nil, false
}

func (p *pass) tree(def *catalog.TypeDef) *catalog.TypeTree {
	tree, err := p.v.cat.BuildTypeTree(def)
	if err != nil {
		slog.Debug("incomplete type tree", "type", def.QualifiedName(), "error", err)
	}
	return tree
}

// ceilingFor returns the revision cap for a property type declared in tree.
// A type from the same family as the object is capped at the object's
// revision; other families are capped by the resource.
func (p *pass) ceilingFor(ref string, tree *catalog.TypeTree) string {
	own := tree.Leaf().Namespace
	if catalog.BaseNamespace(own) == catalog.BaseNamespace(catalog.StripCollection(ref)) {
		return own
	}
	return p.ceiling
}
