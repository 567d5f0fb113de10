/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/header"
)

// SchemaSummary lists a loaded schema directory.
type SchemaSummary struct {
	header.Header `json:",inline" yaml:",inline"`

	Directory   string              `json:"directory" yaml:"directory"`
	PackVersion string              `json:"packVersion,omitempty" yaml:"packVersion,omitempty"`
	Documents   []*catalog.Document `json:"documents" yaml:"documents"`
	Errors      []string            `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Summarize lists the documents of cat loaded from dir.
func Summarize(cat *catalog.Catalog, dir string) *SchemaSummary {
	s := &SchemaSummary{
		Directory:   dir,
		PackVersion: cat.PackVersion,
		Documents:   cat.Documents(),
	}
	s.Header.Set(header.KindSchemaSummary)
	for _, e := range cat.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	return s
}

// NamespaceVersions lists the versioned namespaces sharing one base.
type NamespaceVersions struct {
	Namespace string   `json:"namespace" yaml:"namespace"`
	Versions  []string `json:"versions" yaml:"versions"`
	Documents []string `json:"documents" yaml:"documents"`
}

// DescribeNamespace lists the revisions of the unversioned namespace base.
func DescribeNamespace(cat *catalog.Catalog, base string) (*NamespaceVersions, error) {
	nss := cat.Namespaces(base)
	if len(nss) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("namespace %q not found in schemas", base))
	}
	out := &NamespaceVersions{Namespace: base}
	docs := make(map[string]struct{})
	for _, ns := range nss {
		if ns.Versioned {
			out.Versions = append(out.Versions, ns.Version.String())
		}
		docs[ns.Document] = struct{}{}
	}
	for d := range docs {
		out.Documents = append(out.Documents, d)
	}
	sort.Strings(out.Documents)
	return out, nil
}

// TypeDescription is the flattened view of one type.
type TypeDescription struct {
	Type            string                `json:"type" yaml:"type"`
	Kind            string                `json:"kind" yaml:"kind"`
	Document        string                `json:"document" yaml:"document"`
	Description     string                `json:"description,omitempty" yaml:"description,omitempty"`
	LongDescription string                `json:"longDescription,omitempty" yaml:"longDescription,omitempty"`
	Ancestors       []string              `json:"ancestors,omitempty" yaml:"ancestors,omitempty"`
	URIs            []string              `json:"uris,omitempty" yaml:"uris,omitempty"`
	Members         []string              `json:"members,omitempty" yaml:"members,omitempty"`
	Properties      []PropertyDescription `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertyDescription is one property of a TypeDescription.
type PropertyDescription struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Permission string `json:"permission" yaml:"permission"`
	Required   bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	Deprecated bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// DescribeType flattens the qualified type and the properties it inherits.
func DescribeType(cat *catalog.Catalog, qualified string) (*TypeDescription, error) {
	t, err := cat.Lookup(qualified)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "type not found", err, map[string]any{"type": qualified})
	}
	tree, err := cat.BuildTypeTree(t)
	if err != nil {
		slog.Warn("type hierarchy is incomplete", "type", qualified, "error", err)
	}

	out := &TypeDescription{
		Type:            t.QualifiedName(),
		Kind:            t.Kind.String(),
		Document:        t.Document,
		Description:     t.Description(),
		LongDescription: t.LongDescription(),
		URIs:            tree.URIs(),
	}
	if names := tree.Names(); len(names) > 1 {
		out.Ancestors = names[1:]
	}
	for _, m := range t.Members {
		out.Members = append(out.Members, m.Name)
	}
	for _, p := range tree.Properties() {
		out.Properties = append(out.Properties, PropertyDescription{
			Name:       p.Name,
			Type:       p.Type,
			Permission: p.Permission.String(),
			Required:   p.Required,
			Nullable:   p.Nullable,
			Deprecated: p.Lifecycle.Deprecated,
		})
	}
	return out, nil
}
