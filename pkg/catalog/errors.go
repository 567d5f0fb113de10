/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import "fmt"

// MissingSchemaError reports a type or namespace the catalog cannot supply.
type MissingSchemaError struct {
	Namespace string
	Type      string
	Reason    string
}

func (e *MissingSchemaError) Error() string {
	target := e.Namespace
	if e.Type != "" {
		target = Qualify(e.Namespace, e.Type)
	}
	if e.Reason != "" {
		return fmt.Sprintf("missing schema for %s: %s", target, e.Reason)
	}
	return fmt.Sprintf("missing schema for %s", target)
}

// SchemaErrorKind classifies schema problems found while loading or resolving.
type SchemaErrorKind string

const (
	SchemaMissingType       SchemaErrorKind = "MissingType"
	SchemaMalformedDocument SchemaErrorKind = "MalformedDocument"
	SchemaAmbiguousVersion  SchemaErrorKind = "AmbiguousVersion"
)

// SchemaError is a non-fatal schema problem.
type SchemaError struct {
	Kind     SchemaErrorKind
	Document string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s in %s: %v", e.Kind, e.Document, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
