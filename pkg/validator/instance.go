/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
)

// Excerpt is the excerpt context of a value. The zero value is a value that
// is not part of an excerpt copy.
type Excerpt struct {
	// Copy is set while validating the inside of an excerpt copy.
	Copy bool
	// Tags are the excerpt tags of the copying property. No tags means
	// every excerpt property may appear.
	Tags []string
}

// permits reports whether a property with tags may appear in the copy.
func (e Excerpt) permits(tags []string) bool {
	if len(tags) == 0 || len(e.Tags) == 0 {
		return true
	}
	for _, t := range tags {
		for _, want := range e.Tags {
			if t == want {
				return true
			}
		}
	}
	return false
}

// Instance is a payload value bound to its property definition for one step
// of a validation pass.
type Instance struct {
	Path         string
	Name         string
	Value        any
	Exists       bool
	InCollection bool
	Excerpt      Excerpt
	Prop         *catalog.PropertyDef
	Type         *catalog.Resolved
}

// IsNull reports whether the value is present and JSON null.
func (i Instance) IsNull() bool {
	return i.Exists && i.Value == nil
}

// element returns the instance for the n-th element of a collection.
func (i Instance) element(n int, value any) Instance {
	e := i
	e.Path = fmt.Sprintf("%s[%d]", i.Path, n)
	e.Value = value
	e.Exists = true
	e.InCollection = true
	return e
}

// elementType is the type name without a Collection wrapper.
func (i Instance) elementType() string {
	if i.Prop == nil {
		return ""
	}
	return i.Prop.ElementType()
}
