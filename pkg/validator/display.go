/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
)

var primitiveDisplay = map[string]string{
	"Edm.Boolean":        "boolean",
	"Edm.String":         "string",
	"Edm.Guid":           "GUID",
	"Edm.DateTimeOffset": "date",
	"Edm.Duration":       "duration",
	"Edm.Decimal":        "number",
	"Edm.Double":         "number",
	"Edm.Single":         "number",
	"Edm.Int16":          "integer",
	"Edm.Int32":          "integer",
	"Edm.Int64":          "integer",
	"Edm.Int":            "integer",
	"Edm.Byte":           "integer",
	"Edm.SByte":          "integer",
	"Edm.Primitive":      "primitive",
	"Edm.PrimitiveType":  "primitive",
}

// displayType is the short type description shown next to a value.
func displayType(r *catalog.Resolved) string {
	if r == nil {
		return ""
	}
	var base string
	switch r.Kind {
	case catalog.ResolvedPrimitive:
		base = primitiveDisplay[r.Primitive]
		if base == "" {
			base = r.Primitive
		}
	case catalog.ResolvedAlias:
		base = primitiveDisplay[r.Primitive]
		if len(r.Members) > 0 || len(r.Facets.Enumeration) > 0 {
			base = "string (enum)"
		}
	case catalog.ResolvedEnum:
		base = "string (enum)"
	case catalog.ResolvedComplex:
		base = r.Def.QualifiedName()
	case catalog.ResolvedEntity:
		base = "link to: " + r.Def.Name
	}
	if r.Collection {
		return "array of: " + base
	}
	return base
}
