/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks Redfish JSON payloads against the schema catalog.
//
// # Overview
//
// A Validator walks one payload at a time. Every property path produces at
// most one result.Entry, and references to other resources are returned as
// Links for the crawler to follow. Validation never stops at the first
// problem: each check is local to its path and siblings are always visited.
//
// # Effective Type
//
// The payload's own @odata.type decides the type when present and is
// resolved exactly. When the exact revision is missing from the catalog the
// minor version is walked down (errata held at 0) until a revision resolves;
// the substitution is recorded as a SchemaError warning. Without a type tag
// the declared type of the referencing property is used, upgraded to the
// newest revision that does not exceed the enclosing resource's version.
//
// # Property Kinds
//
//   - Primitive: Edm type check, fixed format patterns for dates, durations
//     and GUIDs, schema patterns, and numeric bounds
//   - Enum: membership, deprecated members, and version-added against the
//     resource revision
//   - Complex: recursion with the same rules
//   - Entity: reference objects carrying only @odata.id, or inline
//     validation when the property is auto-expanded or an excerpt copy
//
// # Resource Checks
//
// ValidateResource adds the checks that only make sense at the root of a
// fetched resource: @odata.id against the type's URI patterns and the Id
// property, the Allow response header against the type's capabilities,
// mockup payload detection, and @Redfish.Copyright placement.
//
// # Usage
//
//	v := validator.New(cat,
//	    validator.WithOEMCheck(true),
//	    validator.WithURICheck(validator.URICheckAuto),
//	)
//	res, links := v.ValidateResource(ctx, validator.Resource{
//	    URI:     "/redfish/v1/Chassis/1",
//	    Payload: payload,
//	    Header:  resp.Header,
//	})
package validator
