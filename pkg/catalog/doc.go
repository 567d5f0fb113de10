/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package catalog loads CSDL schema documents into a versioned type graph.
//
// # Overview
//
// A Catalog is an arena of type definitions addressed by (namespace, name).
// Namespaces that share an unversioned base (Chassis, Chassis.v1_0_0,
// Chassis.v1_2_3) coexist and are indexed by base so callers can pick the
// best revision for a payload:
//
//	cat, err := catalog.LoadDirectory(ctx, "./SchemaFiles/metadata")
//	if err != nil {
//	    return err
//	}
//	def, err := cat.ResolveType("Chassis.v1_2_0", "Chassis", catalog.ResolveOptions{})
//	tree, err := cat.BuildTypeTree(def)
//
// Base type references are lookups into the arena, never pointers, so the
// logical type graph may contain cycles while ownership does not. Type
// trees stop at a repeated (namespace, name) pair or after MaxTreeDepth
// hops.
//
// # Concurrency
//
// A Catalog is immutable once loading returns and is safe for concurrent
// readers.
package catalog
