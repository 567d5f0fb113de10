/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer writes reports and other values as JSON, YAML or
// aligned text tables.
//
// Destinations are chosen by NewFileWriterOrStdout:
//
//	-                      stdout
//	/path/report.json      a file
//	cm://namespace/name    a Kubernetes ConfigMap
//
// A *result.Report rendered as a table lists the run summary, one row per
// resource and the WARN and FAIL entries. Other values are flattened into
// FIELD/VALUE rows.
package serializer
