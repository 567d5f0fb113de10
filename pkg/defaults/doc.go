/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized configuration constants for the validator.
//
// This package defines timeout values, retry parameters, cache sizes and other
// configuration defaults used across the codebase.
//
// # Categories
//
//   - HTTP client: outbound requests to the Redfish service
//   - Crawler: response cache and parallelism
//   - Server: metrics and health endpoint configuration
//   - Run: schema directory and collection limits
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/redfish-service-validator/pkg/defaults"
//
//	c, err := client.NewHTTP(url, client.WithTimeout(defaults.ClientTimeout))
package defaults
