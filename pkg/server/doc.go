/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package server exposes health, readiness, progress and Prometheus
// metrics over HTTP while a validation run is in progress.
//
// Routes:
//
//	GET /           server name, version and routes
//	GET /health     liveness
//	GET /ready      readiness, 503 until SetReady(true)
//	GET /metrics    Prometheus metrics
//	GET /v1/status  run progress from the WithStatus callback
//
// Further API routes are added with WithHandler, or with Mount once the
// server runs. API routes accept GET only and are rate limited. Every
// response carries an X-Request-Id header. Errors are written as
// ErrorResponse documents.
package server
