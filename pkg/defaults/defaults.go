/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// HTTP client.
const (
	// ClientTimeout bounds a single request to the service.
	ClientTimeout = 30 * time.Second
	// ClientRetries is how often a request is retried after a transport error.
	ClientRetries = 2
	// ClientRetryDelay is the first backoff; it doubles per retry.
	ClientRetryDelay = 500 * time.Millisecond
	// ClientMaxBodySize caps a response body.
	ClientMaxBodySize = 64 << 20
)

// Crawler.
const (
	// CacheSize is the number of responses kept by the fetcher.
	CacheSize = 128
	// Concurrency is the number of resources processed in parallel.
	Concurrency = 1
)

// Server.
const (
	ServerAddress         = ":9090"
	ServerRateLimit       = 20
	ServerRateLimitBurst  = 40
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 10 * time.Second
)

// Run.
const (
	// SchemaDir is where schema documents are looked up.
	SchemaDir = "./SchemaFiles/metadata"
	// LogEntryLimit caps members followed in LogEntry collections.
	LogEntryLimit = 20
)
