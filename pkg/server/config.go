/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"os"

	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
)

// DefaultConfig returns sensible defaults. METRICS_ADDRESS overrides the
// listen address.
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         defaults.ServerAddress,
		RateLimit:       defaults.ServerRateLimit,
		RateLimitBurst:  defaults.ServerRateLimitBurst,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
	}

	if addr := os.Getenv("METRICS_ADDRESS"); addr != "" {
		cfg.Address = addr
	}

	return cfg
}
