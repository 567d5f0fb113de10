/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	crawlDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsv_crawl_duration_seconds",
			Help:    "Time taken to crawl and validate a service",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 1800},
		},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsv_fetch_duration_seconds",
			Help:    "Time taken to fetch a single resource",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"source"}, // service or mockup
	)

	resourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsv_resources_total",
			Help: "Total number of validated resources",
		},
		[]string{"status"}, // pass, warn or fail
	)

	resultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsv_results_total",
			Help: "Total number of property results",
		},
		[]string{"outcome"},
	)

	cacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsv_cache_events_total",
			Help: "Response cache events",
		},
		[]string{"event"}, // hit, miss, shared, evict
	)
)
