/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package crawler walks a Redfish service breadth-first, validating every
// resource it reaches.
//
// A Crawler fetches the start URI, hands the payload to a validator.Validator
// and enqueues the links the validator discovers. Every canonical URI is
// validated at most once. Links into shared parts of the tree (RelatedItem,
// Redundancy, Links, OriginOfCondition) are deferred until the direct
// frontier is exhausted.
//
// Usage:
//
//	fetcher := crawler.NewFetcher(httpClient, 128)
//	v := validator.New(cat, validator.WithReferenceResolver(fetcher))
//	c := crawler.New(fetcher, v, crawler.WithMode(crawler.ModeTree))
//	report, err := c.Run(ctx, "/redfish/v1/Chassis")
//
// Responses are held in a bounded cache that evicts oldest-first, and
// concurrent requests for the same URI share one fetch. With
// WithConcurrency greater than one the frontier is processed in waves;
// results are merged in frontier order so reports match a sequential run.
package crawler
