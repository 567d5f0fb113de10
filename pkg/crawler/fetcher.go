/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/NVIDIA/redfish-service-validator/pkg/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
	"github.com/NVIDIA/redfish-service-validator/pkg/validator"
)

// Fetcher is a client.Getter that caches responses by canonical URI and
// collapses concurrent requests for the same URI into one fetch.
// Cached responses are read with Peek, so recency never changes and the
// oldest entry is evicted first.
type Fetcher struct {
	getter client.Getter
	cache  *lru.Cache[string, *client.Response]
	group  singleflight.Group
}

// NewFetcher wraps getter with a cache of size entries. A non-positive
// size selects defaults.CacheSize.
func NewFetcher(getter client.Getter, size int) *Fetcher {
	if size <= 0 {
		size = defaults.CacheSize
	}
	// size is positive so NewWithEvict cannot fail
	cache, _ := lru.NewWithEvict(size, func(uri string, _ *client.Response) {
		cacheEvents.WithLabelValues("evict").Inc()
		slog.Debug("evicted cached response", "uri", uri)
	})
	return &Fetcher{getter: getter, cache: cache}
}

// Get implements client.Getter. The fragment of uri is ignored.
func (f *Fetcher) Get(ctx context.Context, uri string) (*client.Response, error) {
	key := fetchKey(uri)
	if resp, ok := f.cache.Peek(key); ok {
		cacheEvents.WithLabelValues("hit").Inc()
		return resp, nil
	}

	v, err, shared := f.group.Do(key, func() (any, error) {
		if resp, ok := f.cache.Peek(key); ok {
			cacheEvents.WithLabelValues("hit").Inc()
			return resp, nil
		}
		cacheEvents.WithLabelValues("miss").Inc()
		start := time.Now()
		resp, err := f.getter.Get(ctx, key)
		if err != nil {
			return resp, err
		}
		fetchDuration.WithLabelValues(resp.Source).Observe(time.Since(start).Seconds())
		f.cache.Add(key, resp)
		return resp, nil
	})
	if shared {
		cacheEvents.WithLabelValues("shared").Inc()
	}
	resp, _ := v.(*client.Response)
	return resp, err
}

// Resolve implements validator.ReferenceResolver. It returns the object
// uri points at, following its fragment, and the HTTP status.
func (f *Fetcher) Resolve(ctx context.Context, uri string) (map[string]any, int, error) {
	resp, err := f.Get(ctx, uri)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		return nil, status, err
	}
	if !resp.OK() {
		return nil, resp.Status, nil
	}
	var node any = resp.JSON
	if _, frag := splitFragment(uri); frag != "" {
		var ok bool
		if node, ok = validator.ResolvePointer(resp.JSON, frag); !ok {
			return nil, resp.Status, fmt.Errorf("fragment %q not found in %s", frag, fetchKey(uri))
		}
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, resp.Status, fmt.Errorf("%s is not a JSON object", uri)
	}
	return obj, resp.Status, nil
}

// Len returns the number of cached responses.
func (f *Fetcher) Len() int {
	return f.cache.Len()
}

// Cached reports whether a response for uri is cached.
func (f *Fetcher) Cached(uri string) bool {
	return f.cache.Contains(fetchKey(uri))
}
