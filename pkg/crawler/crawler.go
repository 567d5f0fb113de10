/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/redfish-service-validator/pkg/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/header"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
	"github.com/NVIDIA/redfish-service-validator/pkg/validator"
)

// Mode selects which part of the service is crawled.
type Mode string

const (
	// ModeService follows every link.
	ModeService Mode = "Service"
	// ModeTree follows links under the start URI only.
	ModeTree Mode = "Tree"
	// ModeSingle validates the start URI and nothing else.
	ModeSingle Mode = "Single"
)

// ParseMode maps a case-insensitive name to a Mode. The empty string is
// ModeService.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeService, nil
	}
	for _, m := range []Mode{ModeService, ModeTree, ModeSingle} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown mode %q, want one of Service, Tree, Single", s))
}

// collectionType captures the member type of a collection @odata.type.
var collectionType = regexp.MustCompile(`^#(.+)Collection\..+Collection$`)

// Crawler validates the resources of a service reachable from a start URI.
type Crawler struct {
	fetcher     *Fetcher
	validator   *validator.Validator
	mode        Mode
	limits      map[string]int
	cacheSize   int
	concurrency int
	agg         *result.Aggregator
	headerOpts  []header.Option
}

// Option is a functional option for configuring Crawler instances.
type Option func(*Crawler)

// WithMode sets the crawl mode. Defaults to ModeService.
func WithMode(m Mode) Option {
	return func(c *Crawler) {
		c.mode = m
	}
}

// WithCollectionLimits drops next-page links of collections whose member
// type is limited and already holds at least the limit. Defaults to the
// validator's limits, which also truncate the checked Members.
func WithCollectionLimits(limits map[string]int) Option {
	return func(c *Crawler) {
		c.limits = limits
	}
}

// WithCacheSize sets the response cache size used when the getter is not
// already a Fetcher.
func WithCacheSize(n int) Option {
	return func(c *Crawler) {
		c.cacheSize = n
	}
}

// WithConcurrency sets how many resources of a wave are fetched and
// validated in parallel. Defaults to 1.
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithAggregator collects results into agg.
func WithAggregator(agg *result.Aggregator) Option {
	return func(c *Crawler) {
		c.agg = agg
	}
}

// WithHeaderOptions adds header metadata to the report.
func WithHeaderOptions(opts ...header.Option) Option {
	return func(c *Crawler) {
		c.headerOpts = append(c.headerOpts, opts...)
	}
}

// New creates a Crawler. A getter that is a *Fetcher is used as is, so the
// validator's reference resolver and the crawler share one cache.
func New(getter client.Getter, v *validator.Validator, opts ...Option) *Crawler {
	c := &Crawler{
		validator:   v,
		mode:        ModeService,
		cacheSize:   defaults.CacheSize,
		concurrency: defaults.Concurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limits == nil && v != nil {
		c.limits = v.CollectionLimits()
	}
	if f, ok := getter.(*Fetcher); ok {
		c.fetcher = f
	} else {
		c.fetcher = NewFetcher(getter, c.cacheSize)
	}
	if c.agg == nil {
		c.agg = result.NewAggregator()
	}
	return c
}

// Fetcher returns the crawler's caching getter.
func (c *Crawler) Fetcher() *Fetcher {
	return c.fetcher
}

// outcome is the product of processing one item.
type outcome struct {
	res   *result.Resource
	links []validator.Link
}

// Run crawls from startURI (the service root when empty) and returns the
// report. Authentication failures and cancellation stop the crawl; the
// returned report then holds what was validated so far.
func (c *Crawler) Run(ctx context.Context, startURI string) (*result.Report, error) {
	start := time.Now()
	defer func() {
		crawlDuration.Observe(time.Since(start).Seconds())
	}()

	if startURI == "" {
		startURI = RootURI
	}
	startURI = Canonical(startURI)
	slog.Info("starting crawl", "start", startURI, "mode", c.mode, "concurrency", c.concurrency)

	version, err := c.serviceVersion(ctx)
	if err != nil {
		return c.report(), err
	}

	st := newState()
	st.push(item{uri: startURI})
	for {
		for len(st.queue) > 0 {
			wave := st.takeWave()
			outs, err := c.processWave(ctx, wave, version)
			for i, out := range outs {
				if out == nil {
					continue
				}
				c.record(out.res)
				if c.mode != ModeSingle {
					c.enqueue(st, wave[i], startURI, out.links)
				}
			}
			if err != nil {
				slog.Error("crawl aborted", "error", err, "validated", c.agg.Len())
				return c.report(), err
			}
		}
		if !st.promote() {
			break
		}
		slog.Debug("following deferred links", "queued", len(st.queue))
	}

	rep := c.report()
	slog.Info("crawl complete",
		"resources", rep.Summary.Resources,
		"pass", rep.Summary.Pass,
		"warn", rep.Summary.Warn,
		"fail", rep.Summary.Fail,
		"duration", time.Since(start))
	return rep, nil
}

func (c *Crawler) report() *result.Report {
	return c.agg.Report(c.headerOpts...)
}

// serviceVersion reads RedfishVersion from the service root. Only an
// authentication failure is an error.
func (c *Crawler) serviceVersion(ctx context.Context) (string, error) {
	resp, err := c.fetcher.Get(ctx, RootURI)
	if err != nil {
		if fatal(ctx, err) {
			return "", err
		}
		slog.Warn("failed to read service root", "error", err)
		return "", nil
	}
	root, ok := resp.Object()
	if !ok {
		return "", nil
	}
	version, _ := root["RedfishVersion"].(string)
	return version, nil
}

// processWave processes wave with at most c.concurrency items in flight.
// outs is indexed like wave; entries are nil for skipped items and for
// items not reached after a fatal error.
func (c *Crawler) processWave(ctx context.Context, wave []item, version string) ([]*outcome, error) {
	outs := make([]*outcome, len(wave))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, it := range wave {
		g.Go(func() error {
			out, err := c.process(gctx, it, version)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	return outs, g.Wait()
}

// process fetches and validates one item. Only fatal errors are returned;
// everything else becomes a result entry.
func (c *Crawler) process(ctx context.Context, it item, version string) (*outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "crawl cancelled", err)
	}

	res := result.NewResource(it.uri)
	res.Parent = it.parent
	resp, err := c.fetcher.Get(ctx, it.uri)
	if err != nil {
		if fatal(ctx, err) {
			return nil, err
		}
		if it.originOfCondition {
			slog.Warn("OriginOfCondition could not be fetched", "uri", it.uri, "parent", it.parent, "error", err)
			return nil, nil
		}
		slog.Warn("fetch failed", "uri", it.uri, "error", err)
		res.Fail(result.ClassPayloadError, "GET failed: %v", err)
		return &outcome{res: res}, nil
	}
	res.HTTPStatus = resp.Status
	res.Source = resp.Source

	if !resp.OK() {
		if it.originOfCondition {
			slog.Warn("OriginOfCondition could not be fetched", "uri", it.uri, "parent", it.parent, "status", resp.Status)
			return nil, nil
		}
		slog.Warn("unexpected status", "uri", it.uri, "status", resp.Status)
		res.Fail(result.ClassPayloadError, "GET returned HTTP %d %s", resp.Status, http.StatusText(resp.Status))
		return &outcome{res: res}, nil
	}
	if resp.DecodeErr != nil {
		res.Fail(result.ClassPayloadError, "%v", resp.DecodeErr)
		return &outcome{res: res}, nil
	}
	if resp.JSON == nil {
		res.Fail(result.ClassPayloadError, "response is not JSON (content type %q)", resp.ContentType())
		return &outcome{res: res}, nil
	}

	node := resp.JSON
	if _, frag := splitFragment(it.uri); frag != "" {
		var ok bool
		if node, ok = validator.ResolvePointer(resp.JSON, frag); !ok {
			res.Fail(result.ClassPayloadError, "fragment %q not found in payload", frag)
			return &outcome{res: res}, nil
		}
	}
	payload, ok := node.(map[string]any)
	if !ok {
		res.Fail(result.ClassPayloadError, "payload is not a JSON object")
		return &outcome{res: res}, nil
	}

	vr, links := c.validator.ValidateResource(ctx, validator.Resource{
		URI:                        it.uri,
		Payload:                    payload,
		Header:                     resp.Header,
		ExpectedType:               it.expectedType,
		Parent:                     it.parent,
		ServiceVersion:             version,
		InAnnotation:               it.inAnnotation,
		FromCollectionCapabilities: it.fromCapabilities,
	})
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "crawl cancelled", err)
	}
	vr.HTTPStatus = resp.Status
	vr.Source = resp.Source
	vr.Payload = payload
	return &outcome{res: vr, links: c.limitLinks(payload, links)}, nil
}

// limitLinks drops next-page links of a limited collection that already
// holds at least as many members as its limit.
func (c *Crawler) limitLinks(payload map[string]any, links []validator.Link) []validator.Link {
	if len(c.limits) == 0 {
		return links
	}
	tag, _ := payload["@odata.type"].(string)
	m := collectionType.FindStringSubmatch(tag)
	if m == nil {
		return links
	}
	limit, ok := c.limits[m[1]]
	if !ok {
		return links
	}
	members, _ := payload["Members"].([]any)
	if len(members) < limit {
		return links
	}
	out := links[:0:0]
	for _, l := range links {
		if l.Kind == validator.LinkNextPage {
			slog.Debug("collection limit reached, not following next page", "uri", l.URI, "type", m[1], "limit", limit)
			continue
		}
		out = append(out, l)
	}
	return out
}

// enqueue adds the links discovered in parent to st.
func (c *Crawler) enqueue(st *State, parent item, root string, links []validator.Link) {
	validator.SortLinks(links)
	for _, l := range links {
		if !l.Fetchable() {
			continue
		}
		if strings.Contains(l.URI, "://") {
			slog.Debug("not following external link", "uri", l.URI, "parent", parent.uri)
			continue
		}
		uri := Canonical(l.URI)
		if c.mode == ModeTree && !inTree(root, uri) {
			continue
		}
		next := item{
			uri:               uri,
			parent:            parent.uri,
			expectedType:      l.Type,
			inAnnotation:      l.InAnnotation,
			fromCapabilities:  l.FromCollectionCapabilities,
			originOfCondition: l.IsOriginOfCondition(),
		}
		if l.Deferred {
			st.deferLink(next)
			continue
		}
		st.push(next)
	}
}

// record stores res and updates the metrics.
func (c *Crawler) record(res *result.Resource) {
	if !c.agg.Add(res) {
		return
	}
	resourcesTotal.WithLabelValues(string(res.Status)).Inc()
	resultsTotal.WithLabelValues(string(result.OutcomePass)).Add(float64(res.Counts.Pass))
	resultsTotal.WithLabelValues(string(result.OutcomeWarn)).Add(float64(res.Counts.Warn))
	resultsTotal.WithLabelValues(string(result.OutcomeFail)).Add(float64(res.Counts.Fail))
	resultsTotal.WithLabelValues(string(result.OutcomeSkip)).Add(float64(res.Counts.Skip))
	if res.Failed() {
		slog.Debug("resource failed", "uri", res.URI, "failures", res.Counts.Fail)
	}
}

// fatal reports whether err stops the crawl.
func fatal(ctx context.Context, err error) bool {
	var authErr *client.AuthenticationError
	return stderrors.As(err, &authErr) || ctx.Err() != nil
}
