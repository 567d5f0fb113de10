/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

// noAuthPaths are fetched without credentials.
var noAuthPaths = map[string]bool{
	"/redfish":              true,
	"/redfish/v1":           true,
	"/redfish/v1/":          true,
	"/redfish/v1/odata":     true,
	"/redfish/v1/$metadata": true,
}

// HTTP is a Getter for a live Redfish service.
type HTTP struct {
	base       *url.URL
	httpClient *http.Client
	authType   AuthType
	username   string
	password   string
	token      string
	insecure   bool
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	limiter    *rate.Limiter
	userAgent  string

	sessionMu  sync.Mutex
	sessionKey string
	sessionURI string
}

// Option configures an HTTP client.
type Option func(*HTTP)

// WithAuth sets the auth type and credentials.
func WithAuth(t AuthType, username, password string) Option {
	return func(h *HTTP) {
		h.authType = t
		h.username = username
		h.password = password
	}
}

// WithToken uses token as X-Auth-Token.
func WithToken(token string) Option {
	return func(h *HTTP) {
		h.authType = AuthToken
		h.token = token
	}
}

// WithInsecure skips TLS certificate verification.
func WithInsecure(insecure bool) Option {
	return func(h *HTTP) {
		h.insecure = insecure
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithRetries sets how often a request is retried after a transport error.
func WithRetries(n int) Option {
	return func(h *HTTP) {
		if n >= 0 {
			h.retries = n
		}
	}
}

// WithRetryDelay sets the initial backoff between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(h *HTTP) {
		h.retryDelay = d
	}
}

// WithRateLimit caps requests per second. A non-positive limit disables
// limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// NewHTTP creates a client for the service at baseURL (scheme and host).
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid service URL %q", baseURL), err)
	}
	h := &HTTP{
		base:       u,
		authType:   AuthNone,
		timeout:    defaults.ClientTimeout,
		retries:    defaults.ClientRetries,
		retryDelay: defaults.ClientRetryDelay,
		userAgent:  "rsvctl",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient == nil {
		h.httpClient = &http.Client{
			Timeout: h.timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: h.insecure}, //nolint:gosec // operator opt-in for lab BMCs
			},
		}
	}
	if (h.authType == AuthBasic || h.authType == AuthSession) && h.username == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("%s authentication requires a username", h.authType))
	}
	if h.authType == AuthToken && h.token == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "Token authentication requires a token")
	}
	return h, nil
}

// BaseURL returns the service URL.
func (h *HTTP) BaseURL() string {
	return h.base.String()
}

// Get fetches uri. Relative URIs are resolved against the service; the
// fragment is never sent.
func (h *HTTP) Get(ctx context.Context, uri string) (*Response, error) {
	target, inService, err := h.resolve(uri)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json;charset=utf-8, application/xml;q=0.9, */*;q=0.8")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("User-Agent", h.userAgent)

	credentialed := false
	if inService && !noAuthPaths[req.URL.Path] {
		credentialed, err = h.authorize(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	resp, err := h.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized && credentialed {
		slog.Error("authentication rejected", "uri", uri, "authType", h.authType)
		return resp, &AuthenticationError{URI: uri, Status: resp.Status, AuthType: h.authType}
	}
	return resp, nil
}

func (h *HTTP) resolve(uri string) (string, bool, error) {
	base, _ := splitFragment(uri)
	ref, err := url.Parse(base)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid URI %q", uri), err)
	}
	if ref.IsAbs() {
		return ref.String(), ref.Host == h.base.Host, nil
	}
	return h.base.ResolveReference(ref).String(), true, nil
}

// authorize adds credentials and reports whether any were added.
func (h *HTTP) authorize(ctx context.Context, req *http.Request) (bool, error) {
	switch h.authType {
	case AuthBasic:
		req.SetBasicAuth(h.username, h.password)
		return true, nil
	case AuthToken:
		req.Header.Set("X-Auth-Token", h.token)
		return true, nil
	case AuthSession:
		key, err := h.session(ctx)
		if err != nil {
			return false, err
		}
		req.Header.Set("X-Auth-Token", key)
		return true, nil
	}
	return false, nil
}

// do sends req, retrying transport errors with exponential backoff. HTTP
// error statuses are returned as responses.
func (h *HTTP) do(ctx context.Context, req *http.Request) (*Response, error) {
	delay := h.retryDelay
	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying request", "uri", req.URL.String(), "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.ErrCodeTimeout, "request cancelled", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
		if h.limiter != nil {
			if err := h.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(errors.ErrCodeRateLimitExceeded, "rate limiter wait failed", err)
			}
		}

		start := time.Now()
		resp, err := h.httpClient.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrCodeTimeout, "request cancelled", ctx.Err())
			}
			lastErr = err
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, defaults.ClientMaxBodySize))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		out := &Response{
			Status:  resp.StatusCode,
			Header:  resp.Header,
			Body:    body,
			Elapsed: time.Since(start),
			Source:  SourceService,
		}
		out.decodeBody()
		slog.Debug("fetched", "uri", req.URL.String(), "status", out.Status, "elapsed", out.Elapsed)
		return out, nil
	}
	return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "request failed", lastErr, map[string]any{
		"uri":      req.URL.String(),
		"attempts": h.retries + 1,
	})
}
