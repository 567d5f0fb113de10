/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

const (
	defaultName    = "rsvctl"
	defaultVersion = "dev"
)

// StatusFunc returns the current run progress for /v1/status.
type StatusFunc func() any

// Server serves health and metrics endpoints.
type Server struct {
	cfg      *Config
	name     string
	version  string
	handlers map[string]http.HandlerFunc
	status   StatusFunc
	limiter  *rate.Limiter

	mux     *http.ServeMux
	handler http.Handler

	mu     sync.RWMutex
	ready  bool
	addr   string
	routes []string
}

// Option is a functional option for configuring Server instances.
type Option func(*Server)

// WithName sets the reported server name.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the reported version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithHandler adds rate limited API routes.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for path, h := range handlers {
			s.handlers[path] = h
		}
	}
}

// WithStatus serves fn's result at /v1/status.
func WithStatus(fn StatusFunc) Option {
	return func(s *Server) {
		s.status = fn
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		cfg:      DefaultConfig(),
		name:     defaultName,
		version:  defaultVersion,
		handlers: make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(s.cfg.RateLimit, s.cfg.RateLimitBurst)
	s.setupRoutes()
	return s
}

// Mount adds rate limited API routes to a running server. Mounting a
// path twice panics, as with http.ServeMux.
func (s *Server) Mount(handlers map[string]http.HandlerFunc) {
	for path, h := range handlers {
		s.mux.HandleFunc(path, s.withMiddleware(h))
		s.mu.Lock()
		s.routes = append(s.routes, "GET "+path)
		s.mu.Unlock()
	}
}

// SetReady marks the server ready or not ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Addr returns the address the server listens on once Run has bound it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the server's routes with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to listen on "+s.cfg.Address, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, "server failed", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	slog.Debug("shutting down metrics server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "server shutdown failed", err)
	}
	return nil
}
