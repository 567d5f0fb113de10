/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() {
	s.mux = http.NewServeMux()

	// Default handler
	s.mux.HandleFunc("/", s.handleDefault)

	// System endpoints (no rate limiting)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.routes = []string{"GET /health", "GET /ready", "GET /metrics"}

	// API endpoints with middleware
	s.Mount(map[string]http.HandlerFunc{"/v1/status": s.handleStatus})
	s.Mount(s.handlers)

	s.handler = withRecovery(withRequestID(withLogging(s.mux)))
}

func (s *Server) routeList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	routes := append([]string(nil), s.routes...)
	sort.Strings(routes)
	return routes
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, errors.ErrCodeNotFound, "no route for "+r.URL.Path, false, nil)
		return
	}
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	resp := struct {
		Name      string   `json:"name" yaml:"name"`
		Version   string   `json:"version" yaml:"version"`
		Ready     bool     `json:"ready" yaml:"ready"`
		Timestamp string   `json:"timestamp" yaml:"timestamp"`
		Routes    []string `json:"routes" yaml:"routes"`
	}{
		Name:      s.name,
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    s.routeList(),
	}

	s.mu.RLock()
	resp.Ready = s.ready
	s.mu.RUnlock()

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleStatus handles GET /v1/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		WriteError(w, r, http.StatusServiceUnavailable, errors.ErrCodeUnavailable, "no run in progress", true, nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, s.status())
}
