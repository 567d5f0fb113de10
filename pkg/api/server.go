/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
	"github.com/NVIDIA/redfish-service-validator/pkg/server"
)

const name = "rsv-schema-server"

// Handler serves lookups against a loaded catalog.
type Handler struct {
	cat *catalog.Catalog
	dir string
}

// NewHandler creates a Handler over cat, loaded from dir.
func NewHandler(cat *catalog.Catalog, dir string) *Handler {
	return &Handler{cat: cat, dir: dir}
}

// Routes returns the API routes.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/schemas":    h.HandleSchemas,
		"/v1/namespaces": h.HandleNamespace,
		"/v1/types":      h.HandleType,
	}
}

// HandleSchemas handles GET /v1/schemas
func (h *Handler) HandleSchemas(w http.ResponseWriter, r *http.Request) {
	serializer.Respond(w, r, http.StatusOK, Summarize(h.cat, h.dir))
}

// HandleNamespace handles GET /v1/namespaces?name=Chassis
func (h *Handler) HandleNamespace(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("name")
	if base == "" {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest, "query parameter name is required", false, nil)
		return
	}
	out, err := DescribeNamespace(h.cat, base)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "namespace lookup failed", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, out)
}

// HandleType handles GET /v1/types?name=Chassis.v1_20_0.Chassis
func (h *Handler) HandleType(w http.ResponseWriter, r *http.Request) {
	qualified := r.URL.Query().Get("name")
	if qualified == "" {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest, "query parameter name is required", false, nil)
		return
	}
	out, err := DescribeType(h.cat, qualified)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "type lookup failed", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, out)
}

// Serve loads the schemas in schemaDir and serves them until ctx is done.
// The server reports ready once the schemas are loaded.
func Serve(ctx context.Context, schemaDir, version string, cfg *server.Config) error {
	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithConfig(cfg),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	cat, err := catalog.LoadDirectory(ctx, schemaDir)
	if err != nil {
		slog.Error("failed to load schemas", "dir", schemaDir, "error", err)
		return err
	}
	slog.Info("schemas loaded", "dir", schemaDir, "documents", len(cat.Documents()), "version", cat.PackVersion)
	s.Mount(NewHandler(cat, schemaDir).Routes())
	s.SetReady(true)

	if err := <-errCh; err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
