/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"log/slog"
	"net/http"
	"strings"
)

// Content types written by Respond.
const (
	ContentTypeJSON  = "application/json"
	ContentTypeYAML  = "application/yaml"
	ContentTypeTable = "text/plain; charset=utf-8"
)

// RespondJSON writes data as JSON with statusCode.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	respond(w, FormatJSON, statusCode, data)
}

// Respond writes data in the format r asks for. Reports render as their
// summary and resource tables in the table format.
func Respond(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	respond(w, NegotiateFormat(r), statusCode, data)
}

// NegotiateFormat picks the response format from the format query
// parameter, then the Accept header. Defaults to JSON.
func NegotiateFormat(r *http.Request) Format {
	if r == nil {
		return FormatJSON
	}
	if f := Format(strings.ToLower(r.URL.Query().Get("format"))); f != "" && !f.IsUnknown() {
		return f
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "application/json":
			return FormatJSON
		case "application/yaml", "application/x-yaml", "text/yaml":
			return FormatYAML
		case "text/plain":
			return FormatTable
		}
	}
	return FormatJSON
}

// respond encodes the whole body before writing headers so an encoding
// error never leaves a partial response.
func respond(w http.ResponseWriter, format Format, statusCode int, data any) {
	body, err := Encode(format, data)
	if err != nil {
		slog.Error("response encoding failed", "format", format, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.contentType())
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// connection is gone
		slog.Warn("response write failed", "error", err)
	}
}
