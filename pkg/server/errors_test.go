/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	rsverrors "github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code rsverrors.ErrorCode
		want int
	}{
		{"invalid request", rsverrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"unauthorized", rsverrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"not found", rsverrors.ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", rsverrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", rsverrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", rsverrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"timeout", rsverrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{"internal", rsverrors.ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to internal", rsverrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		name string
		code rsverrors.ErrorCode
		want bool
	}{
		{"invalid request", rsverrors.ErrCodeInvalidRequest, false},
		{"unauthorized", rsverrors.ErrCodeUnauthorized, false},
		{"not found", rsverrors.ErrCodeNotFound, false},
		{"method not allowed", rsverrors.ErrCodeMethodNotAllowed, false},
		{"timeout", rsverrors.ErrCodeTimeout, true},
		{"unavailable", rsverrors.ErrCodeUnavailable, true},
		{"rate limit", rsverrors.ErrCodeRateLimitExceeded, true},
		{"internal", rsverrors.ErrCodeInternal, true},
		{"unknown defaults false", rsverrors.ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableFromCode(tt.code); got != tt.want {
				t.Fatalf("retryableFromCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMergeDetails(t *testing.T) {
	t.Run("both empty returns nil", func(t *testing.T) {
		if got := mergeDetails(nil, nil); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
		if got := mergeDetails(map[string]any{}, map[string]any{}); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
	})

	t.Run("merges and second overwrites", func(t *testing.T) {
		a := map[string]any{"a": 1, "shared": "old"}
		b := map[string]any{"b": 2, "shared": "new"}

		got := mergeDetails(a, b)
		if got == nil {
			t.Fatal("expected map, got nil")
		}
		if got["a"].(int) != 1 {
			t.Fatalf("expected a=1, got %#v", got["a"])
		}
		if got["b"].(int) != 2 {
			t.Fatalf("expected b=2, got %#v", got["b"])
		}
		if got["shared"].(string) != "new" {
			t.Fatalf("expected shared to be overwritten to 'new', got %#v", got["shared"])
		}
	})
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "3f2c1e7a-9b1d-4a51-8d0e-6d1f6c2b7a90"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, rsverrors.ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != string(rsverrors.ErrCodeInvalidRequest) {
		t.Fatalf("expected code %q, got %q", rsverrors.ErrCodeInvalidRequest, resp.Code)
	}
	if resp.Message != "bad request" {
		t.Fatalf("expected message %q, got %q", "bad request", resp.Message)
	}
	if resp.RequestID != "3f2c1e7a-9b1d-4a51-8d0e-6d1f6c2b7a90" {
		t.Fatalf("expected request id to propagate, got %q", resp.RequestID)
	}
	if resp.Retryable {
		t.Fatalf("expected retryable=false, got true")
	}
	if resp.Details == nil || resp.Details["k"].(string) != "v" {
		t.Fatalf("expected details to include k=v, got %#v", resp.Details)
	}
}

func TestWriteErrorFromErr_StructuredErrorMapsStatusAndDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	cause := stderrors.New("bmc unreachable")
	err := rsverrors.WrapWithContext(rsverrors.ErrCodeUnavailable, "request failed", cause, map[string]any{"uri": "/redfish/v1/"})

	WriteErrorFromErr(w, req, err, "fallback", map[string]any{"extra": "yes"})

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}

	if resp.Code != string(rsverrors.ErrCodeUnavailable) {
		t.Fatalf("expected code %q, got %q", rsverrors.ErrCodeUnavailable, resp.Code)
	}
	if resp.Message != "request failed" {
		t.Fatalf("expected message %q, got %q", "request failed", resp.Message)
	}
	if !resp.Retryable {
		t.Fatalf("expected retryable=true")
	}
	if resp.Details == nil {
		t.Fatalf("expected details, got nil")
	}
	if resp.Details["uri"].(string) != "/redfish/v1/" {
		t.Fatalf("expected uri=/redfish/v1/, got %#v", resp.Details["uri"])
	}
	if resp.Details["extra"].(string) != "yes" {
		t.Fatalf("expected extra=yes, got %#v", resp.Details["extra"])
	}
	if resp.Details["error"].(string) != "bmc unreachable" {
		t.Fatalf("expected error cause propagated, got %#v", resp.Details["error"])
	}
}

func TestWriteErrorFromErr_NonStructuredFallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, stderrors.New("boom"), "fallback", map[string]any{"x": "y"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != string(rsverrors.ErrCodeInternal) {
		t.Fatalf("expected code %q, got %q", rsverrors.ErrCodeInternal, resp.Code)
	}
	if !resp.Retryable {
		t.Fatalf("expected retryable=true")
	}
	if resp.Details == nil || resp.Details["x"].(string) != "y" {
		t.Fatalf("expected details to include x=y, got %#v", resp.Details)
	}
	if resp.Details["error"].(string) != "boom" {
		t.Fatalf("expected details error=boom, got %#v", resp.Details["error"])
	}
}

func TestWriteError_GeneratesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusNotFound, rsverrors.ErrCodeNotFound, "missing", false, nil)

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.RequestID == "" {
		t.Fatal("expected a generated request id")
	}
	if resp.Details != nil {
		t.Fatalf("expected no details, got %#v", resp.Details)
	}
}
