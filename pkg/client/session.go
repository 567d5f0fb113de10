/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

const defaultSessionsURI = "/redfish/v1/SessionService/Sessions"

// session returns the session key, logging in on first use.
func (h *HTTP) session(ctx context.Context) (string, error) {
	h.sessionMu.Lock()
	defer h.sessionMu.Unlock()
	if h.sessionKey != "" {
		return h.sessionKey, nil
	}

	sessionsURI := h.sessionsURI(ctx)
	body, err := json.Marshal(map[string]string{"UserName": h.username, "Password": h.password})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to encode session request", err)
	}
	target, _, err := h.resolve(sessionsURI)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "failed to build session request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "session login failed", err)
	}
	defer resp.Body.Close()

	key := resp.Header.Get("X-Auth-Token")
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		slog.Error("session login rejected", "uri", sessionsURI, "status", resp.StatusCode)
		return "", &AuthenticationError{URI: sessionsURI, Status: resp.StatusCode, AuthType: AuthSession}
	case resp.StatusCode < 200 || resp.StatusCode > 204 || key == "":
		return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "session login returned no session", nil, map[string]any{
			"uri":    sessionsURI,
			"status": resp.StatusCode,
		})
	}

	h.sessionKey = key
	h.sessionURI = resp.Header.Get("Location")
	slog.Info("session created", "location", h.sessionURI)
	return key, nil
}

// sessionsURI reads Links.Sessions from the service root, falling back to
// the standard location.
func (h *HTTP) sessionsURI(ctx context.Context) string {
	target, _, err := h.resolve("/redfish/v1/")
	if err != nil {
		return defaultSessionsURI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return defaultSessionsURI
	}
	req.Header.Set("OData-Version", "4.0")
	resp, err := h.do(ctx, req)
	if err != nil || !resp.OK() {
		slog.Warn("could not read service root for session login, using default", "uri", defaultSessionsURI)
		return defaultSessionsURI
	}
	root, _ := resp.Object()
	links, _ := root["Links"].(map[string]any)
	sessions, _ := links["Sessions"].(map[string]any)
	if id, ok := sessions["@odata.id"].(string); ok && id != "" {
		return id
	}
	return defaultSessionsURI
}

// SessionLocation returns the Location of the active session, if any.
func (h *HTTP) SessionLocation() string {
	h.sessionMu.Lock()
	defer h.sessionMu.Unlock()
	return h.sessionURI
}
