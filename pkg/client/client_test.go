/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/redfish/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/redfish/v1/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"@odata.id": "/redfish/v1/", "Links": {"Sessions": {"@odata.id": "/redfish/v1/SessionService/Sessions"}}}`))
	})
	return mux
}

func TestParseAuthType(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthType
		wantErr bool
	}{
		{"", AuthNone, false},
		{"none", AuthNone, false},
		{"basic", AuthBasic, false},
		{"Session", AuthSession, false},
		{"TOKEN", AuthToken, false},
		{"kerberos", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPValidation(t *testing.T) {
	_, err := NewHTTP("https://")
	assert.Error(t, err)

	_, err = NewHTTP("10.0.0.1", WithAuth(AuthBasic, "", ""))
	assert.Error(t, err)

	_, err = NewHTTP("10.0.0.1", WithToken(""))
	assert.Error(t, err)

	c, err := NewHTTP("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.1", c.BaseURL())
}

func TestGetDecodesJSON(t *testing.T) {
	mux := serviceMux(t)
	mux.HandleFunc("/redfish/v1/Chassis/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4.0", r.Header.Get("OData-Version"))
		assert.Equal(t, "", r.URL.Fragment)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"Id": "1", "PowerSlots": 5}`))
	})
	mux.HandleFunc("/redfish/v1/$metadata", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<edmx:Edmx/>`))
	})
	mux.HandleFunc("/redfish/v1/Broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Id":`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := c.Get(ctx, "/redfish/v1/Chassis/1#/Fans/0")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, SourceService, resp.Source)
	obj, ok := resp.Object()
	require.True(t, ok)
	assert.Equal(t, json.Number("5"), obj["PowerSlots"])

	resp, err = c.Get(ctx, "/redfish/v1/$metadata")
	require.NoError(t, err)
	assert.True(t, resp.IsXML())
	assert.Nil(t, resp.JSON)
	assert.Equal(t, `<edmx:Edmx/>`, string(resp.Body))

	resp, err = c.Get(ctx, "/redfish/v1/Broken")
	require.NoError(t, err)
	assert.Error(t, resp.DecodeErr)
	assert.Nil(t, resp.JSON)

	resp, err = c.Get(ctx, "/redfish/v1/Missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestBasicAuth(t *testing.T) {
	mux := serviceMux(t)
	mux.HandleFunc("/redfish/v1/Systems", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/redfish/v1", func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok, "service root is fetched without credentials")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewHTTP(srv.URL, WithAuth(AuthBasic, "admin", "secret"))
	require.NoError(t, err)
	resp, err := c.Get(context.Background(), "/redfish/v1/Systems")
	require.NoError(t, err)
	assert.True(t, resp.OK())

	_, err = c.Get(context.Background(), "/redfish/v1")
	require.NoError(t, err)

	bad, err := NewHTTP(srv.URL, WithAuth(AuthBasic, "admin", "wrong"))
	require.NoError(t, err)
	_, err = bad.Get(context.Background(), "/redfish/v1/Systems")
	var authErr *AuthenticationError
	require.True(t, stderrors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Error(), "username and password")
}

func TestTokenAuth(t *testing.T) {
	mux := serviceMux(t)
	mux.HandleFunc("/redfish/v1/Systems", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewHTTP(srv.URL, WithToken("tok"))
	require.NoError(t, err)
	resp, err := c.Get(context.Background(), "/redfish/v1/Systems")
	require.NoError(t, err)
	assert.True(t, resp.OK())

	bad, err := NewHTTP(srv.URL, WithToken("nope"))
	require.NoError(t, err)
	_, err = bad.Get(context.Background(), "/redfish/v1/Systems")
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "token")
}

func TestSessionAuth(t *testing.T) {
	var logins atomic.Int32
	mux := serviceMux(t)
	mux.HandleFunc("/redfish/v1/SessionService/Sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["UserName"] != "admin" || body["Password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		logins.Add(1)
		w.Header().Set("X-Auth-Token", "session-key")
		w.Header().Set("Location", "/redfish/v1/SessionService/Sessions/1")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/redfish/v1/Systems", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "session-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewHTTP(srv.URL, WithAuth(AuthSession, "admin", "secret"))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background(), "/redfish/v1/Systems")
		require.NoError(t, err)
		assert.True(t, resp.OK())
	}
	assert.Equal(t, int32(1), logins.Load())
	assert.Equal(t, "/redfish/v1/SessionService/Sessions/1", c.SessionLocation())

	bad, err := NewHTTP(srv.URL, WithAuth(AuthSession, "admin", "wrong"))
	require.NoError(t, err)
	_, err = bad.Get(context.Background(), "/redfish/v1/Systems")
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthSession, authErr.AuthType)
}

func TestRetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTP(url, WithRetries(2), WithRetryDelay(time.Millisecond))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/redfish/v1/Systems")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewHTTP(srv.URL, WithRateLimit(1000, 1))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := c.Get(context.Background(), "/redfish/v1/Systems")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(5), hits.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow, err := NewHTTP(srv.URL, WithRateLimit(0.001, 1))
	require.NoError(t, err)
	_, _ = slow.Get(context.Background(), "/redfish/v1/Systems")
	_, err = slow.Get(ctx, "/redfish/v1/Systems")
	assert.Error(t, err)
}

type stubGetter struct {
	calls []string
}

func (s *stubGetter) Get(_ context.Context, uri string) (*Response, error) {
	s.calls = append(s.calls, uri)
	return &Response{Status: http.StatusOK, Header: http.Header{}, Source: SourceService}, nil
}

func TestMockup(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, body string) {
		path := filepath.Join(dir, filepath.FromSlash(rel), "index.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	write("redfish/v1/Chassis/1", `{"Id": "1"}`)
	write("Systems", `{"Id": "Systems"}`)

	next := &stubGetter{}
	m, err := NewMockup(dir, next)
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := m.Get(ctx, "/redfish/v1/Chassis/1/")
	require.NoError(t, err)
	assert.Equal(t, SourceMockup, resp.Source)
	assert.Equal(t, "true", resp.Header.Get(MockupHeader))
	obj, ok := resp.Object()
	require.True(t, ok)
	assert.Equal(t, "1", obj["Id"])

	resp, err = m.Get(ctx, "/redfish/v1/Systems")
	require.NoError(t, err)
	assert.Equal(t, SourceMockup, resp.Source)

	resp, err = m.Get(ctx, "/redfish/v1/Managers")
	require.NoError(t, err)
	assert.Equal(t, SourceService, resp.Source)
	assert.Equal(t, []string{"/redfish/v1/Managers"}, next.calls)

	alone, err := NewMockup(dir, nil)
	require.NoError(t, err)
	resp, err = alone.Get(ctx, "/redfish/v1/Managers")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	_, err = NewMockup(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
