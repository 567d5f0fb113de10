/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Getter fetches one URI.
type Getter interface {
	Get(ctx context.Context, uri string) (*Response, error)
}

// Response sources.
const (
	SourceService = "service"
	SourceMockup  = "mockup"
)

// Response is a fetched resource. JSON is set when the content type is
// application/json and the body decodes; numbers decode as json.Number.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	JSON    any
	Elapsed time.Duration
	Source  string
	// DecodeErr is set when a JSON content type carried an invalid body.
	DecodeErr error
}

// ContentType returns the media type without parameters.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	}
	return mt
}

// IsXML reports whether the body is a CSDL or other XML document.
func (r *Response) IsXML() bool {
	ct := r.ContentType()
	return ct == "application/xml" || ct == "text/xml"
}

// Object returns the decoded JSON when it is an object.
func (r *Response) Object() (map[string]any, bool) {
	if r == nil {
		return nil, false
	}
	obj, ok := r.JSON.(map[string]any)
	return obj, ok
}

// OK reports a 200 response.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// decodeBody fills JSON for JSON content types.
func (r *Response) decodeBody() {
	ct := r.ContentType()
	if ct != "application/json" && !strings.HasSuffix(ct, "+json") {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		r.DecodeErr = fmt.Errorf("invalid JSON body: %w", err)
		return
	}
	r.JSON = v
}

// AuthType selects how requests are authenticated.
type AuthType string

const (
	AuthNone    AuthType = "None"
	AuthBasic   AuthType = "Basic"
	AuthSession AuthType = "Session"
	AuthToken   AuthType = "Token"
)

// ParseAuthType maps a case-insensitive name to an AuthType.
func ParseAuthType(s string) (AuthType, error) {
	for _, t := range []AuthType{AuthNone, AuthBasic, AuthSession, AuthToken} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	if s == "" {
		return AuthNone, nil
	}
	return "", fmt.Errorf("unknown auth type %q, want one of None, Basic, Session, Token", s)
}

// AuthenticationError reports rejected credentials. It aborts a crawl.
type AuthenticationError struct {
	URI      string
	Status   int
	AuthType AuthType
}

func (e *AuthenticationError) Error() string {
	what := "username and password"
	if e.AuthType == AuthToken {
		what = "token"
	}
	return fmt.Sprintf("error accessing %s: HTTP %d %s, check the %s supplied for %s authentication",
		e.URI, e.Status, http.StatusText(e.Status), what, e.AuthType)
}

// splitFragment separates a URI from its #fragment.
func splitFragment(uri string) (string, string) {
	base, frag, _ := strings.Cut(uri, "#")
	return base, frag
}
