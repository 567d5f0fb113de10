/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

// MockupHeader marks responses served from a mockup directory.
const MockupHeader = "X-Redfish-Mockup"

// Mockup serves <dir><uri>/index.json files, trying the URI with and
// without its /redfish/v1 prefix. URIs without a file go to next.
type Mockup struct {
	dir  string
	next Getter
}

// NewMockup creates a Mockup over dir. next may be nil, in which case
// missing files are reported as 404 responses.
func NewMockup(dir string, next Getter) (*Mockup, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, "mockup directory not found", err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, dir+" is not a directory")
	}
	return &Mockup{dir: dir, next: next}, nil
}

// Get implements Getter.
func (m *Mockup) Get(ctx context.Context, uri string) (*Response, error) {
	start := time.Now()
	for _, path := range m.candidates(uri) {
		body, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		resp := &Response{
			Status: http.StatusOK,
			Header: http.Header{
				"Content-Type": {"application/json"},
				MockupHeader:   {"true"},
			},
			Body:    body,
			Elapsed: time.Since(start),
			Source:  SourceMockup,
		}
		resp.decodeBody()
		slog.Debug("served from mockup", "uri", uri, "file", path)
		return resp, nil
	}
	if m.next != nil {
		return m.next.Get(ctx, uri)
	}
	return &Response{
		Status:  http.StatusNotFound,
		Header:  http.Header{},
		Elapsed: time.Since(start),
		Source:  SourceMockup,
	}, nil
}

func (m *Mockup) candidates(uri string) []string {
	base, _ := splitFragment(uri)
	base, _, _ = strings.Cut(base, "?")
	if strings.Contains(base, "://") {
		return nil
	}
	path := strings.TrimSuffix(base, "/")
	out := []string{filepath.Join(m.dir, filepath.FromSlash(path), "index.json")}
	if stripped := strings.TrimPrefix(path, "/redfish/v1"); stripped != path {
		out = append(out, filepath.Join(m.dir, filepath.FromSlash(stripped), "index.json"))
	}
	return out
}
