/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package header

import (
	"fmt"
	"strings"
	"time"
)

// Kind names the document a header describes.
type Kind string

const (
	// KindValidationReport is the kind of a crawl report.
	KindValidationReport Kind = "ValidationReport"
	// KindSchemaSummary is the kind of the schema catalog listing.
	KindSchemaSummary Kind = "SchemaSummary"
)

var (
	ApiVersionDomain = "rsv.nvidia.com"
	ApiVersionV1     = "v1"
)

// Metadata keys written by the validator.
const (
	MetadataRunID         = "run-id"
	MetadataService       = "service"
	MetadataSchemaVersion = "schema-version"
	MetadataStarted       = "started"
	MetadataFinished      = "finished"
	MetadataTimestamp     = "report-timestamp"
	MetadataToolVersion   = "tool-version"
	MetadataDescription   = "description"
	MetadataMode          = "mode"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair. Empty values are dropped.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if value == "" {
			return
		}
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind and derives the APIVersion from it.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
		h.APIVersion = APIVersionFor(kind)
	}
}

// WithAPIVersion overrides the APIVersion.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a new Header with the provided options.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// APIVersionFor returns "<kind>.rsv.nvidia.com/v1".
func APIVersionFor(kind Kind) string {
	return fmt.Sprintf("%s.%s/%s", strings.ToLower(string(kind)), ApiVersionDomain, ApiVersionV1)
}

// Header carries Kubernetes-style Kind, APIVersion and Metadata for
// documents the validator emits.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the API version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs describing the run.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Set resets the header to kind and stamps the current time.
func (h *Header) Set(kind Kind) {
	h.Kind = kind
	h.APIVersion = APIVersionFor(kind)
	h.Metadata = map[string]string{
		MetadataTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
