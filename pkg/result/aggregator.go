/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/redfish-service-validator/pkg/header"
)

// Aggregator accumulates resource results. It is safe for concurrent use.
type Aggregator struct {
	mu        sync.Mutex
	order     []string
	resources map[string]*Resource
	started   time.Time
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		resources: make(map[string]*Resource),
		started:   time.Now(),
	}
}

// Add stores r unless a result for the same URI is already present.
// It reports whether r was stored.
func (a *Aggregator) Add(r *Resource) bool {
	if r == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.resources[r.URI]; ok {
		return false
	}
	a.resources[r.URI] = r
	a.order = append(a.order, r.URI)
	return true
}

// Has reports whether uri has a result.
func (a *Aggregator) Has(uri string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.resources[uri]
	return ok
}

// Get returns the stored result for uri.
func (a *Aggregator) Get(uri string) (*Resource, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.resources[uri]
	return r, ok
}

// Len returns the number of stored results.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

// Counts returns the global tallies.
func (a *Aggregator) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	var c Counts
	for _, uri := range a.order {
		c.Merge(a.resources[uri].Counts)
	}
	return c
}

// Summary describes a whole run.
type Summary struct {
	Counts       `json:",inline" yaml:",inline"`
	Resources    int            `json:"resources" yaml:"resources"`
	Failed       int            `json:"failedResources" yaml:"failedResources"`
	ErrorClasses map[string]int `json:"errorClasses,omitempty" yaml:"errorClasses,omitempty"`
	Status       Status         `json:"status" yaml:"status"`
	Duration     time.Duration  `json:"duration" yaml:"duration"`
}

// Report is the serializable outcome of a run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Summary   Summary     `json:"summary" yaml:"summary"`
	Resources []*Resource `json:"resources" yaml:"resources"`
}

// RunID returns the report's run identifier.
func (r *Report) RunID() string {
	return r.Metadata[header.MetadataRunID]
}

// Passed reports whether the run finished without failures.
func (r *Report) Passed() bool {
	return r.Summary.Status != StatusFail
}

// Report snapshots the aggregator. Resources keep insertion order. opts
// add header metadata such as the service URI.
func (a *Aggregator) Report(opts ...header.Option) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	finished := time.Now()
	base := []header.Option{
		header.WithKind(header.KindValidationReport),
		header.WithMetadata(header.MetadataRunID, uuid.NewString()),
		header.WithMetadata(header.MetadataStarted, a.started.UTC().Format(time.RFC3339)),
		header.WithMetadata(header.MetadataFinished, finished.UTC().Format(time.RFC3339)),
	}

	rep := &Report{
		Header:    *header.New(append(base, opts...)...),
		Resources: make([]*Resource, 0, len(a.order)),
	}
	classes := make(map[string]int)
	for _, uri := range a.order {
		r := a.resources[uri]
		rep.Resources = append(rep.Resources, r)
		rep.Summary.Counts.Merge(r.Counts)
		if r.Failed() {
			rep.Summary.Failed++
		}
		for _, e := range r.Entries {
			if e.Outcome != OutcomeFail && e.Outcome != OutcomeWarn {
				continue
			}
			if class := e.Class(); class != "" {
				classes[class]++
			}
		}
	}
	if len(classes) > 0 {
		rep.Summary.ErrorClasses = classes
	}
	rep.Summary.Resources = len(rep.Resources)
	rep.Summary.Status = rep.Summary.Counts.Status()
	if rep.Summary.Status == StatusWarn {
		rep.Summary.Status = StatusPass
	}
	rep.Summary.Duration = finished.Sub(a.started)
	return rep
}

// Classes returns the error class names of a report sorted by count,
// highest first.
func (r *Report) Classes() []string {
	out := make([]string, 0, len(r.Summary.ErrorClasses))
	for c := range r.Summary.ErrorClasses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := r.Summary.ErrorClasses[out[i]], r.Summary.ErrorClasses[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}
