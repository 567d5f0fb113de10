/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package result

import "time"

// Status is the overall verdict of a resource or a run.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Counts tallies outcomes.
type Counts struct {
	Pass int `json:"pass" yaml:"pass"`
	Warn int `json:"warn" yaml:"warn"`
	Fail int `json:"fail" yaml:"fail"`
	Skip int `json:"skip" yaml:"skip"`
}

func (c *Counts) add(o Outcome, delta int) {
	switch o {
	case OutcomePass:
		c.Pass += delta
	case OutcomeWarn:
		c.Warn += delta
	case OutcomeFail:
		c.Fail += delta
	default:
		c.Skip += delta
	}
}

// Merge adds o into c.
func (c *Counts) Merge(o Counts) {
	c.Pass += o.Pass
	c.Warn += o.Warn
	c.Fail += o.Fail
	c.Skip += o.Skip
}

// Total returns the number of tallied entries.
func (c Counts) Total() int {
	return c.Pass + c.Warn + c.Fail + c.Skip
}

// Status derives a verdict from the tallies.
func (c Counts) Status() Status {
	switch {
	case c.Fail > 0:
		return StatusFail
	case c.Warn > 0:
		return StatusWarn
	default:
		return StatusPass
	}
}

// Resource is the outcome for one fetched URI.
type Resource struct {
	URI          string         `json:"uri" yaml:"uri"`
	HTTPStatus   int            `json:"httpStatus,omitempty" yaml:"httpStatus,omitempty"`
	Source       string         `json:"source,omitempty" yaml:"source,omitempty"`
	Parent       string         `json:"parent,omitempty" yaml:"parent,omitempty"`
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	ResolvedType string         `json:"resolvedType,omitempty" yaml:"resolvedType,omitempty"`
	Status       Status         `json:"status" yaml:"status"`
	Counts       Counts         `json:"counts" yaml:"counts"`
	Duration     time.Duration  `json:"duration" yaml:"duration"`
	Entries      []Entry        `json:"entries" yaml:"entries"`
	Payload      map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`

	index map[string]int
}

// NewResource returns an empty result for uri.
func NewResource(uri string) *Resource {
	return &Resource{URI: uri, Status: StatusPass, index: make(map[string]int)}
}

// Add records e. When an entry for the same path exists the more severe
// one is kept, so each path has at most one entry.
func (r *Resource) Add(entries ...Entry) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	for _, e := range entries {
		if i, ok := r.index[e.Path]; ok {
			old := r.Entries[i]
			if !e.Outcome.Worse(old.Outcome) {
				continue
			}
			r.Counts.add(old.Outcome, -1)
			r.Entries[i] = e
			r.Counts.add(e.Outcome, 1)
			continue
		}
		r.index[e.Path] = len(r.Entries)
		r.Entries = append(r.Entries, e)
		r.Counts.add(e.Outcome, 1)
	}
	r.Status = r.Counts.Status()
}

// Fail records a resource-level failure.
func (r *Resource) Fail(class, format string, args ...any) {
	r.Add(Entry{
		Path:    ResourcePath,
		Value:   DisplayResourceLevel,
		Exists:  true,
		Outcome: OutcomeFail,
		Message: Messagef(class, format, args...),
	})
}

// Warn records a resource-level warning.
func (r *Resource) Warn(class, format string, args ...any) {
	r.Add(Entry{
		Path:    ResourcePath,
		Value:   DisplayResourceLevel,
		Exists:  true,
		Outcome: OutcomeWarn,
		Message: Messagef(class, format, args...),
	})
}

// Entry returns the entry recorded for path.
func (r *Resource) Entry(path string) (Entry, bool) {
	i, ok := r.index[path]
	if !ok {
		return Entry{}, false
	}
	return r.Entries[i], true
}

// Failed reports whether any entry failed.
func (r *Resource) Failed() bool {
	return r.Counts.Fail > 0
}
