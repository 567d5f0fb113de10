/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/redfish-service-validator/pkg/header"
)

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		exists bool
		want   string
	}{
		{"absent", nil, false, DisplayNotPresent},
		{"null", nil, true, DisplayNull},
		{"empty string", "", true, DisplayEmptyString},
		{"string", "Enabled", true, "Enabled"},
		{"link", map[string]any{"@odata.id": "/redfish/v1/Chassis/1"}, true, "[Link to: /redfish/v1/Chassis/1]"},
		{"object", map[string]any{"@odata.id": "/x", "Name": "y"}, true, DisplayObject},
		{"array", []any{1.0}, true, DisplayArray},
		{"number", 5.0, true, "5"},
		{"bool", true, true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(tt.value, tt.exists))
		})
	}
}

func TestEntryClass(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{Messagef(ClassTypeMismatch, "expected %s", "Edm.Int64"), ClassTypeMismatch},
		{"no class here", ""},
		{"not a class: because of spaces", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Entry{Message: tt.msg}.Class(), tt.msg)
	}
}

func TestResourceAddKeepsWorst(t *testing.T) {
	r := NewResource("/redfish/v1")
	r.Add(Entry{Path: "Name", Outcome: OutcomePass})
	r.Add(Entry{Path: "Name", Outcome: OutcomeFail, Message: "TypeMismatch: x"})
	r.Add(Entry{Path: "Name", Outcome: OutcomeWarn})
	r.Add(Entry{Path: "Id", Outcome: OutcomeSkip})

	require.Len(t, r.Entries, 2)
	e, ok := r.Entry("Name")
	require.True(t, ok)
	assert.Equal(t, OutcomeFail, e.Outcome)
	assert.Equal(t, Counts{Fail: 1, Skip: 1}, r.Counts)
	assert.Equal(t, StatusFail, r.Status)
	assert.True(t, r.Failed())
}

func TestResourceLevelEntries(t *testing.T) {
	r := NewResource("/redfish/v1/Chassis/1")
	r.Warn(ClassPayloadError, "payload from mockup")
	assert.Equal(t, StatusWarn, r.Status)

	r.Fail(ClassPayloadError, "status %d", 404)
	e, ok := r.Entry(ResourcePath)
	require.True(t, ok)
	assert.Equal(t, DisplayResourceLevel, e.Value)
	assert.Equal(t, "PayloadError: status 404", e.Message)
	assert.Equal(t, StatusFail, r.Status)
}

func TestAggregatorFirstWins(t *testing.T) {
	a := NewAggregator()
	first := NewResource("/redfish/v1")
	first.Add(Entry{Path: "Name", Outcome: OutcomePass})
	second := NewResource("/redfish/v1")
	second.Add(Entry{Path: "Name", Outcome: OutcomeFail})

	assert.True(t, a.Add(first))
	assert.False(t, a.Add(second))
	assert.False(t, a.Add(nil))

	got, ok := a.Get("/redfish/v1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, Counts{Pass: 1}, a.Counts())
}

func TestAggregatorConcurrent(t *testing.T) {
	a := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := NewResource(fmt.Sprintf("/redfish/v1/Items/%d", i%25))
			r.Add(Entry{Path: "Id", Outcome: OutcomePass})
			a.Add(r)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, a.Len())
	assert.Equal(t, Counts{Pass: 25}, a.Counts())
}

func TestReport(t *testing.T) {
	a := NewAggregator()

	root := NewResource("/redfish/v1")
	root.Add(
		Entry{Path: "Name", Outcome: OutcomePass},
		Entry{Path: "UUID", Outcome: OutcomeWarn, Message: Messagef(ClassPatternMismatch, "bad")},
	)
	chassis := NewResource("/redfish/v1/Chassis/1")
	chassis.Add(
		Entry{Path: "Id", Outcome: OutcomeFail, Message: Messagef(ClassUriMismatch, "Id 2")},
		Entry{Path: "Power", Outcome: OutcomeFail, Message: Messagef(ClassTypeMismatch, "x")},
		Entry{Path: "Thermal", Outcome: OutcomeFail, Message: Messagef(ClassTypeMismatch, "y")},
		Entry{Path: "SKU", Outcome: OutcomeSkip},
	)
	a.Add(root)
	a.Add(chassis)

	rep := a.Report(header.WithMetadata(header.MetadataService, "https://bmc"))

	assert.Equal(t, header.KindValidationReport, rep.Kind)
	assert.Equal(t, "https://bmc", rep.Metadata[header.MetadataService])
	_, err := uuid.Parse(rep.RunID())
	assert.NoError(t, err)

	assert.Equal(t, []string{"/redfish/v1", "/redfish/v1/Chassis/1"}, []string{rep.Resources[0].URI, rep.Resources[1].URI})
	assert.Equal(t, Counts{Pass: 1, Warn: 1, Fail: 3, Skip: 1}, rep.Summary.Counts)
	assert.Equal(t, 2, rep.Summary.Resources)
	assert.Equal(t, 1, rep.Summary.Failed)
	assert.Equal(t, map[string]int{ClassPatternMismatch: 1, ClassUriMismatch: 1, ClassTypeMismatch: 2}, rep.Summary.ErrorClasses)
	assert.Equal(t, []string{ClassTypeMismatch, ClassPatternMismatch, ClassUriMismatch}, rep.Classes())
	assert.Equal(t, StatusFail, rep.Summary.Status)
	assert.False(t, rep.Passed())
}

func TestReportWarningsPass(t *testing.T) {
	a := NewAggregator()
	r := NewResource("/redfish/v1")
	r.Add(Entry{Path: "Name", Outcome: OutcomeWarn})
	a.Add(r)

	rep := a.Report()
	assert.True(t, rep.Passed())
	assert.Nil(t, rep.Summary.ErrorClasses)
}
