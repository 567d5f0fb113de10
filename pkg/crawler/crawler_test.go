/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog/catalogtest"
	"github.com/NVIDIA/redfish-service-validator/pkg/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/crawler"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
	"github.com/NVIDIA/redfish-service-validator/pkg/validator"
)

// fakeService serves JSON documents keyed by URI and counts fetches.
type fakeService struct {
	mu     sync.Mutex
	docs   map[string]string
	status map[string]int
	types  map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newFakeService(docs map[string]string) *fakeService {
	return &fakeService{
		docs:   docs,
		status: map[string]int{},
		types:  map[string]string{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeService) Get(ctx context.Context, uri string) (*client.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[uri]++
	if err, ok := f.errs[uri]; ok {
		return nil, err
	}
	body, ok := f.docs[uri]
	if !ok {
		return &client.Response{Status: http.StatusNotFound, Header: http.Header{}, Source: client.SourceService}, nil
	}
	ct := "application/json"
	if t, ok := f.types[uri]; ok {
		ct = t
	}
	resp := &client.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {ct}},
		Body:   []byte(body),
		Source: client.SourceService,
	}
	if s, ok := f.status[uri]; ok {
		resp.Status = s
	}
	if ct == "application/json" {
		dec := json.NewDecoder(bytes.NewReader(resp.Body))
		dec.UseNumber()
		if err := dec.Decode(&resp.JSON); err != nil {
			resp.DecodeErr = err
		}
	}
	return resp, nil
}

func (f *fakeService) Calls(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[uri]
}

func serviceDocs() map[string]string {
	return map[string]string{
		"/redfish/v1/": `{
		  "@odata.id": "/redfish/v1/",
		  "@odata.type": "#ServiceRoot.v1_0_0.ServiceRoot",
		  "Id": "RootService",
		  "Name": "Root Service",
		  "RedfishVersion": "1.15.0",
		  "Chassis": {"@odata.id": "/redfish/v1/Chassis"},
		  "Widgets": {"@odata.id": "/redfish/v1/Widgets"}
		}`,
		"/redfish/v1/Chassis": `{
		  "@odata.id": "/redfish/v1/Chassis",
		  "@odata.type": "#ChassisCollection.ChassisCollection",
		  "Name": "Chassis Collection",
		  "Members": [{"@odata.id": "/redfish/v1/Chassis/1"}, {"@odata.id": "/redfish/v1/Chassis/2"}],
		  "Members@odata.count": 2
		}`,
		"/redfish/v1/Widgets": `{
		  "@odata.id": "/redfish/v1/Widgets",
		  "@odata.type": "#WidgetCollection.WidgetCollection",
		  "Name": "Widget Collection",
		  "Members": [],
		  "Members@odata.count": 0
		}`,
		"/redfish/v1/Chassis/1": `{
		  "@odata.id": "/redfish/v1/Chassis/1",
		  "@odata.type": "#Chassis.v1_2_0.Chassis",
		  "Id": "1",
		  "Name": "Chassis One",
		  "ChassisType": "Rack",
		  "Status": {"Health": "OK", "State": "Enabled"},
		  "Links": {"ContainedBy": {"@odata.id": "/redfish/v1/Chassis/3"}},
		  "Actions": {"#Chassis.Reset": {"target": "/redfish/v1/Chassis/1/Actions/Chassis.Reset"}},
		  "LogEntries": {"@odata.id": "/redfish/v1/Chassis/1/LogEntries"}
		}`,
		"/redfish/v1/Chassis/2": `{
		  "@odata.id": "/redfish/v1/Chassis/2",
		  "@odata.type": "#Chassis.v1_2_0.Chassis",
		  "Id": "2",
		  "Name": "Chassis Two",
		  "ChassisType": "Blade",
		  "Status": {"Health": "OK", "State": "Enabled"},
		  "Links": {}
		}`,
		"/redfish/v1/Chassis/3": `{
		  "@odata.id": "/redfish/v1/Chassis/3",
		  "@odata.type": "#Chassis.v1_2_0.Chassis",
		  "Id": "3",
		  "Name": "Enclosure",
		  "ChassisType": "Enclosure",
		  "Status": {"Health": "OK", "State": "Enabled"},
		  "Links": {}
		}`,
		"/redfish/v1/Chassis/1/LogEntries": `{
		  "@odata.id": "/redfish/v1/Chassis/1/LogEntries",
		  "@odata.type": "#LogEntryCollection.LogEntryCollection",
		  "Name": "Log",
		  "Members": [{"@odata.id": "/redfish/v1/Chassis/1/LogEntries/1"}],
		  "Members@odata.count": 1
		}`,
		"/redfish/v1/Chassis/1/LogEntries/1": `{
		  "@odata.id": "/redfish/v1/Chassis/1/LogEntries/1",
		  "@odata.type": "#LogEntry.v1_0_0.LogEntry",
		  "Id": "1",
		  "Name": "Entry",
		  "Message": "Fan removed",
		  "OriginOfCondition": {"@odata.id": "/redfish/v1/Chassis/9"}
		}`,
		"/redfish/v1/Widgets/1": `{
		  "@odata.id": "/redfish/v1/Widgets/1",
		  "@odata.type": "#Widget.v1_0_0.Widget",
		  "Id": "1",
		  "Name": "Widget One",
		  "Fans": [{"@odata.id": "/redfish/v1/Widgets/1#/Fans/0", "MemberId": "0", "Speed": 10}]
		}`,
	}
}

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	return validator.New(catalogtest.New(t))
}

func uris(rep *result.Report) []string {
	out := make([]string, 0, len(rep.Resources))
	for _, r := range rep.Resources {
		out = append(out, r.URI)
	}
	return out
}

func resource(t *testing.T, rep *result.Report, uri string) *result.Resource {
	t.Helper()
	for _, r := range rep.Resources {
		if r.URI == uri {
			return r
		}
	}
	require.Failf(t, "resource not in report", "%s", uri)
	return nil
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    crawler.Mode
		wantErr bool
	}{
		{"", crawler.ModeService, false},
		{"service", crawler.ModeService, false},
		{"Tree", crawler.ModeTree, false},
		{"SINGLE", crawler.ModeSingle, false},
		{"subtree", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := crawler.ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/redfish/v1", "/redfish/v1/"},
		{"/redfish/v1/", "/redfish/v1/"},
		{"/redfish/v1/Chassis/", "/redfish/v1/Chassis"},
		{"/redfish/v1/Chassis", "/redfish/v1/Chassis"},
		{"/redfish/v1/LogEntries/?$skip=50", "/redfish/v1/LogEntries?$skip=50"},
		{"/redfish/v1/Widgets/1#/Fans/0", "/redfish/v1/Widgets/1#/Fans/0"},
		{"/redfish/v1/Widgets/1/#", "/redfish/v1/Widgets/1"},
		{"/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, crawler.Canonical(tt.in))
		})
	}
}

func TestRunService(t *testing.T) {
	svc := newFakeService(serviceDocs())
	c := crawler.New(svc, newValidator(t))

	rep, err := c.Run(context.Background(), "")
	require.NoError(t, err)

	want := []string{
		"/redfish/v1/",
		"/redfish/v1/Chassis",
		"/redfish/v1/Widgets",
		"/redfish/v1/Chassis/1",
		"/redfish/v1/Chassis/2",
		"/redfish/v1/Chassis/1/LogEntries",
		"/redfish/v1/Chassis/1/LogEntries/1",
		// deferred ContainedBy target comes last
		"/redfish/v1/Chassis/3",
	}
	if diff := cmp.Diff(want, uris(rep)); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}

	for _, uri := range want {
		assert.Equal(t, 1, svc.Calls(uri), "fetches of %s", uri)
	}
	// action targets are never fetched
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1/Actions/Chassis.Reset"))
	// the missing OriginOfCondition is fetched but not reported
	assert.Equal(t, 1, svc.Calls("/redfish/v1/Chassis/9"))

	chassis := resource(t, rep, "/redfish/v1/Chassis/1")
	assert.Equal(t, "/redfish/v1/Chassis", chassis.Parent)
	assert.Equal(t, http.StatusOK, chassis.HTTPStatus)
	assert.Equal(t, client.SourceService, chassis.Source)
	assert.Equal(t, "Chassis One", chassis.Payload["Name"])
	assert.Equal(t, "Chassis.v1_2_0.Chassis", chassis.ResolvedType)
	assert.Equal(t, result.StatusPass, rep.Summary.Status, "%+v", rep.Summary)
}

func TestRunTree(t *testing.T) {
	svc := newFakeService(serviceDocs())
	c := crawler.New(svc, newValidator(t), crawler.WithMode(crawler.ModeTree))

	rep, err := c.Run(context.Background(), "/redfish/v1/Chassis/1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/redfish/v1/Chassis/1",
		"/redfish/v1/Chassis/1/LogEntries",
		"/redfish/v1/Chassis/1/LogEntries/1",
	}, uris(rep))
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/3"))
	// the service root is read for its version only
	assert.Equal(t, 1, svc.Calls("/redfish/v1/"))
}

func TestRunSingle(t *testing.T) {
	svc := newFakeService(serviceDocs())
	c := crawler.New(svc, newValidator(t), crawler.WithMode(crawler.ModeSingle))

	rep, err := c.Run(context.Background(), "/redfish/v1/Chassis")
	require.NoError(t, err)
	assert.Equal(t, []string{"/redfish/v1/Chassis"}, uris(rep))
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1"))
}

func TestRunFragment(t *testing.T) {
	svc := newFakeService(serviceDocs())
	c := crawler.New(svc, newValidator(t), crawler.WithMode(crawler.ModeSingle))

	rep, err := c.Run(context.Background(), "/redfish/v1/Widgets/1#/Fans/7")
	require.NoError(t, err)
	res := resource(t, rep, "/redfish/v1/Widgets/1#/Fans/7")
	e, ok := res.Entry(result.ResourcePath)
	require.True(t, ok)
	assert.Equal(t, result.OutcomeFail, e.Outcome)
	assert.Equal(t, result.ClassPayloadError, e.Class())

	rep, err = crawler.New(svc, newValidator(t), crawler.WithMode(crawler.ModeSingle)).
		Run(context.Background(), "/redfish/v1/Widgets/1#/Fans/0")
	require.NoError(t, err)
	res = resource(t, rep, "/redfish/v1/Widgets/1#/Fans/0")
	assert.Equal(t, "0", res.Payload["MemberId"])
}

func TestRunFetchFailures(t *testing.T) {
	svc := newFakeService(serviceDocs())
	svc.status["/redfish/v1/Widgets"] = http.StatusInternalServerError
	svc.types["/redfish/v1/Chassis/2"] = "application/xml"
	svc.docs["/redfish/v1/Chassis/1/LogEntries/1"] = `{"@odata.id": `
	svc.errs["/redfish/v1/Chassis/1/LogEntries"] = stderrors.New("connection reset")

	rep, err := crawler.New(svc, newValidator(t)).Run(context.Background(), "")
	require.NoError(t, err)

	tests := []struct {
		uri    string
		status int
	}{
		{"/redfish/v1/Widgets", http.StatusInternalServerError},
		{"/redfish/v1/Chassis/2", http.StatusOK},
		{"/redfish/v1/Chassis/1/LogEntries", 0},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			res := resource(t, rep, tt.uri)
			assert.Equal(t, tt.status, res.HTTPStatus)
			e, ok := res.Entry(result.ResourcePath)
			require.True(t, ok)
			assert.Equal(t, result.OutcomeFail, e.Outcome)
			assert.Equal(t, result.ClassPayloadError, e.Class())
		})
	}
	// no descent below a failed fetch
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1/LogEntries/1"))
	assert.Equal(t, result.StatusFail, rep.Summary.Status)
	assert.Equal(t, 3, rep.Summary.Failed)
}

func TestRunAuthErrorAborts(t *testing.T) {
	svc := newFakeService(serviceDocs())
	svc.errs["/redfish/v1/Chassis"] = &client.AuthenticationError{URI: "/redfish/v1/Chassis", Status: http.StatusUnauthorized, AuthType: client.AuthBasic}

	rep, err := crawler.New(svc, newValidator(t)).Run(context.Background(), "")
	var authErr *client.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.NotNil(t, rep)
	assert.Equal(t, []string{"/redfish/v1/"}, uris(rep))
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1"))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := crawler.New(newFakeService(serviceDocs()), newValidator(t)).Run(ctx, "")
	require.Error(t, err)
	assert.Empty(t, rep.Resources)
}

func TestRunConcurrentMatchesSequential(t *testing.T) {
	type summary struct {
		URI    string
		Status result.Status
		Counts result.Counts
	}
	project := func(rep *result.Report) []summary {
		out := make([]summary, 0, len(rep.Resources))
		for _, r := range rep.Resources {
			out = append(out, summary{r.URI, r.Status, r.Counts})
		}
		return out
	}

	v := newValidator(t)
	seq, err := crawler.New(newFakeService(serviceDocs()), v).Run(context.Background(), "")
	require.NoError(t, err)

	for _, n := range []int{2, 4, 16} {
		svc := newFakeService(serviceDocs())
		par, err := crawler.New(svc, v, crawler.WithConcurrency(n)).Run(context.Background(), "")
		require.NoError(t, err)
		if diff := cmp.Diff(project(seq), project(par)); diff != "" {
			t.Errorf("concurrency %d differs (-seq +par):\n%s", n, diff)
		}
		assert.Equal(t, seq.Summary.Counts, par.Summary.Counts)
		assert.Equal(t, 1, svc.Calls("/redfish/v1/Chassis/1"))
	}
}

func TestCollectionLimitDropsNextLink(t *testing.T) {
	docs := serviceDocs()
	docs["/redfish/v1/Chassis/1/LogEntries"] = `{
	  "@odata.id": "/redfish/v1/Chassis/1/LogEntries",
	  "@odata.type": "#LogEntryCollection.LogEntryCollection",
	  "Name": "Log",
	  "Members": [{"@odata.id": "/redfish/v1/Chassis/1/LogEntries/1"}, {"@odata.id": "/redfish/v1/Chassis/1/LogEntries/2"}],
	  "Members@odata.count": 4,
	  "Members@odata.nextLink": "/redfish/v1/Chassis/1/LogEntries?$skip=2"
	}`
	next := "/redfish/v1/Chassis/1/LogEntries?$skip=2"

	tests := []struct {
		name   string
		limits map[string]int
		calls  int
	}{
		{"limited", map[string]int{"LogEntry": 2}, 0},
		{"limit above member count", map[string]int{"LogEntry": 3}, 1},
		{"other type limited", map[string]int{"Chassis": 1}, 1},
		{"no limits", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(docs)
			c := crawler.New(svc, newValidator(t),
				crawler.WithMode(crawler.ModeTree),
				crawler.WithCollectionLimits(tt.limits))
			_, err := c.Run(context.Background(), "/redfish/v1/Chassis/1/LogEntries")
			require.NoError(t, err)
			assert.Equal(t, tt.calls, svc.Calls(next))
		})
	}
}

func TestCollectionLimitFromValidator(t *testing.T) {
	docs := serviceDocs()
	docs["/redfish/v1/Chassis/1/LogEntries"] = `{
	  "@odata.id": "/redfish/v1/Chassis/1/LogEntries",
	  "@odata.type": "#LogEntryCollection.LogEntryCollection",
	  "Name": "Log",
	  "Members": [{"@odata.id": "/redfish/v1/Chassis/1/LogEntries/1"}, {"@odata.id": "/redfish/v1/Chassis/1/LogEntries/2"}],
	  "Members@odata.count": 4,
	  "Members@odata.nextLink": "/redfish/v1/Chassis/1/LogEntries?$skip=2"
	}`
	svc := newFakeService(docs)
	v := validator.New(catalogtest.New(t), validator.WithCollectionLimits(map[string]int{"LogEntry": 1}))
	c := crawler.New(svc, v, crawler.WithMode(crawler.ModeTree))

	rep, err := c.Run(context.Background(), "/redfish/v1/Chassis/1/LogEntries")
	require.NoError(t, err)
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1/LogEntries?$skip=2"))
	assert.Zero(t, svc.Calls("/redfish/v1/Chassis/1/LogEntries/2"))

	coll := resource(t, rep, "/redfish/v1/Chassis/1/LogEntries")
	e, ok := coll.Entry("Members[1]")
	require.True(t, ok)
	assert.Equal(t, result.OutcomeSkip, e.Outcome)
}

func TestCollectionCapabilitiesTarget(t *testing.T) {
	docs := serviceDocs()
	docs["/redfish/v1/Chassis/2"] = `{
	  "@odata.id": "/redfish/v1/Chassis/2",
	  "@odata.type": "#Chassis.v1_2_0.Chassis",
	  "Id": "2",
	  "Name": "Chassis Two",
	  "ChassisType": "Blade",
	  "Status": {"Health": "OK", "State": "Enabled"},
	  "Links": {},
	  "@Redfish.CollectionCapabilities": {
	    "Capabilities": [{"CapabilitiesObject": {"@odata.id": "/redfish/v1/Chassis/Capabilities"}, "UseCase": "ChassisComposition"}]
	  }
	}`
	docs["/redfish/v1/Chassis/Capabilities"] = `{
	  "@odata.id": "/redfish/v1/Chassis/Capabilities",
	  "@odata.type": "#Chassis.v1_2_0.Chassis",
	  "Id": "Capabilities",
	  "Name": "Chassis Capabilities"
	}`
	svc := newFakeService(docs)
	c := crawler.New(svc, newValidator(t))

	rep, err := c.Run(context.Background(), "")
	require.NoError(t, err)

	target := resource(t, rep, "/redfish/v1/Chassis/Capabilities")
	e, ok := target.Entry("ChassisType")
	require.True(t, ok)
	assert.Equal(t, result.OutcomeSkip, e.Outcome, e.Message)
	assert.False(t, target.Failed(), "%+v", target.Entries)
}

func TestFailuresLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	docs := serviceDocs()
	docs["/redfish/v1/Chassis/2"] = `{
	  "@odata.id": "/redfish/v1/Chassis/2",
	  "@odata.type": "#Chassis.v1_2_0.Chassis",
	  "Id": "2",
	  "Name": "Chassis Two",
	  "Status": {"Health": "OK", "State": "Enabled"},
	  "Links": {}
	}`
	c := crawler.New(newFakeService(docs), newValidator(t), crawler.WithMode(crawler.ModeSingle))
	rep, err := c.Run(context.Background(), "/redfish/v1/Chassis/2")
	require.NoError(t, err)
	require.True(t, resource(t, rep, "/redfish/v1/Chassis/2").Failed())

	var properties, resources int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		switch rec["msg"] {
		case "property failed":
			if rec["path"] == "ChassisType" {
				properties++
			}
		case "resource failed":
			resources++
		}
	}
	assert.Equal(t, 1, properties)
	assert.Equal(t, 1, resources)
}

func TestSharedFetcher(t *testing.T) {
	svc := newFakeService(serviceDocs())
	fetcher := crawler.NewFetcher(svc, 0)
	v := validator.New(catalogtest.New(t), validator.WithReferenceResolver(fetcher))
	c := crawler.New(fetcher, v)
	assert.Same(t, fetcher, c.Fetcher())

	_, err := c.Run(context.Background(), "")
	require.NoError(t, err)
	// reference checks and the crawl share one cache
	assert.Equal(t, 1, svc.Calls("/redfish/v1/Chassis/1"))
	assert.Equal(t, 1, svc.Calls("/redfish/v1/Chassis/3"))
}
