/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/redfish-service-validator/pkg/header"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

const (
	testName  = "test"
	test1Name = "test1"
)

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatJSON, &buf)

	data := []testConfig{
		{Name: test1Name, Value: 123},
		{Name: "test2", Value: 456},
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Verify it's valid JSON
	var result []testConfig
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}

	if result[0].Name != test1Name || result[0].Value != 123 {
		t.Errorf("Unexpected data: %+v", result[0])
	}
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatYAML, &buf)

	data := []testConfig{
		{Name: test1Name, Value: 123},
		{Name: "test2", Value: 456},
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Verify it's valid YAML
	var result []testConfig
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal YAML: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}

	if result[0].Name != test1Name || result[0].Value != 123 {
		t.Errorf("Unexpected data: %+v", result[0])
	}
}

func TestWriter_SerializeTable(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatTable, &buf)

	data := []interface{}{
		testConfig{Name: test1Name, Value: 123},
		testConfig{Name: "test2", Value: 456},
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	output := buf.String()

	// Verify output contains expected elements
	if !strings.Contains(output, "FIELD") || !strings.Contains(output, "VALUE") {
		t.Error("Expected table header not found")
	}

	if !strings.Contains(output, "[0].name") || !strings.Contains(output, "[1].value") {
		t.Error("Expected flattened keys not found")
	}
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	// Note: NewWriter now defaults unknown formats to JSON instead of erroring
	// This test is kept to verify the fallback behavior
	var buf bytes.Buffer
	writer := NewWriter("invalid", &buf)

	if writer == nil {
		t.Fatal("Expected non-nil writer with unknown format")
	}

	// Should succeed because it falls back to JSON
	data := testConfig{Name: "test", Value: 123}
	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize should not fail with unknown format (falls back to JSON): %v", err)
	}

	// Verify it was serialized as JSON
	var result testConfig
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal as JSON: %v", err)
	}

	if result.Name != testName || result.Value != 123 {
		t.Errorf("Unexpected data: %+v", result)
	}
}

func TestWriter_NilOutput(t *testing.T) {
	// Should default to stdout
	writer := NewStdoutWriter(FormatJSON)

	if writer == nil {
		t.Fatal("Expected non-nil writer")
	}

	// Don't actually run Serialize as it would write to stdout
}

func TestNewWriter_DefaultsToStdout(t *testing.T) {
	writer := NewStdoutWriter(FormatJSON)
	if writer == nil {
		t.Fatal("Expected non-nil writer with nil output")
	}
}

func TestWriter_Close(t *testing.T) {
	// Test closing stdout writer (should be safe)
	writer := NewStdoutWriter(FormatJSON)
	err := writer.Close()
	if err != nil {
		t.Errorf("Close on stdout writer should not error: %v", err)
	}

	// Test closing multiple times (should be safe)
	err = writer.Close()
	if err != nil {
		t.Errorf("Multiple Close calls should not error: %v", err)
	}
}

func TestNewFileWriterOrStdout_EmptyPath(t *testing.T) {
	tests := []string{"", "  ", "\t", "\n", "-"}

	for _, path := range tests {
		writer, err := NewFileWriterOrStdout(FormatJSON, path)
		if err != nil {
			t.Fatalf("Expected no error for empty path %q, got: %v", path, err)
		}
		if writer == nil {
			t.Fatalf("Expected non-nil writer for empty path %q", path)
		}
		// Should default to stdout, so Close should be safe
		if closer, ok := writer.(Closer); ok {
			if err := closer.Close(); err != nil {
				t.Errorf("Close failed for empty path writer: %v", err)
			}
		}
	}
}

func TestNewFileWriterOrStdout_Success(t *testing.T) {
	// Create a temporary file path
	tmpFile := t.TempDir() + "/test_output.json"

	writer, err := NewFileWriterOrStdout(FormatJSON, tmpFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if writer == nil {
		t.Fatal("Expected non-nil writer")
	}

	// Write some data
	data := testConfig{Name: testName, Value: 123}
	err = writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Close the writer
	if closer, ok := writer.(Closer); ok {
		err = closer.Close()
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	// Verify file exists and has content
	content, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	if len(content) == 0 {
		t.Error("Expected file to have content")
	}

	// Verify it's valid JSON
	var result testConfig
	if err := json.Unmarshal(content, &result); err != nil {
		t.Fatalf("Failed to unmarshal file content: %v", err)
	}

	if result.Name != testName || result.Value != 123 {
		t.Errorf("Unexpected data in file: %+v", result)
	}
}

func TestNewFileWriterOrStdout_InvalidPath(t *testing.T) {
	// Try to create a file in a non-existent directory
	writer, err := NewFileWriterOrStdout(FormatJSON, "/nonexistent/path/file.json")

	// Should return an error instead of falling back to stdout
	if err == nil {
		t.Fatal("Expected error for invalid path")
	}
	if writer != nil {
		t.Error("Expected nil writer when error is returned")
	}

	// Verify error message is helpful
	if !strings.Contains(err.Error(), "failed to create output file") {
		t.Errorf("Expected helpful error message, got: %v", err)
	}
}

func TestNewFileWriterOrStdout_InvalidConfigMapURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"missing name", "cm://namespace"},
		{"missing namespace", "cm:///name"},
		{"empty", "cm://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, err := NewFileWriterOrStdout(FormatJSON, tt.uri)
			if err == nil {
				t.Fatalf("Expected error for invalid ConfigMap URI %q", tt.uri)
			}
			if writer != nil {
				t.Error("Expected nil writer when error is returned")
			}
			if !strings.Contains(err.Error(), "invalid ConfigMap URI") {
				t.Errorf("Expected helpful error message, got: %v", err)
			}
		})
	}
}

func TestFormat_IsUnknown(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{Format("invalid"), true},
		{Format("xml"), true},
		{Format(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.IsUnknown(); got != tt.want {
				t.Errorf("Format(%q).IsUnknown() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(Format("invalid"), &buf)

	if writer == nil {
		t.Fatal("Expected non-nil writer")
	}

	// Should default to JSON format
	data := testConfig{Name: "test", Value: 123}
	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Verify it serialized as JSON
	var result testConfig
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal as JSON: %v", err)
	}
}

func TestWriter_SerializeTable_EmptyData(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatTable, &buf)

	// Empty slice
	err := writer.Serialize(context.Background(), []testConfig{})
	if err != nil {
		t.Fatalf("Serialize empty slice failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "<empty>") {
		t.Errorf("Expected '<empty>' in output for empty data, got: %s", output)
	}
}

func TestWriter_SerializeTable_NestedStructs(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatTable, &buf)

	type inner struct {
		Field1 string
		Field2 int
	}

	type outer struct {
		Name  string
		Inner inner
	}


	data := outer{
		Name: "test",
		Inner: inner{
			Field1: "value",
			Field2: 42,
		},
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	output := buf.String()

	// Should have flattened nested keys
	if !strings.Contains(output, "Inner.Field1") {
		t.Error("Expected flattened key 'Inner.Field1' not found")
	}

	if !strings.Contains(output, "Inner.Field2") {
		t.Error("Expected flattened key 'Inner.Field2' not found")
	}

	if !strings.Contains(output, "value") {
		t.Error("Expected value 'value' not found")
	}

	if !strings.Contains(output, "42") {
		t.Error("Expected value '42' not found")
	}
}

func TestWriter_SerializeTable_Maps(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatTable, &buf)

	data := map[string]interface{}{
		"key1": "value1",
		"key2": 123,
		"key3": true,
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	output := buf.String()

	// Should have all keys
	if !strings.Contains(output, "key1") || !strings.Contains(output, "key2") || !strings.Contains(output, "key3") {
		t.Error("Expected all keys in output")
	}
}

func TestWriter_SerializeTable_NilValues(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatTable, &buf)

	type dataWithNil struct {
		Name  string
		Value *int
	}

	data := dataWithNil{
		Name:  "test",
		Value: nil,
	}

	err := writer.Serialize(context.Background(), data)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	output := buf.String()

	// Should handle nil gracefully
	if !strings.Contains(output, "Name") {
		t.Error("Expected 'Name' field in output")
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()

	// Verify we have expected formats
	expected := []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
	if len(formats) != len(expected) {
		t.Errorf("SupportedFormats() len = %d, want %d", len(formats), len(expected))
	}

	for _, exp := range expected {
		found := false
		for _, f := range formats {
			if f == exp {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("SupportedFormats() missing %v", exp)
		}
	}
}

func testReport() *result.Report {
	agg := result.NewAggregator()
	ok := result.NewResource("/redfish/v1/")
	ok.ResolvedType = "ServiceRoot.v1_0_0.ServiceRoot"
	ok.Add(result.Entry{Path: "Name", Value: `"Root"`, Exists: true, Outcome: result.OutcomePass})
	agg.Add(ok)

	bad := result.NewResource("/redfish/v1/Chassis/1")
	bad.Type = "#Chassis.v1_2_0.Chassis"
	bad.Add(result.Entry{Path: "ChassisType", Value: `"Desk"`, Exists: true, Outcome: result.OutcomeFail,
		Message: result.Messagef(result.ClassTypeMismatch, "Desk is not a ChassisType")})
	bad.Add(result.Entry{Path: "Name", Value: `"机箱一"`, Exists: true, Outcome: result.OutcomeWarn,
		Message: result.Messagef(result.ClassDeprecatedProperty, "Name is deprecated")})
	agg.Add(bad)
	return agg.Report(header.WithMetadata(header.MetadataService, "https://10.0.0.5"))
}

func TestWriter_SerializeReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), testReport()); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"SUMMARY https://10.0.0.5",
		"RESOURCES",
		"ServiceRoot.v1_0_0.ServiceRoot",
		"Chassis.v1_2_0.Chassis",
		"PROBLEMS",
		"Desk is not a ChassisType",
		"ERROR CLASSES",
		"TypeMismatch",
		"FAIL",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in table output:\n%s", want, output)
		}
	}
}

func TestTableAlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	tbl := table{
		header: []string{"NAME", "VALUE"},
		rows:   [][]string{{"机箱", "a"}, {"xy", "z"}},
	}
	if err := tbl.render(&buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// "机箱" is four columns wide, so both values start at column 6
	if got := strings.Index(lines[2], "z"); got != 6 {
		t.Errorf("value column at %d, want 6:\n%s", got, buf.String())
	}
	if !strings.HasPrefix(lines[1], "机箱  a") {
		t.Errorf("unexpected wide row %q", lines[1])
	}
}

func TestWriter_ReportRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report."+format.extension())
			w, err := NewFileWriterOrStdout(format, path)
			if err != nil {
				t.Fatalf("NewFileWriterOrStdout failed: %v", err)
			}
			if err := w.Serialize(context.Background(), testReport()); err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if err := w.(Closer).Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			r, err := NewFileReader(FormatFromPath(path), path)
			if err != nil {
				t.Fatalf("NewFileReader failed: %v", err)
			}
			defer r.Close()
			var rep result.Report
			if err := r.Deserialize(&rep); err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if rep.Kind != header.KindValidationReport {
				t.Errorf("kind = %q", rep.Kind)
			}
			if len(rep.Resources) != 2 || rep.Resources[1].URI != "/redfish/v1/Chassis/1" {
				t.Fatalf("unexpected resources: %+v", rep.Resources)
			}
			if rep.Summary.Fail != 1 || rep.Summary.Warn != 1 || rep.Summary.Status != result.StatusFail {
				t.Errorf("unexpected summary: %+v", rep.Summary)
			}
		})
	}
}

func TestNewReader_Table(t *testing.T) {
	if _, err := NewReader(FormatTable, strings.NewReader("")); err == nil {
		t.Fatal("expected error reading a table")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"report.json": FormatJSON,
		"report.YAML": FormatYAML,
		"report.yml":  FormatYAML,
		"report.txt":  FormatTable,
		"report":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestConfigMapWriter(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()
	w := NewConfigMapWriter(cs, "validation", "bmc-report", FormatYAML)

	if err := w.Serialize(ctx, testReport()); err != nil {
		t.Fatalf("Serialize (create) failed: %v", err)
	}
	cm, err := cs.CoreV1().ConfigMaps("validation").Get(ctx, "bmc-report", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("ConfigMap not created: %v", err)
	}
	if cm.Labels[labelManagedBy] != configMapManagedBy {
		t.Errorf("missing managed-by label: %v", cm.Labels)
	}
	var rep result.Report
	if err := yaml.Unmarshal([]byte(cm.Data["report.yaml"]), &rep); err != nil {
		t.Fatalf("stored report is not YAML: %v", err)
	}
	if rep.Summary.Resources != 2 {
		t.Errorf("stored report has %d resources", rep.Summary.Resources)
	}

	cm.Data["other"] = "kept"
	if _, err := cs.CoreV1().ConfigMaps("validation").Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := w.Serialize(ctx, map[string]string{"status": "rerun"}); err != nil {
		t.Fatalf("Serialize (update) failed: %v", err)
	}
	cm, err = cs.CoreV1().ConfigMaps("validation").Get(ctx, "bmc-report", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cm.Data["other"] != "kept" || !strings.Contains(cm.Data["report.yaml"], "rerun") {
		t.Errorf("unexpected data after update: %v", cm.Data)
	}
}

func TestParseConfigMapURI(t *testing.T) {
	ns, name, err := parseConfigMapURI("cm://validation/bmc-report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "validation" || name != "bmc-report" {
		t.Errorf("got %q/%q", ns, name)
	}
	if _, _, err := parseConfigMapURI("cm://a/b/c"); err == nil {
		t.Error("expected error for nested name")
	}
}
