/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/NVIDIA/redfish-service-validator/pkg/header"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

const (
	columnGap      = 2
	maxColumnWidth = 96
)

// table is a titled grid of cells.
type table struct {
	title  string
	header []string
	rows   [][]string
}

func writeTable(w io.Writer, data any) error {
	if rep, ok := data.(*result.Report); ok {
		return renderTables(w, reportTables(rep))
	}
	flat, err := flatten(data)
	if err != nil {
		return err
	}
	t := table{header: []string{"FIELD", "VALUE"}}
	if len(flat) == 0 {
		t.rows = append(t.rows, []string{"<empty>", ""})
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.rows = append(t.rows, []string{k, flat[k]})
	}
	return renderTables(w, []table{t})
}

func renderTables(w io.Writer, tables []table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := t.render(w); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

// render aligns columns by display width so wide runes line up.
func (t table) render(w io.Writer) error {
	widths := make([]int, len(t.header))
	measure := func(row []string) {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxColumnWidth))
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}

	var buf bytes.Buffer
	if t.title != "" {
		buf.WriteString(t.title + "\n")
	}
	line := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			cell = runewidth.Truncate(cell, maxColumnWidth, "...")
			if i == len(row)-1 {
				buf.WriteString(cell)
				break
			}
			buf.WriteString(runewidth.FillRight(cell, widths[i]+columnGap))
		}
		buf.WriteString("\n")
	}
	line(t.header)
	for _, row := range t.rows {
		line(row)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// flatten turns data into dotted keys by way of its JSON form.
func flatten(data any) (map[string]string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}
	out := make(map[string]string)
	flattenInto(out, "", v)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, v any) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(out, key, child)
		}
	case []any:
		for i, child := range node {
			flattenInto(out, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case nil:
		if prefix != "" {
			out[prefix] = "<nil>"
		}
	case string:
		out[prefix] = node
	default:
		out[prefix] = fmt.Sprint(node)
	}
}

// reportTables lays out a report as summary, resources and problems.
func reportTables(rep *result.Report) []table {
	s := rep.Summary
	summary := table{
		title:  "SUMMARY",
		header: []string{"RESOURCES", "FAILED", "PASS", "WARN", "FAIL", "SKIP", "STATUS", "DURATION"},
		rows: [][]string{{
			strconv.Itoa(s.Resources),
			strconv.Itoa(s.Failed),
			strconv.Itoa(s.Pass),
			strconv.Itoa(s.Warn),
			strconv.Itoa(s.Fail),
			strconv.Itoa(s.Skip),
			strings.ToUpper(string(s.Status)),
			s.Duration.Round(time.Millisecond).String(),
		}},
	}
	if svc := rep.Metadata[header.MetadataService]; svc != "" {
		summary.title += " " + svc
	}

	resources := table{
		title:  "RESOURCES",
		header: []string{"URI", "TYPE", "STATUS", "PASS", "WARN", "FAIL", "SKIP"},
	}
	problems := table{
		title:  "PROBLEMS",
		header: []string{"URI", "PROPERTY", "OUTCOME", "VALUE", "MESSAGE"},
	}
	for _, r := range rep.Resources {
		typ := r.ResolvedType
		if typ == "" {
			typ = strings.TrimPrefix(r.Type, "#")
		}
		resources.rows = append(resources.rows, []string{
			r.URI,
			typ,
			strings.ToUpper(string(r.Status)),
			strconv.Itoa(r.Counts.Pass),
			strconv.Itoa(r.Counts.Warn),
			strconv.Itoa(r.Counts.Fail),
			strconv.Itoa(r.Counts.Skip),
		})
		for _, e := range r.Entries {
			if e.Outcome != result.OutcomeFail && e.Outcome != result.OutcomeWarn {
				continue
			}
			problems.rows = append(problems.rows, []string{r.URI, e.Path, string(e.Outcome), e.Value, e.Message})
		}
	}

	tables := []table{summary, resources}
	if len(problems.rows) > 0 {
		tables = append(tables, problems)
	}
	if classes := rep.Classes(); len(classes) > 0 {
		ct := table{title: "ERROR CLASSES", header: []string{"CLASS", "COUNT"}}
		for _, c := range classes {
			ct.rows = append(ct.rows, []string{c, strconv.Itoa(s.ErrorClasses[c])})
		}
		tables = append(tables, ct)
	}
	return tables
}
