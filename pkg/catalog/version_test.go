/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"Chassis.v1_2_0", Version{1, 2, 0}, true},
		{"#Chassis.v1_12_3.Chassis", Version{1, 12, 3}, true},
		{"v2_0_1", Version{2, 0, 1}, true},
		{"1.6.0", Version{1, 6, 0}, true},
		{"Chassis", Version{}, false},
		{"garbage", Version{}, false},
		{"", Version{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseVersion(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseVersion(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b Version
		want int
	}{
		{Version{1, 0, 0}, Version{1, 0, 0}, 0},
		{Version{1, 2, 0}, Version{1, 10, 0}, -1},
		{Version{2, 0, 0}, Version{1, 99, 99}, 1},
		{Version{1, 2, 3}, Version{1, 2, 0}, 1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if s := (Version{1, 2, 3}).String(); s != "v1_2_3" {
		t.Errorf("String() = %q", s)
	}
}

func TestNameHelpers(t *testing.T) {
	tests := []struct {
		in        string
		namespace string
		base      string
		name      string
	}{
		{"Resource.v1_0_0.Status", "Resource.v1_0_0", "Resource", "Status"},
		{"#Chassis.v1_2_0.Chassis", "Chassis.v1_2_0", "Chassis", "Chassis"},
		{"Collection(Resource.Health)", "Resource", "Resource", "Health"},
		{"Edm.String", "Edm", "Edm", "String"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NamespaceOf(tt.in); got != tt.namespace {
				t.Errorf("NamespaceOf() = %q, want %q", got, tt.namespace)
			}
			if got := BaseNamespace(tt.in); got != tt.base {
				t.Errorf("BaseNamespace() = %q, want %q", got, tt.base)
			}
			if got := TypeName(tt.in); got != tt.name {
				t.Errorf("TypeName() = %q, want %q", got, tt.name)
			}
		})
	}

	if !IsCollection("Collection(Edm.Int64)") || IsCollection("Edm.Int64") {
		t.Error("IsCollection mismatch")
	}
	if !IsPrimitive("Collection(Edm.Int64)") || IsPrimitive("Resource.Id") {
		t.Error("IsPrimitive mismatch")
	}
}
