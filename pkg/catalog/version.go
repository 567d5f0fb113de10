/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	versionPattern       = regexp.MustCompile(`v([0-9]+)_([0-9]+)_([0-9]+)`)
	dottedVersionPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)$`)
)

// Version is a schema revision triple.
type Version struct {
	Major  int `json:"major" yaml:"major"`
	Minor  int `json:"minor" yaml:"minor"`
	Errata int `json:"errata" yaml:"errata"`
}

// ParseVersion extracts a version from a namespace (Chassis.v1_2_0), a bare
// version (v1_2_0) or a dotted triple (1.6.0). The second return is false
// when s carries no usable version.
func ParseVersion(s string) (Version, bool) {
	if m := versionPattern.FindStringSubmatch(s); m != nil {
		return versionFromParts(m[1:])
	}
	if m := dottedVersionPattern.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		return versionFromParts(m[1:])
	}
	return Version{}, false
}

func versionFromParts(parts []string) (Version, bool) {
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Errata: nums[2]}, true
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Errata, o.Errata)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether v is 0.0.0.
func (v Version) IsZero() bool {
	return v == Version{}
}

// String renders the namespace form, e.g. v1_2_0.
func (v Version) String() string {
	return fmt.Sprintf("v%d_%d_%d", v.Major, v.Minor, v.Errata)
}

// stripHash drops everything up to and including the last '#'.
func stripHash(s string) string {
	if i := strings.LastIndex(s, "#"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// NamespaceOf returns the namespace of a qualified type, version included.
// Resource.v1_0_0.Status yields Resource.v1_0_0.
func NamespaceOf(qualified string) string {
	s := StripCollection(stripHash(qualified))
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// BaseNamespace returns the unversioned namespace of a type or namespace.
// Resource.v1_0_0.Status yields Resource.
func BaseNamespace(qualified string) string {
	s := StripCollection(stripHash(qualified))
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// TypeName returns the local name of a qualified type.
func TypeName(qualified string) string {
	s := StripCollection(stripHash(qualified))
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// IsCollection reports whether a type reference is Collection(T).
func IsCollection(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "Collection(")
}

// StripCollection unwraps Collection(T) into T.
func StripCollection(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "Collection(") && strings.HasSuffix(ref, ")") {
		return ref[len("Collection(") : len(ref)-1]
	}
	return ref
}

// IsPrimitive reports whether ref names an Edm primitive.
func IsPrimitive(ref string) bool {
	return strings.HasPrefix(StripCollection(ref), "Edm.")
}

// Qualify joins a namespace and a local name.
func Qualify(namespace, name string) string {
	return namespace + "." + name
}
