/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler

import "strings"

// RootURI is the service root.
const RootURI = "/redfish/v1/"

// Canonical returns the key a URI is visited under. The trailing slash is
// dropped except on the service root; the query string and the fragment
// are kept.
func Canonical(uri string) string {
	base, frag, hasFrag := strings.Cut(uri, "#")
	base = canonicalBase(base)
	if hasFrag && frag != "" {
		return base + "#" + frag
	}
	return base
}

// canonicalBase canonicalizes a URI without fragment.
func canonicalBase(base string) string {
	path, query, hasQuery := strings.Cut(base, "?")
	trimmed := strings.TrimRight(path, "/")
	switch {
	case trimmed == "/redfish/v1":
		path = RootURI
	case trimmed != "":
		path = trimmed
	}
	if hasQuery {
		return path + "?" + query
	}
	return path
}

// fetchKey is the cache key of uri: its canonical form without fragment.
func fetchKey(uri string) string {
	base, _, _ := strings.Cut(uri, "#")
	return canonicalBase(base)
}

// splitFragment returns the fetch key and the JSON pointer of uri.
func splitFragment(uri string) (string, string) {
	base, frag, _ := strings.Cut(uri, "#")
	return canonicalBase(base), frag
}

// inTree reports whether uri lies under root.
func inTree(root, uri string) bool {
	if uri == root {
		return true
	}
	prefix := strings.TrimSuffix(root, "/")
	if uri == prefix {
		return true
	}
	for _, sep := range []string{"/", "#", "?"} {
		if strings.HasPrefix(uri, prefix+sep) {
			return true
		}
	}
	return false
}
