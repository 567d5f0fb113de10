/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyCutoff is the minimum similarity for a property name suggestion.
const fuzzyCutoff = 0.70

// similarity is 1 minus the edit distance over the longer length.
func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
	return 1 - float64(d)/float64(longest)
}

// closestName returns the candidate most similar to name, or "" when none
// reaches the cutoff.
func closestName(name string, candidates []string) string {
	best, bestScore := "", 0.0
	for _, c := range candidates {
		if s := similarity(name, c); s >= fuzzyCutoff && s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
