package errors

import (
	"fmt"
	"sort"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/ast"
)

// SuggestKind suggests a known node kind close to an unknown discriminant.
func SuggestKind(unknown string) string {
	kinds := make([]string, len(ast.Kinds))
	for i, k := range ast.Kinds {
		kinds[i] = string(k)
	}
	sort.Strings(kinds)
	return SuggestName(unknown, kinds, "Known node kinds")
}

// SuggestName suggests the candidate closest to unknown using Levenshtein
// distance. When nothing is close, it lists a few candidates under label.
func SuggestName(unknown string, candidates []string, label string) string {
	if len(candidates) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, candidate := range candidates {
		dist := levenshteinDistance(unknown, candidate)
		if dist < minDistance {
			minDistance = dist
			bestMatch = candidate
		}
	}

	// Only suggest if the distance is reasonable
	if minDistance <= len(unknown)/2+1 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(candidates) > 5 {
		return fmt.Sprintf("%s include: %s, ...", label, strings.Join(candidates[:5], ", "))
	}
	return fmt.Sprintf("%s: %s", label, strings.Join(candidates, ", "))
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	prev := make([]int, len2+1)
	curr := make([]int, len2+1)
	for j := 0; j <= len2; j++ {
		prev[j] = j
	}

	for i := 1; i <= len1; i++ {
		curr[0] = i
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len2]
}
