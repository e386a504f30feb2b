package textutil

import "strings"

// SimilarityRatio computes a normalized similarity between two strings as
// 2*LCS/(len(a)+len(b)) over runes, after NormalizeName is applied to both.
// The result is in [0, 1]: 1.0 for equal names, 0.0 when nothing is shared
// or either side normalizes to empty.
func SimilarityRatio(a, b string) float64 {
	na := []rune(NormalizeName(a))
	nb := []rune(NormalizeName(b))
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}
	if string(na) == string(nb) {
		return 1
	}
	common := lcsLength(na, nb)
	return float64(2*common) / float64(len(na)+len(nb))
}

// lcsLength returns the length of the longest common subsequence of a and b
// using a two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// ContainsFold reports whether haystack contains needle after both are
// normalized. Empty needles never match.
func ContainsFold(haystack, needle string) bool {
	h := NormalizeName(haystack)
	n := NormalizeName(needle)
	if n == "" {
		return false
	}
	return strings.Contains(h, n)
}
