package analysis

import "unicode/utf8"

// Levenshtein returns the minimum number of single-character insertions,
// deletions, and substitutions needed to transform a into b. Two-row
// dynamic programming, O(len(a)*len(b)) time and O(min) extra space.
func Levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	// Keep the shorter string on the column axis.
	if len(br) > len(ar) {
		ar, br = br, ar
	}
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = minInt(curr[j-1]+1, minInt(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// LevenshteinWithin reports whether the edit distance between a and b is
// at most max, bailing out early on a length-difference check.
func LevenshteinWithin(a, b string, max int) bool {
	diff := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > max {
		return false
	}
	return Levenshtein(a, b) <= max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
