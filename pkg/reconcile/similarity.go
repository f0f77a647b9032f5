package reconcile

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings 0-100: 100 when equal ignoring case and
// surrounding space, 85 when one contains the other, otherwise the
// normalized edit distance. Empty input scores 0.
func Similarity(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 85
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	score := 100 * (1 - float64(dist)/float64(longest))
	if score < 0 {
		return 0
	}
	return int(math.Round(score))
}
