package symdb

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

const suggestThreshold = 0.78

// SuggestTypeName returns the closest known type name to a misspelled one,
// or "" when nothing is plausibly close. Comparison is against the last
// path segment so "colour" still matches "ns::Color".
func (db *SymbolDatabase) SuggestTypeName(name string) string {
	base := lastSegment(name)
	bestScore := float32(suggestThreshold)
	best := ""
	for qual := range db.typeIndex {
		cand := lastSegment(qual)
		if cand == base {
			continue
		}
		score, err := edlib.StringsSimilarity(base, cand, edlib.JaroWinkler)
		if err != nil || score < bestScore {
			continue
		}
		bestScore = score
		best = qual
	}
	return best
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}
