package searcher

import (
	"github.com/dshills/godocsearch/internal/searchindex"
)

// CompileQuery pads text with a space on each side, slides an n-gram window
// across it and returns the distinct bit positions found in table, in
// first-seen order. Unknown n-grams are dropped.
func CompileQuery(text string, table map[string]int) []int {
	runes := []rune(" " + text + " ")
	if len(runes) < searchindex.NgramLength {
		return nil
	}

	positions := make([]int, 0, len(runes)-searchindex.NgramLength+1)
	seen := make(map[int]struct{}, cap(positions))
	for i := 0; i+searchindex.NgramLength <= len(runes); i++ {
		pos, ok := table[string(runes[i:i+searchindex.NgramLength])]
		if !ok {
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		positions = append(positions, pos)
	}
	return positions
}

// Score sums weight plus tiebreaker bonus over every queried position set in
// the entry's fingerprint. The bonus is added once per matching bit.
func Score(entry *searchindex.IndexEntry, positions []int, weights []int) float64 {
	var score float64
	for _, pos := range positions {
		if entry.Fingerprint.Has(pos) {
			score += float64(weights[pos]) + entry.TiebreakerBonus
		}
	}
	return score
}
