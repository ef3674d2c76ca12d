package searchindex

import (
	"regexp"
	"slices"

	"github.com/dshills/godocsearch/internal/fingerprint"
)

// CompileNgramTable assigns every n-gram a bit position by descending number
// of sets containing it. Ties keep first-appearance order, so the result is a
// pure function of the input sequence. Each set must hold unique n-grams.
func CompileNgramTable(sets [][]string) map[string]int {
	counts := make(map[string]int)
	var order []string
	for _, set := range sets {
		for _, ngram := range set {
			if counts[ngram] == 0 {
				order = append(order, ngram)
			}
			counts[ngram]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})

	table := make(map[string]int, len(order))
	for pos, ngram := range order {
		table[ngram] = pos
	}
	return table
}

// weightRules are checked in full; the highest matching weight wins.
// Relative order matters more than magnitude: call syntax > explicit segment
// start > generic token start > punctuation or capitals > plain lowercase.
var weightRules = []struct {
	pattern *regexp.Regexp
	weight  int
}{
	{regexp.MustCompile(`[^a-z]`), 2},
	{regexp.MustCompile(`^ `), 3},
	{regexp.MustCompile(`^:`), 4},
	{regexp.MustCompile(`[#.(]`), 50},
}

// ComputeWeight scores an n-gram by its textual shape
func ComputeWeight(ngram string) int {
	weight := 1
	for _, rule := range weightRules {
		if rule.weight > weight && rule.pattern.MatchString(ngram) {
			weight = rule.weight
		}
	}
	return weight
}

// ComputeWeights returns one weight per bit position. Artifact validation
// rejects tables whose positions alias; given one anyway, a shared position
// takes the largest of its weights.
func ComputeWeights(table map[string]int) []int {
	size := 0
	for _, pos := range table {
		if pos+1 > size {
			size = pos + 1
		}
	}

	weights := make([]int, size)
	for ngram, pos := range table {
		if w := ComputeWeight(ngram); w > weights[pos] {
			weights[pos] = w
		}
	}
	return weights
}

// GenerateFingerprint sets the bit of every n-gram found in table. N-grams
// missing from the table are skipped.
func GenerateFingerprint(ngrams []string, table map[string]int) fingerprint.Fingerprint {
	positions := make([]int, 0, len(ngrams))
	for _, ngram := range ngrams {
		if pos, ok := table[ngram]; ok {
			positions = append(positions, pos)
		}
	}
	return fingerprint.FromPositions(positions)
}
