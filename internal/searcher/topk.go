package searcher

import "slices"

// DefaultCapacity is the number of results kept per query
const DefaultCapacity = 20

type slot struct {
	index int
	score float64
}

// topK is a fixed-capacity result buffer. The lowest-scoring slot is cached
// and recomputed lazily after every replacement.
type topK struct {
	slots []slot
	worst int // -1 when the cached worst slot is stale
}

func newTopK(capacity int) *topK {
	slots := make([]slot, max(1, capacity))
	for i := range slots {
		slots[i] = slot{index: -1}
	}
	return &topK{slots: slots, worst: -1}
}

// offer places the entry if it beats the current worst slot. Equal scores do
// not displace, so earlier entries win ties.
func (t *topK) offer(index int, score float64) {
	if t.worst < 0 {
		t.worst = t.findWorst()
	}
	if score > t.slots[t.worst].score {
		t.slots[t.worst] = slot{index: index, score: score}
		t.worst = -1
	}
}

func (t *topK) findWorst() int {
	worst := 0
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i].score < t.slots[worst].score {
			worst = i
		}
	}
	return worst
}

// ranked returns occupied slots with a positive score, best first, ties in
// scan order.
func (t *topK) ranked() []slot {
	out := make([]slot, 0, len(t.slots))
	for _, s := range t.slots {
		if s.index >= 0 && s.score > 0 {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b slot) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.index - b.index
		}
	})
	return out
}
