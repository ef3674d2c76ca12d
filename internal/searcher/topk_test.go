package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK_KeepsBest(t *testing.T) {
	top := newTopK(3)
	for i, score := range []float64{1, 5, 0, 3, 4, 2} {
		top.offer(i, score)
	}

	ranked := top.ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, []slot{{1, 5}, {4, 4}, {3, 3}}, ranked)
}

func TestTopK_ExcludesNonPositive(t *testing.T) {
	top := newTopK(5)
	top.offer(0, 0)
	top.offer(1, 2)

	assert.Equal(t, []slot{{1, 2}}, top.ranked())
}

func TestTopK_TiesFavorScanOrder(t *testing.T) {
	top := newTopK(2)
	top.offer(0, 1)
	top.offer(1, 1)
	top.offer(2, 1)

	assert.Equal(t, []slot{{0, 1}, {1, 1}}, top.ranked())
}

func TestTopK_MinimumCapacity(t *testing.T) {
	top := newTopK(0)
	top.offer(0, 1)
	top.offer(1, 2)
	assert.Equal(t, []slot{{1, 2}}, top.ranked())
}
