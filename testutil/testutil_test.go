package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns(t *testing.T) {
	rng := NewRNG(4711)

	r := rng.Runs(64, 10)
	assert.Equal(t, 64, r.Len())
	for _, n := range r.All() {
		assert.Less(t, n, uint32(10))
	}

	rng.Reset()
	again := rng.Runs(64, 10)
	assert.Equal(t, r, again)
}

func TestSortedPositions(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.SortedPositions(50, 100)
	require.Len(t, p, 50)
	for i := 1; i < len(p); i++ {
		assert.Less(t, p[i-1], p[i])
	}
	assert.Less(t, p[len(p)-1], uint64(100))

	assert.Len(t, rng.SortedPositions(10, 5), 5)
}

func TestArchive(t *testing.T) {
	data, err := Archive(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
