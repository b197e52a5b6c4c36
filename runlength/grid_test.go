package runlength

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionToGrid(t *testing.T) {
	tests := []struct {
		position, width, scale uint64
		col, row               uint64
	}{
		{0, 1000, 1, 0, 0},
		{999, 1000, 1, 999, 0},
		{1000, 1000, 1, 0, 1},
		{2500 * 1001, 1000, 2500, 1, 1},
		{49999, 50000, 100, 499, 0},
	}

	for _, tt := range tests {
		col, row, err := PositionToGrid(tt.position, tt.width, tt.scale)
		require.NoError(t, err)
		assert.Equal(t, tt.col, col, "position %d", tt.position)
		assert.Equal(t, tt.row, row, "position %d", tt.position)

		first, err := GridToPosition(col, row, tt.width, tt.scale)
		require.NoError(t, err)
		assert.LessOrEqual(t, first, tt.position)
		assert.Less(t, tt.position-first, tt.scale)
	}
}

func TestGridInvalid(t *testing.T) {
	_, _, err := PositionToGrid(1, 0, 1)
	require.ErrorIs(t, err, ErrInvalidGrid)

	_, _, err = PositionToGrid(1, 10, 0)
	require.ErrorIs(t, err, ErrInvalidGrid)

	_, err = GridToPosition(10, 0, 10, 1)
	require.ErrorIs(t, err, ErrInvalidGrid)
}
