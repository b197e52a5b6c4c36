package runlength

import "fmt"

// PositionToGrid maps a position to its cell on a downsampled grid.
func PositionToGrid(position, gridWidth, scale uint64) (col, row uint64, err error) {
	if gridWidth == 0 || scale == 0 {
		return 0, 0, fmt.Errorf("%w: width=%d scale=%d", ErrInvalidGrid, gridWidth, scale)
	}
	cell := position / scale
	return cell % gridWidth, cell / gridWidth, nil
}

// GridToPosition returns the first position that falls into cell (col, row).
func GridToPosition(col, row, gridWidth, scale uint64) (uint64, error) {
	if gridWidth == 0 || scale == 0 {
		return 0, fmt.Errorf("%w: width=%d scale=%d", ErrInvalidGrid, gridWidth, scale)
	}
	if col >= gridWidth {
		return 0, fmt.Errorf("%w: column %d outside width %d", ErrInvalidGrid, col, gridWidth)
	}
	return (row*gridWidth + col) * scale, nil
}
