package index

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxCells bounds the number of cells a single aggregation may allocate.
const MaxCells = 1 << 26

// Grid holds per-cell counts of present positions, row-major.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Scale  uint64 `json:"scale"`

	// OriginCol and OriginRow locate a tile on the full grid.
	OriginCol int `json:"origin_col"`
	OriginRow int `json:"origin_row"`

	Counts []uint64 `json:"counts"`
}

// At returns the count of the cell at (col, row).
func (g *Grid) At(col, row int) uint64 {
	return g.Counts[row*g.Width+col]
}

// Total returns the sum of all cells.
func (g *Grid) Total() uint64 {
	var total uint64
	for _, c := range g.Counts {
		total += c
	}
	return total
}

// Max returns the largest cell count.
func (g *Grid) Max() uint64 {
	var m uint64
	for _, c := range g.Counts {
		m = max(m, c)
	}
	return m
}

// Normalize rescales every cell linearly into [0, 255] against the largest
// cell. A grid with no present positions normalizes to all zeros.
func (g *Grid) Normalize() [][]int {
	peak := g.Max()
	rows := make([][]int, g.Height)
	for r := range rows {
		row := make([]int, g.Width)
		if peak > 0 {
			for c := range row {
				hi, lo := bits.Mul64(g.Counts[r*g.Width+c], 255)
				q, _ := bits.Div64(hi, lo, peak)
				row[c] = int(q)
			}
		}
		rows[r] = row
	}
	return rows
}

// AggregateGrid counts present positions per cell of a width x height grid
// where each cell covers scale consecutive positions. Positions beyond the
// last cell are dropped.
func (ix *Index) AggregateGrid(width, height, scale int) (*Grid, error) {
	cells, err := gridCells(width, height, scale)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		Width:  width,
		Height: height,
		Scale:  uint64(scale),
		Counts: make([]uint64, cells),
	}
	sc := uint64(scale)
	n := uint64(cells)

	for i, s := range ix.starts {
		first := s / sc
		if first >= n {
			break
		}
		e := ix.ends[i]
		last := min((e-1)/sc, n-1)
		for c := first; c <= last; c++ {
			lo := max(s, c*sc)
			hi := min(e, cellEnd(c, sc))
			g.Counts[c] += hi - lo
		}
	}

	return g, nil
}

// Tile counts present positions for a tileWidth x tileHeight window of a
// gridWidth x gridHeight grid. Tile (tileX, tileY) starts at column
// tileX*tileWidth and row tileY*tileHeight. Cells past the grid edges stay
// zero, matching what AggregateGrid drops.
func (ix *Index) Tile(tileX, tileY, tileWidth, tileHeight, gridWidth, gridHeight, scale int) (*Grid, error) {
	cells, err := gridCells(tileWidth, tileHeight, scale)
	if err != nil {
		return nil, err
	}
	if tileX < 0 || tileY < 0 || gridWidth <= 0 || gridHeight <= 0 {
		return nil, fmt.Errorf("%w: tile (%d, %d) on grid %dx%d", ErrInvalidArgument, tileX, tileY, gridWidth, gridHeight)
	}
	if tileX > math.MaxInt/tileWidth || tileY > math.MaxInt/tileHeight {
		return nil, fmt.Errorf("%w: tile (%d, %d) out of range", ErrInvalidArgument, tileX, tileY)
	}

	g := &Grid{
		Width:     tileWidth,
		Height:    tileHeight,
		Scale:     uint64(scale),
		OriginCol: tileX * tileWidth,
		OriginRow: tileY * tileHeight,
		Counts:    make([]uint64, cells),
	}
	if g.OriginCol >= gridWidth || g.OriginRow >= gridHeight {
		return g, nil
	}

	sc := uint64(scale)
	cols := min(tileWidth, gridWidth-g.OriginCol)
	rows := min(tileHeight, gridHeight-g.OriginRow)
	for y := 0; y < rows; y++ {
		cell := uint64(g.OriginRow+y)*uint64(gridWidth) + uint64(g.OriginCol)
		prev := ix.Rank(satMul(cell, sc))
		for x := 0; x < cols; x++ {
			next := ix.Rank(cellEnd(cell+uint64(x), sc))
			g.Counts[y*tileWidth+x] = next - prev
			prev = next
		}
	}

	return g, nil
}

func gridCells(width, height, scale int) (int, error) {
	if width <= 0 || height <= 0 || scale <= 0 {
		return 0, fmt.Errorf("%w: grid %dx%d scale %d", ErrInvalidArgument, width, height, scale)
	}
	if uint64(width)*uint64(height) > MaxCells {
		return 0, fmt.Errorf("%w: grid %dx%d exceeds %d cells", ErrInvalidArgument, width, height, MaxCells)
	}
	return width * height, nil
}

// cellEnd returns the first position after cell c, saturating on overflow.
func cellEnd(c, scale uint64) uint64 {
	return satMul(c+1, scale)
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}
