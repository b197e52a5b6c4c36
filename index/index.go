package index

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/isbnmap/internal/isbn"
	"github.com/hupe1980/isbnmap/runlength"
)

// DefaultBaseOffset is the ISBN body that maps to position 0.
const DefaultBaseOffset uint64 = 978_000_000_000

var (
	// ErrInvalidIdentifier is returned for identifiers that are not 13 digits.
	ErrInvalidIdentifier = errors.New("index: invalid identifier")

	// ErrInvalidArgument is returned for negative counts or empty grids.
	ErrInvalidArgument = errors.New("index: invalid argument")
)

// Index is an immutable existence index over one run sequence.
// tableEntrySize is the per-streak cost of starts, ends and before.
const tableEntrySize = 3 * 8

type Index struct {
	runs runlength.Runs
	base uint64

	starts []uint64
	ends   []uint64
	before []uint64

	span    uint64
	present uint64
}

// Stats summarizes an Index.
type Stats struct {
	Runs    int    `json:"runs"`
	Streaks int    `json:"streaks"`
	Present uint64 `json:"present"`
	Span    uint64 `json:"span"`
}

// New builds an Index over runs. Position 0 corresponds to baseOffset.
func New(runs runlength.Runs, baseOffset uint64) *Index {
	ix := &Index{
		runs: runs,
		base: baseOffset,
	}

	var cursor uint64
	for role, n := range runs.All() {
		if role == runlength.Streak && n > 0 {
			ix.starts = append(ix.starts, cursor)
			ix.ends = append(ix.ends, cursor+uint64(n))
			ix.before = append(ix.before, ix.present)
			ix.present += uint64(n)
		}
		cursor += uint64(n)
	}
	ix.span = cursor

	return ix
}

// Runs returns the underlying run sequence.
func (ix *Index) Runs() runlength.Runs { return ix.runs }

// BaseOffset returns the ISBN body of position 0.
func (ix *Index) BaseOffset() uint64 { return ix.base }

// Len returns the number of present positions.
func (ix *Index) Len() uint64 { return ix.present }

// Stats returns summary counters.
func (ix *Index) Stats() Stats {
	return Stats{
		Runs:    ix.runs.Len(),
		Streaks: len(ix.starts),
		Present: ix.present,
		Span:    ix.span,
	}
}

// MemoryUsage returns the bytes held by the decoded runs and the lookup
// tables.
func (ix *Index) MemoryUsage() int64 {
	return int64(ix.runs.Len())*runlength.WordSize + int64(len(ix.starts))*tableEntrySize
}

// EstimateMemoryUsage returns what MemoryUsage will report for the index
// built from the packed buffer, without decoding it.
func EstimateMemoryUsage(packed []byte) int64 {
	return int64(len(packed)) + int64(runlength.CountStreaks(packed))*tableEntrySize
}

// Contains reports whether position lies inside a streak.
func (ix *Index) Contains(position uint64) bool {
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > position }) - 1
	return i >= 0 && position < ix.ends[i]
}

// Rank returns the number of present positions strictly below position.
func (ix *Index) Rank(position uint64) uint64 {
	j := ix.streakAtOrAfter(position)
	if j == len(ix.starts) {
		return ix.present
	}
	if position <= ix.starts[j] {
		return ix.before[j]
	}
	return ix.before[j] + position - ix.starts[j]
}

// CountRange returns the number of present positions in [lo, hi).
func (ix *Index) CountRange(lo, hi uint64) uint64 {
	if hi <= lo {
		return 0
	}
	return ix.Rank(hi) - ix.Rank(lo)
}

// streakAtOrAfter returns the first streak whose end lies beyond position.
func (ix *Index) streakAtOrAfter(position uint64) int {
	return sort.Search(len(ix.ends), func(j int) bool { return ix.ends[j] > position })
}

// IsPresent reports whether the ISBN-13 id is present. Identifiers whose body
// lies below the base offset are reported absent.
func (ix *Index) IsPresent(id string) (bool, error) {
	body, err := parse(id)
	if err != nil {
		return false, err
	}
	if body < ix.base {
		return false, nil
	}
	return ix.Contains(body - ix.base), nil
}

// Positions yields every present position in ascending order.
func (ix *Index) Positions() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i, start := range ix.starts {
			for p := start; p < ix.ends[i]; p++ {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Bitmap materializes the present positions into a roaring64 bitmap.
func (ix *Index) Bitmap() *roaring64.Bitmap {
	bm := roaring64.New()
	for i, start := range ix.starts {
		bm.AddRange(start, ix.ends[i])
	}
	bm.RunOptimize()
	return bm
}

func parse(id string) (uint64, error) {
	body, err := isbn.Parse(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}
	return body, nil
}
