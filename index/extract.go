package index

import (
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/isbnmap/internal/isbn"
	"github.com/hupe1980/isbnmap/runlength"
)

// Entry is one position of a CheckFrom walk.
type Entry struct {
	ISBN   string `json:"isbn"`
	Exists bool   `json:"exists"`
}

// ExtractRuns yields the identifier of every present position found while
// scanning the first n runs (streaks and gaps both count). n <= 0 scans
// every run once.
func (ix *Index) ExtractRuns(n int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var cursor uint64
		i := 0
		for role, length := range ix.runs.All() {
			if role == runlength.Streak {
				for p := cursor; p < cursor+uint64(length); p++ {
					body := ix.base + p
					if body > isbn.MaxBody {
						return
					}
					if !yield(isbn.Format(body)) {
						return
					}
				}
			}
			cursor += uint64(length)
			i++
			if i == n {
				return
			}
		}
	}
}

// ExtractIDs yields present identifiers in ascending order, stopping after
// limit identifiers. limit <= 0 yields all of them.
func (ix *Index) ExtractIDs(limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		emitted := 0
		for p := range ix.Positions() {
			body := ix.base + p
			if body > isbn.MaxBody {
				return
			}
			if !yield(isbn.Format(body)) {
				return
			}
			emitted++
			if emitted == limit {
				return
			}
		}
	}
}

// CheckFrom returns count consecutive identifiers starting at start, each
// with its presence flag. An empty start begins at position 0. The walk
// stops early only at the end of the 12-digit identifier space.
func (ix *Index) CheckFrom(start string, count int) ([]Entry, error) {
	body, err := ix.resolveStart(start, count)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, min(count, walkCap(body)))
	ix.walk(body, count, func(b uint64, exists bool) {
		entries = append(entries, Entry{ISBN: isbn.Format(b), Exists: exists})
	})
	return entries, nil
}

// Mask is CheckFrom without identifiers: one byte per position, 1 when
// present.
func (ix *Index) Mask(start string, count int) ([]byte, error) {
	body, err := ix.resolveStart(start, count)
	if err != nil {
		return nil, err
	}

	mask := make([]byte, 0, min(count, walkCap(body)))
	ix.walk(body, count, func(_ uint64, exists bool) {
		if exists {
			mask = append(mask, 1)
		} else {
			mask = append(mask, 0)
		}
	})
	return mask, nil
}

// MaskBits is Mask packed one bit per position. The bitset's Len is the
// number of positions walked.
func (ix *Index) MaskBits(start string, count int) (*bitset.BitSet, error) {
	body, err := ix.resolveStart(start, count)
	if err != nil {
		return nil, err
	}

	bs := bitset.New(uint(min(count, walkCap(body))))
	var i uint
	ix.walk(body, count, func(_ uint64, exists bool) {
		if exists {
			bs.Set(i)
		}
		i++
	})
	return bs, nil
}

func (ix *Index) resolveStart(start string, count int) (uint64, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: count %d", ErrInvalidArgument, count)
	}
	if start == "" {
		return ix.base, nil
	}
	return parse(start)
}

// walkCap is the number of bodies left in the identifier space from body on.
func walkCap(body uint64) int {
	if body > isbn.MaxBody {
		return 0
	}
	left := isbn.MaxBody - body + 1
	if left > uint64(int(^uint(0)>>1)) {
		return int(^uint(0) >> 1)
	}
	return int(left)
}

// walk visits count consecutive bodies starting at body, advancing a streak
// cursor instead of searching per position.
func (ix *Index) walk(body uint64, count int, fn func(body uint64, exists bool)) {
	j := -1
	for k := 0; k < count; k++ {
		b := body + uint64(k)
		if b > isbn.MaxBody {
			return
		}
		if b < ix.base {
			fn(b, false)
			continue
		}

		pos := b - ix.base
		if j < 0 {
			j = ix.streakAtOrAfter(pos)
		}
		for j < len(ix.ends) && ix.ends[j] <= pos {
			j++
		}
		fn(b, j < len(ix.starts) && pos >= ix.starts[j])
	}
}
