package runlength

import (
	"errors"
	"iter"
	"math"
)

// ErrUnordered is returned by FromPositions when positions are not strictly ascending.
var ErrUnordered = errors.New("runlength: positions not strictly ascending")

// Builder accumulates present positions in ascending order and emits the
// matching run sequence.
type Builder struct {
	lengths []uint32
	cursor  uint64 // next position not yet covered by a run
}

// Add marks pos as present. Positions must be strictly ascending.
func (b *Builder) Add(pos uint64) error {
	if len(b.lengths) == 0 {
		b.lengths = append(b.lengths, 0) // leading streak
	}
	if pos < b.cursor {
		return ErrUnordered
	}

	if len(b.lengths)%2 == 1 {
		if pos == b.cursor {
			b.extend(1)
			return nil
		}
		b.appendRun(0) // close the current streak with a gap
	}
	b.extend(pos - b.cursor)
	b.appendRun(1)
	return nil
}

// Pad extends the sequence with a trailing gap so it covers [0, size).
func (b *Builder) Pad(size uint64) {
	if size <= b.cursor {
		return
	}
	if len(b.lengths) == 0 {
		b.lengths = append(b.lengths, 0)
	}
	if len(b.lengths)%2 == 1 {
		b.appendRun(0)
	}
	b.extend(size - b.cursor)
}

// Runs returns the sequence built so far.
func (b *Builder) Runs() Runs {
	return New(b.lengths...)
}

// appendRun opens a new run of length n.
func (b *Builder) appendRun(n uint32) {
	b.lengths = append(b.lengths, n)
	b.cursor += uint64(n)
}

// extend grows the last run by n, splitting across uint32 overflow with a
// zero-length run of the opposite role.
func (b *Builder) extend(n uint64) {
	for n > 0 {
		last := len(b.lengths) - 1
		room := uint64(math.MaxUint32 - b.lengths[last])
		step := min(n, room)
		b.lengths[last] += uint32(step)
		b.cursor += step
		n -= step
		if n > 0 {
			b.lengths = append(b.lengths, 0, 0)
		}
	}
}

// FromPositions builds the run sequence for a strictly ascending sequence of
// present positions.
func FromPositions(positions iter.Seq[uint64]) (Runs, error) {
	var b Builder
	for p := range positions {
		if err := b.Add(p); err != nil {
			return Runs{}, err
		}
	}
	return b.Runs(), nil
}
