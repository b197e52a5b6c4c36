package runlength

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// WordSize is the width in bytes of one encoded run length.
const WordSize = 4

var (
	// ErrMalformedInput is returned when a buffer is not a whole number of words.
	ErrMalformedInput = errors.New("runlength: malformed input")

	// ErrInvalidGrid is returned for non-positive grid widths or scales.
	ErrInvalidGrid = errors.New("runlength: invalid grid")
)

// Role is the semantic role of a run.
type Role uint8

const (
	// Streak marks a run of present positions.
	Streak Role = iota
	// Gap marks a run of absent positions.
	Gap
)

func (r Role) String() string {
	switch r {
	case Streak:
		return "streak"
	case Gap:
		return "gap"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// RoleAt returns the role of the i-th run of any sequence.
func RoleAt(i int) Role {
	return Role(i & 1)
}

// Runs is an immutable, decoded run sequence.
type Runs struct {
	lengths []uint32
}

// Decode interprets buf as a sequence of little-endian uint32 run lengths.
//
// The returned Runs does not alias buf.
func Decode(buf []byte) (Runs, error) {
	if len(buf)%WordSize != 0 {
		return Runs{}, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedInput, len(buf), WordSize)
	}

	lengths := make([]uint32, len(buf)/WordSize)
	for i := range lengths {
		lengths[i] = binary.LittleEndian.Uint32(buf[i*WordSize:])
	}

	return Runs{lengths: lengths}, nil
}

// CountStreaks returns the number of non-empty streaks in a packed buffer
// without decoding it. A trailing partial word is ignored.
func CountStreaks(buf []byte) int {
	n := 0
	for off := 0; off+WordSize <= len(buf); off += 2 * WordSize {
		if binary.LittleEndian.Uint32(buf[off:]) > 0 {
			n++
		}
	}
	return n
}

// New builds a run sequence from explicit lengths. The slice is copied.
func New(lengths ...uint32) Runs {
	cp := make([]uint32, len(lengths))
	copy(cp, lengths)
	return Runs{lengths: cp}
}

// Encode packs r into its wire format.
func Encode(r Runs) []byte {
	buf := make([]byte, len(r.lengths)*WordSize)
	for i, v := range r.lengths {
		binary.LittleEndian.PutUint32(buf[i*WordSize:], v)
	}
	return buf
}

// Len returns the number of runs (streaks and gaps).
func (r Runs) Len() int {
	return len(r.lengths)
}

// At returns the role and length of the i-th run.
func (r Runs) At(i int) (Role, uint32) {
	return RoleAt(i), r.lengths[i]
}

// All returns a restartable iterator over (role, length) pairs.
// Each call re-scans the underlying sequence from the first run.
func (r Runs) All() iter.Seq2[Role, uint32] {
	return func(yield func(Role, uint32) bool) {
		for i, v := range r.lengths {
			if !yield(RoleAt(i), v) {
				return
			}
		}
	}
}

// Total returns the number of positions covered by all runs.
func (r Runs) Total() uint64 {
	var total uint64
	for _, v := range r.lengths {
		total += uint64(v)
	}
	return total
}

// Present returns the number of positions covered by streaks.
func (r Runs) Present() uint64 {
	var n uint64
	for i := 0; i < len(r.lengths); i += 2 {
		n += uint64(r.lengths[i])
	}
	return n
}
