package testutil

import (
	"bytes"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/isbnmap/runlength"
	"github.com/jackpal/bencode-go"
	"github.com/klauspost/compress/zstd"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Runs generates a run sequence of n runs with lengths in [0, maxLen).
// Roughly one run in eight has length zero.
func (r *RNG) Runs(n, maxLen int) runlength.Runs {
	r.mu.Lock()
	defer r.mu.Unlock()

	lengths := make([]uint32, n)
	for i := range lengths {
		if r.rand.Intn(8) == 0 {
			continue
		}
		lengths[i] = uint32(r.rand.Intn(maxLen))
	}
	return runlength.New(lengths...)
}

// SortedPositions returns n distinct ascending positions drawn from [0, span).
func (r *RNG) SortedPositions(n, span int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, span)
	picked := make(map[uint64]struct{}, n)
	for len(picked) < n {
		picked[uint64(r.rand.Intn(span))] = struct{}{}
	}

	out := make([]uint64, 0, n)
	for p := range picked {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Archive encodes datasets as a zstd-compressed bencode dictionary mapping
// each prefix to its packed run buffer.
func Archive(datasets map[string]runlength.Runs) ([]byte, error) {
	dict := make(map[string]string, len(datasets))
	for prefix, runs := range datasets {
		dict[prefix] = string(runlength.Encode(runs))
	}

	var raw bytes.Buffer
	if err := bencode.Marshal(&raw, dict); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(raw.Bytes(), nil), nil
}
