package archive

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isbnmap/internal/resource"
	"github.com/hupe1980/isbnmap/runlength"
	"github.com/hupe1980/isbnmap/testutil"
)

func mustArchive(t *testing.T, datasets map[string]runlength.Runs) []byte {
	t.Helper()
	data, err := testutil.Archive(datasets)
	require.NoError(t, err)
	return data
}

func TestLoad(t *testing.T) {
	data := mustArchive(t, map[string]runlength.Runs{
		"md5":     runlength.New(3, 2, 5),
		"isbndb":  runlength.New(0, 3, 4),
		"unknown": runlength.New(1),
	})

	cat, err := Load(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	defer cat.Close()

	assert.Equal(t, []Dataset{ISBNdb, MD5}, cat.Datasets())

	md5 := cat.MustGet(MD5)
	assert.Equal(t, uint64(8), md5.Len())

	ok, err := md5.IsPresent("9780000000002")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok = cat.Get(OL)
	assert.False(t, ok)
	assert.Panics(t, func() { cat.MustGet(OL) })
}

func TestLoad_MissingRequired(t *testing.T) {
	data := mustArchive(t, map[string]runlength.Runs{
		"isbndb": runlength.New(1, 1),
	})

	_, err := Load(context.Background(), bytes.NewReader(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDataset)

	var mde *MissingDatasetError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, []Dataset{MD5}, mde.Missing)
	assert.Contains(t, err.Error(), "md5")
}

func TestLoad_NoRequired(t *testing.T) {
	data := mustArchive(t, map[string]runlength.Runs{
		"ol": runlength.New(2, 2),
	})

	cat, err := Load(context.Background(), bytes.NewReader(data), WithRequired())
	require.NoError(t, err)
	assert.Equal(t, []Dataset{OL}, cat.Datasets())
}

func TestLoad_Malformed(t *testing.T) {
	t.Run("not zstd", func(t *testing.T) {
		_, err := Load(context.Background(), bytes.NewReader([]byte("plain text")))
		require.Error(t, err)
	})

	t.Run("not a dictionary", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		data := enc.EncodeAll([]byte("i42e"), nil)
		require.NoError(t, enc.Close())

		_, err = Load(context.Background(), bytes.NewReader(data))
		require.ErrorIs(t, err, ErrMalformedArchive)
	})

	t.Run("bad run buffer", func(t *testing.T) {
		_, err := New(context.Background(), map[Dataset][]byte{MD5: {1, 2, 3}})
		require.ErrorIs(t, err, runlength.ErrMalformedInput)
		assert.Contains(t, err.Error(), "md5")
	})
}

func TestLoad_BaseOffset(t *testing.T) {
	cat, err := New(context.Background(),
		map[Dataset][]byte{MD5: runlength.Encode(runlength.New(1))},
		WithBaseOffset(979_000_000_000),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(979_000_000_000), cat.BaseOffset())

	ok, err := cat.MustGet(MD5).IsPresent("9790000000001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoad_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxDecoders: 2})

	rng := testutil.NewRNG(7)
	packed := map[Dataset][]byte{
		MD5:    runlength.Encode(rng.Runs(100, 50)),
		ISBNdb: runlength.Encode(rng.Runs(60, 50)),
		OL:     runlength.Encode(rng.Runs(10, 50)),
	}
	cat, err := New(context.Background(), packed, WithResourceController(rc))
	require.NoError(t, err)

	// decoded runs plus 24 bytes of lookup tables per streak
	var want int64
	for _, d := range cat.Datasets() {
		ix := cat.MustGet(d)
		assert.Equal(t, int64(len(packed[d]))+int64(ix.Stats().Streaks)*24, ix.MemoryUsage())
		want += ix.MemoryUsage()
	}
	assert.Equal(t, want, rc.MemoryUsage())

	require.NoError(t, cat.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	t.Run("over budget", func(t *testing.T) {
		small := resource.NewController(resource.Config{MemoryLimitBytes: 8})
		_, err := New(context.Background(), packed, WithResourceController(small))
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Equal(t, int64(0), small.MemoryUsage())
	})

	t.Run("tables over budget", func(t *testing.T) {
		// room for the decoded runs but not the lookup tables
		buf := runlength.Encode(runlength.New(1, 1, 1, 1, 1))
		tight := resource.NewController(resource.Config{MemoryLimitBytes: int64(len(buf))})
		_, err := New(context.Background(), map[Dataset][]byte{MD5: buf}, WithResourceController(tight))
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Equal(t, int64(0), tight.MemoryUsage())
	})
}

func TestCatalog_Raw(t *testing.T) {
	packed := map[Dataset][]byte{
		MD5: runlength.Encode(runlength.New(3, 2, 5)),
		IA:  runlength.Encode(runlength.New(0, 1, 1)),
	}
	cat, err := New(context.Background(), packed)
	require.NoError(t, err)
	assert.Equal(t, packed, cat.Raw())
}

func TestCatalog_Uncovered(t *testing.T) {
	// md5: 0..2, isbndb: 1..4, ol: 8
	cat, err := New(context.Background(), map[Dataset][]byte{
		MD5:    runlength.Encode(runlength.New(3)),
		ISBNdb: runlength.Encode(runlength.New(0, 1, 4)),
		OL:     runlength.Encode(runlength.New(0, 8, 1)),
	})
	require.NoError(t, err)

	bm, err := cat.Uncovered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4, 8}, bm.ToArray())

	t.Run("without md5", func(t *testing.T) {
		c, err := New(context.Background(), map[Dataset][]byte{OL: runlength.Encode(runlength.New(1))}, WithRequired())
		require.NoError(t, err)
		_, err = c.Uncovered(context.Background())
		require.ErrorIs(t, err, ErrMissingDataset)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := cat.Uncovered(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}
