package isbnmap

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/isbnmap/archive"
	"github.com/hupe1980/isbnmap/blobstore"
	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/snapshot"
)

const (
	sourceArchive  = "archive"
	sourceSnapshot = "snapshot"
)

// Map is a loaded set of dataset indexes. After Open it is immutable and safe
// for concurrent use.
type Map struct {
	cat    *archive.Catalog
	opts   options
	source string
	closed atomic.Bool
}

// Open loads the archive stored under name. With WithSnapshot, a valid
// snapshot is preferred and a fresh one is written after an archive load.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Map, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	start := time.Now()
	cat, source, err := load(ctx, store, name, o)
	duration := time.Since(start)

	datasets := 0
	if cat != nil {
		datasets = len(cat.Datasets())
	}
	o.metricsCollector.RecordLoad(source, datasets, duration, err)
	o.logger.LogLoad(ctx, source, name, datasets, duration, err)

	if err != nil {
		return nil, translateError(err)
	}

	return &Map{cat: cat, opts: o, source: source}, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, o options) (*archive.Catalog, string, error) {
	archiveOpts := []archive.Option{
		archive.WithRequired(o.required...),
		archive.WithBaseOffset(o.baseOffset),
		archive.WithLogger(o.logger.Logger),
		archive.WithResourceController(o.rc),
	}

	if sc := o.snapshot; sc != nil {
		packed, err := snapshot.Read(ctx, sc.store, sc.name, o.rc)
		if err == nil {
			cat, err := archive.New(ctx, packed, archiveOpts...)
			if err == nil {
				return cat, sourceSnapshot, nil
			}
			o.logger.WarnContext(ctx, "snapshot rejected, loading archive", "name", sc.name, "error", err)
		} else if !errors.Is(err, blobstore.ErrNotFound) {
			o.logger.WarnContext(ctx, "snapshot unreadable, loading archive", "name", sc.name, "error", err)
		}
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, sourceArchive, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	r, err := blobstore.Stream(ctx, blob, o.rc)
	if err != nil {
		return nil, sourceArchive, fmt.Errorf("read %s: %w", name, err)
	}

	cat, err := archive.Load(ctx, r, archiveOpts...)
	if err != nil {
		return nil, sourceArchive, err
	}

	if sc := o.snapshot; sc != nil {
		err := snapshot.Write(ctx, sc.store, sc.name, cat, sc.compression)
		o.logger.LogSnapshot(ctx, sc.name, err)
	}

	return cat, sourceArchive, nil
}

// Source reports whether the map was loaded from "archive" or "snapshot".
func (m *Map) Source() string { return m.source }

// Catalog returns the underlying catalog.
func (m *Map) Catalog() *archive.Catalog { return m.cat }

// Datasets returns the loaded datasets in key order.
func (m *Map) Datasets() []Dataset { return m.cat.Datasets() }

// Index returns the index of d.
func (m *Map) Index(d Dataset) (*index.Index, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	ix, ok := m.cat.Get(d)
	if !ok {
		return nil, fmt.Errorf("%w: %s not loaded", ErrUnknownDataset, d)
	}
	return ix, nil
}

// Stats summarizes the index of d.
func (m *Map) Stats(d Dataset) (index.Stats, error) {
	ix, err := m.Index(d)
	if err != nil {
		return index.Stats{}, err
	}
	return ix.Stats(), nil
}

func (m *Map) observe(ctx context.Context, op string, d Dataset, start time.Time, err error) {
	duration := time.Since(start)
	m.opts.metricsCollector.RecordQuery(op, duration, err)
	m.opts.logger.LogQuery(ctx, op, d, duration, err)
}

// IsAvailable reports whether the 13-digit identifier is present in d.
// The check digit is not verified.
func (m *Map) IsAvailable(ctx context.Context, d Dataset, isbn string) (ok bool, err error) {
	defer func(start time.Time) { m.observe(ctx, "is_available", d, start, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return false, err
	}
	ok, err = ix.IsPresent(isbn)
	return ok, translateError(err)
}

// ExtractRuns lists the identifiers covered by the first n runs of d,
// stopping after limit identifiers. n <= 0 scans all runs and limit <= 0
// lists every identifier they cover.
func (m *Map) ExtractRuns(ctx context.Context, d Dataset, n, limit int) (ids []string, err error) {
	defer func(start time.Time) { m.observe(ctx, "extract_runs", d, start, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	for id := range ix.ExtractRuns(n) {
		if limit > 0 && len(ids) == limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ExtractIDs lists up to limit present identifiers of d in ascending order.
// limit <= 0 lists all.
func (m *Map) ExtractIDs(ctx context.Context, d Dataset, limit int) (ids []string, err error) {
	defer func(start time.Time) { m.observe(ctx, "extract_ids", d, start, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	for id := range ix.ExtractIDs(limit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CheckFrom reports presence for count consecutive identifiers starting at start.
func (m *Map) CheckFrom(ctx context.Context, d Dataset, start string, count int) (entries []index.Entry, err error) {
	defer func(t time.Time) { m.observe(ctx, "check_from", d, t, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	entries, err = ix.CheckFrom(start, count)
	return entries, translateError(err)
}

// Mask is like CheckFrom but returns one byte (0 or 1) per identifier.
func (m *Map) Mask(ctx context.Context, d Dataset, start string, count int) (mask []byte, err error) {
	defer func(t time.Time) { m.observe(ctx, "mask", d, t, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	mask, err = ix.Mask(start, count)
	return mask, translateError(err)
}

// MaskBits is like Mask but packs one bit per identifier.
func (m *Map) MaskBits(ctx context.Context, d Dataset, start string, count int) (bits *bitset.BitSet, err error) {
	defer func(t time.Time) { m.observe(ctx, "mask", d, t, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	bits, err = ix.MaskBits(start, count)
	return bits, translateError(err)
}

// AggregateGrid counts present identifiers of d per grid cell and scales the
// counts to 0..255, indexed [row][col].
func (m *Map) AggregateGrid(ctx context.Context, d Dataset, width, height, scale int) (grid [][]int, err error) {
	defer func(t time.Time) { m.observe(ctx, "aggregate_grid", d, t, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	g, err := ix.AggregateGrid(width, height, scale)
	if err != nil {
		return nil, translateError(err)
	}
	return g.Normalize(), nil
}

// Tile counts present identifiers of d for one tileWidth x tileHeight window
// of a gridWidth x gridHeight grid. Counts are not rescaled.
func (m *Map) Tile(ctx context.Context, d Dataset, tileX, tileY, tileWidth, tileHeight, gridWidth, gridHeight, scale int) (g *index.Grid, err error) {
	defer func(t time.Time) { m.observe(ctx, "tile", d, t, err) }(time.Now())

	ix, err := m.Index(d)
	if err != nil {
		return nil, err
	}
	g, err = ix.Tile(tileX, tileY, tileWidth, tileHeight, gridWidth, gridHeight, scale)
	return g, translateError(err)
}

// Uncovered returns the positions known to a dataset other than md5 but
// absent from md5.
func (m *Map) Uncovered(ctx context.Context) (bm *roaring64.Bitmap, err error) {
	defer func(t time.Time) { m.observe(ctx, "uncovered", MD5, t, err) }(time.Now())

	if m.closed.Load() {
		return nil, ErrClosed
	}
	bm, err = m.cat.Uncovered(ctx)
	return bm, translateError(err)
}

// Close releases the memory reserved for the map. Queries fail with
// ErrClosed afterwards.
func (m *Map) Close() error {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.cat.Close()
}
