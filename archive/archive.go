package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"

	"github.com/jackpal/bencode-go"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/runlength"
)

// Load decompresses and decodes an archive read from r.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*Catalog, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("archive: zstd reader: %w", err)
	}
	defer dec.Close()

	v, err := bencode.Decode(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}

	dict, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, want dictionary", ErrMalformedArchive, v)
	}

	packed := make(map[Dataset][]byte, len(dict))
	for key, val := range dict {
		d, err := ParseDataset(key)
		if err != nil {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "skipping unknown dataset", slog.String("dataset", key))
			continue
		}

		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: dataset %s is %T, want byte string", ErrMalformedArchive, d, val)
		}
		packed[d] = []byte(s)
	}

	return build(ctx, packed, o)
}

// New builds a Catalog from packed run buffers keyed by dataset.
func New(ctx context.Context, packed map[Dataset][]byte, opts ...Option) (*Catalog, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return build(ctx, packed, o)
}

func build(ctx context.Context, packed map[Dataset][]byte, o options) (*Catalog, error) {
	for d := range packed {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownDataset, uint8(d))
		}
	}

	var missing []Dataset
	for _, d := range o.required {
		if _, ok := packed[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &MissingDatasetError{Missing: slices.Compact(missing)}
	}

	c := &Catalog{
		base: o.base,
		rc:   o.rc,
	}

	g, gctx := errgroup.WithContext(ctx)
	if o.rc == nil {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}

	charges := make([]int64, numDatasets)
	for d, buf := range packed {
		g.Go(func() error {
			if err := o.rc.AcquireDecoder(gctx); err != nil {
				return err
			}
			defer o.rc.ReleaseDecoder()

			need := index.EstimateMemoryUsage(buf)
			if err := o.rc.AcquireMemory(gctx, need); err != nil {
				return fmt.Errorf("archive: dataset %s: %w", d, err)
			}
			charges[d] = need

			runs, err := runlength.Decode(buf)
			if err != nil {
				return fmt.Errorf("archive: dataset %s: %w", d, err)
			}
			c.indexes[d] = index.New(runs, o.base)
			return nil
		})
	}

	err := g.Wait()
	for _, n := range charges {
		c.charged += n
	}
	if err != nil {
		c.Close()
		return nil, err
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "catalog built",
		slog.Int("datasets", len(packed)),
		slog.Int64("bytes", c.charged),
	)

	return c, nil
}
