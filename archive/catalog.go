package archive

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/internal/resource"
	"github.com/hupe1980/isbnmap/runlength"
)

// Catalog holds one immutable index per dataset present in an archive.
// It is safe for concurrent use.
type Catalog struct {
	indexes [numDatasets]*index.Index
	base    uint64

	rc      *resource.Controller
	charged int64
}

// Get returns the index of d, if present.
func (c *Catalog) Get(d Dataset) (*index.Index, bool) {
	if !d.Valid() {
		return nil, false
	}
	ix := c.indexes[d]
	return ix, ix != nil
}

// MustGet is like Get but panics if d is absent.
func (c *Catalog) MustGet(d Dataset) *index.Index {
	ix, ok := c.Get(d)
	if !ok {
		panic(fmt.Sprintf("archive: dataset %s not loaded", d))
	}
	return ix
}

// Datasets returns the present datasets in key order.
func (c *Catalog) Datasets() []Dataset {
	var out []Dataset
	for i, ix := range c.indexes {
		if ix != nil {
			out = append(out, Dataset(i))
		}
	}
	return out
}

// BaseOffset returns the ISBN body mapped to position 0.
func (c *Catalog) BaseOffset() uint64 { return c.base }

// Raw returns the packed run buffer of every present dataset.
func (c *Catalog) Raw() map[Dataset][]byte {
	out := make(map[Dataset][]byte, len(c.indexes))
	for i, ix := range c.indexes {
		if ix != nil {
			out[Dataset(i)] = runlength.Encode(ix.Runs())
		}
	}
	return out
}

// Uncovered returns the positions present in at least one catalog other than
// md5 but absent from md5.
func (c *Catalog) Uncovered(ctx context.Context) (*roaring64.Bitmap, error) {
	md5, ok := c.Get(MD5)
	if !ok {
		return nil, &MissingDatasetError{Missing: []Dataset{MD5}}
	}

	out := roaring64.New()
	for i, ix := range c.indexes {
		if ix == nil || Dataset(i) == MD5 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Or(ix.Bitmap())
	}
	out.AndNot(md5.Bitmap())
	out.RunOptimize()

	return out, nil
}

// Close releases the memory charged for the catalog's run buffers.
func (c *Catalog) Close() error {
	if c.charged > 0 {
		c.rc.ReleaseMemory(c.charged)
		c.charged = 0
	}
	return nil
}
