package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/isbnmap/archive"
	"github.com/hupe1980/isbnmap/blobstore"
	"github.com/hupe1980/isbnmap/internal/hash"
)

// Version is the current snapshot format version.
const Version uint16 = 1

var magic = [8]byte{'I', 'S', 'B', 'N', 'S', 'N', 'A', 'P'}

const (
	headerSize   = len(magic) + 2 + 1 + 2
	checksumSize = 4
)

var (
	// ErrBadMagic is returned when data is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrCorrupt is returned when a snapshot is truncated or inconsistent.
	ErrCorrupt = errors.New("snapshot: corrupt")
)

// Encode serializes packed run buffers. Datasets are written in key order.
func Encode(packed map[archive.Dataset][]byte, c Compression) ([]byte, error) {
	if len(packed) > math.MaxUint16 {
		return nil, fmt.Errorf("snapshot: too many datasets: %d", len(packed))
	}

	size := headerSize + checksumSize
	for _, buf := range packed {
		size += 1 + 32 + blockHeaderSize + len(buf)
	}

	out := make([]byte, 0, size)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, Version)
	out = append(out, byte(c))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(packed)))

	datasets := make([]archive.Dataset, 0, len(packed))
	for d := range packed {
		datasets = append(datasets, d)
	}
	slices.Sort(datasets)

	var err error
	for _, d := range datasets {
		name := d.String()
		out = append(out, byte(len(name)))
		out = append(out, name...)

		out, err = appendBlock(out, packed[d], c)
		if err != nil {
			return nil, fmt.Errorf("snapshot: dataset %s: %w", d, err)
		}
	}

	return binary.LittleEndian.AppendUint32(out, hash.CRC32C(out)), nil
}

// Decode parses a snapshot produced by Encode. The trailing CRC32C must
// match everything before it.
func Decode(data []byte) (map[archive.Dataset][]byte, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if [8]byte(data[:8]) != magic {
		return nil, ErrBadMagic
	}

	version := binary.LittleEndian.Uint16(data[8:])
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	body := data[:len(data)-checksumSize]
	if hash.CRC32C(body) != binary.LittleEndian.Uint32(data[len(body):]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	c := Compression(body[10])
	count := int(binary.LittleEndian.Uint16(body[11:]))

	rest := body[headerSize:]
	out := make(map[archive.Dataset][]byte, count)
	for i := range count {
		if len(rest) < 1 {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrCorrupt, i)
		}
		n := int(rest[0])
		if len(rest) < 1+n {
			return nil, fmt.Errorf("%w: entry %d name truncated", ErrCorrupt, i)
		}
		name := string(rest[1 : 1+n])
		rest = rest[1+n:]

		d, err := archive.ParseDataset(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if _, dup := out[d]; dup {
			return nil, fmt.Errorf("%w: dataset %s repeated", ErrCorrupt, d)
		}

		var buf []byte
		buf, rest, err = readBlock(rest, c)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d, err)
		}
		out[d] = buf
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(rest))
	}

	return out, nil
}

// Write encodes the catalog's run buffers and stores them under name.
func Write(ctx context.Context, store blobstore.BlobStore, name string, cat *archive.Catalog, c Compression) error {
	data, err := Encode(cat.Raw(), c)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Read loads and decodes the snapshot stored under name. A missing snapshot
// yields an error satisfying errors.Is(err, blobstore.ErrNotFound).
func Read(ctx context.Context, store blobstore.BlobStore, name string, limiter blobstore.IOLimiter) (map[archive.Dataset][]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob, limiter)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}
