package snapshot

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/isbnmap/internal/conv"
)

// Compression selects the block codec.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression resolves a codec name as printed by String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("snapshot: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

const blockHeaderSize = 8

// appendBlock appends data as one block. Blocks that do not shrink below 90%
// are stored raw.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("snapshot: block: %w", err)
	}

	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	case CompressionNone:
	default:
		return nil, fmt.Errorf("snapshot: unsupported compression %s", c)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = binary.LittleEndian.AppendUint32(dst, size)
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, data...), nil
	}

	dst = binary.LittleEndian.AppendUint32(dst, size)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(compressed)))
	return append(dst, compressed...), nil
}

// readBlock decodes the block at the head of src and returns the rest.
func readBlock(src []byte, c Compression) (data, rest []byte, err error) {
	if len(src) < blockHeaderSize {
		return nil, nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	uncompressedSize := binary.LittleEndian.Uint32(src[0:])
	compressedSize := binary.LittleEndian.Uint32(src[4:])
	src = src[blockHeaderSize:]

	if compressedSize == 0 {
		if uint64(len(src)) < uint64(uncompressedSize) {
			return nil, nil, fmt.Errorf("%w: block data too small", ErrCorrupt)
		}
		out := make([]byte, uncompressedSize)
		copy(out, src)
		return out, src[uncompressedSize:], nil
	}

	if uint64(len(src)) < uint64(compressedSize) {
		return nil, nil, fmt.Errorf("%w: compressed block data too small", ErrCorrupt)
	}
	compressed := src[:compressedSize]
	rest = src[compressedSize:]

	switch c {
	case CompressionLZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, rest, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, rest, nil

	default:
		return nil, nil, fmt.Errorf("%w: compressed block under %s", ErrCorrupt, c)
	}
}
