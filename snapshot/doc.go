// Package snapshot persists the packed run buffers of a catalog so a restart
// can skip archive decompression and bencode decoding.
//
// Layout (little-endian):
//
//	magic    [8]byte "ISBNSNAP"
//	version  uint16
//	codec    uint8  (Compression)
//	count    uint16
//	count x  [name len uint8][name][block]
//
// A block is [uncompressed uint32][compressed uint32][data]; a compressed size
// of 0 means the data is stored raw.
package snapshot
