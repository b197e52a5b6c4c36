// Package runlength decodes the packed run-length stream that describes which
// ISBN positions are present in a catalog.
//
// # Wire Format
//
// The stream is a sequence of little-endian uint32 values. Values alternate
// between two roles, always starting with a streak:
//
//	┌──────────┬──────────┬──────────┬──────────┬─────
//	│ streak 0 │  gap 0   │ streak 1 │  gap 1   │ ...
//	└──────────┴──────────┴──────────┴──────────┴─────
//
// A streak counts consecutive present positions, a gap counts consecutive
// absent positions. A dataset that begins with absent positions starts with a
// zero-length streak. Zero-length runs are legal anywhere and still flip the
// role.
//
// # Grid Mapping
//
// Positions are laid out row-major on a downsampled 2-D grid:
//
//	col = (position / scale) % gridWidth
//	row = (position / scale) / gridWidth
//
// The grid is used only for spatial aggregation, never for storage.
package runlength
