package server

import "golang.org/x/time/rate"

// Config holds the view geometry and request limits.
type Config struct {
	// DetailCount is the number of identifiers in a detail view.
	DetailCount int

	// ClusterCount is the number of identifiers in a cluster view.
	ClusterCount int

	// SampleCount is the run count of /api/samples without {n}.
	SampleCount int

	GlobalWidth  int
	GlobalHeight int
	GlobalScale  int

	// TileSize is the edge length of a get_tile response, in identifiers.
	TileSize int

	// TileGridWidth and TileGridHeight size the plane tiles are cut from, in
	// identifiers. Tile cells past its edges stay zero.
	TileGridWidth  int
	TileGridHeight int

	// TileCacheBytes bounds the encoded tiles kept in memory. Zero disables
	// the cache.
	TileCacheBytes int64

	// MaxExtract caps the identifiers returned by samples and isbns.
	MaxExtract int

	// RateLimit is the sustained request rate. Zero disables limiting.
	RateLimit rate.Limit

	// Burst is the token bucket size.
	Burst int
}

// DefaultConfig returns the geometry the front-end expects.
func DefaultConfig() Config {
	return Config{
		DetailCount:    100,
		ClusterCount:   800_000,
		SampleCount:    1000,
		GlobalWidth:    1000,
		GlobalHeight:   800,
		GlobalScale:    2500,
		TileSize:       1000,
		TileGridWidth:  1000 * 2500,
		TileGridHeight: 800,
		TileCacheBytes: 64 << 20,
		MaxExtract:     1_000_000,
		RateLimit:      50,
		Burst:          100,
	}
}
