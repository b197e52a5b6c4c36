// Package testutil provides fixtures for isbnmap tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Run Sequences
//
//	rng := testutil.NewRNG(seed)
//	runs := rng.Runs(200, 40)                // 200 runs, lengths in [0, 40)
//	positions := rng.SortedPositions(100, 1e4) // distinct, ascending
//
// # Archives
//
//	data, _ := testutil.Archive(map[string]runlength.Runs{"md5": runs})
//
// Archive returns a zstd-compressed bencode dictionary in the same layout as
// the published aa_isbn13_codes files.
package testutil
