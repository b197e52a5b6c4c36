// Package index answers existence queries directly over a decoded run
// sequence.
//
// An Index is built once from a runlength.Runs and a base offset. At build
// time it records the boundaries of every non-empty streak together with a
// cumulative present count, so point lookups and range counts are binary
// searches over streaks instead of scans over positions:
//
//	streak i:   [starts[i], ends[i])      present positions
//	before[i]:  present positions in [0, starts[i])
//
// The Index never mutates after New returns and is safe for concurrent use.
package index
