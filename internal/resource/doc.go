// Package resource bounds what a catalog load may consume: decoded bytes held
// in memory, concurrent dataset decoders and archive read throughput.
package resource
