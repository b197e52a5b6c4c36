// Package cache provides a byte-budgeted LRU for encoded response bodies.
//
// Tiles are expensive to count and the front-end requests the same handful
// repeatedly while panning, so the server keeps their encoded bodies here.
// When a resource.Controller is attached, cached bytes are charged against
// its memory budget and entries that do not fit are simply not cached.
package cache
