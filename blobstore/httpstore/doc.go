// Package httpstore implements a read-only blobstore.BlobStore over plain
// HTTP(S) with ranged GET requests.
//
// The archive mirror rejects requests without a browser User-Agent and a
// Referer, so both are sent on every request.
package httpstore
