// Package blobstore provides read access to the ISBN code archive and
// storage for decoded snapshots.
//
// BlobStore is the interface for opening and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory, for tests
//   - minio.Store: MinIO and S3-compatible endpoints
//   - s3.Store: Amazon S3 with range reads and parallel downloads
//   - httpstore.Store: Plain HTTP(S) mirrors with range requests
//
// # Reading Whole Blobs
//
// The archive is always consumed in full. ReadAll picks the cheapest path a
// Blob offers:
//
//	Mappable  → zero-copy Bytes()
//	Fetcher   → backend-specific bulk download
//	otherwise → sequential ReadAt in chunks, throttled by an IOLimiter
package blobstore
