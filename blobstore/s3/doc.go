// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", s3.WithPrefix("isbn/"))
//
//	m, err := isbnmap.Open(ctx, store, "aa_isbn13_codes_20241204T185335Z.benc.zst")
//
// # Features
//
//   - Range reads for sequential streaming
//   - Whole-object fetch through the transfer manager's concurrent downloader
//   - Multipart uploads for snapshots
package s3
