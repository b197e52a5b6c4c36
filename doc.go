// Package isbnmap indexes which ISBN-13 identifiers a catalog holds and answers
// membership, range and spatial aggregation queries over them.
//
// The identifier space (~10^12 values starting at 978000000000) is stored as a
// run-length sequence of alternating streaks (present) and gaps (absent). Each
// dataset of an ISBN code archive becomes one immutable index, so queries take
// no locks and run in O(log runs).
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./data")
//
//	m, err := isbnmap.Open(ctx, store, "aa_isbn13_codes_20241204T185335Z.benc.zst",
//	    isbnmap.WithSnapshot(store, "catalog.snap", snapshot.CompressionZSTD),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	ok, err := m.IsAvailable(ctx, isbnmap.MD5, "9780306406157")
//
// # Views
//
// The query surface mirrors the visualization front-end:
//
//	entries, _ := m.CheckFrom(ctx, isbnmap.MD5, "9780306406157", 100) // detail view
//	mask, _ := m.Mask(ctx, isbnmap.MD5, "9780306406157", 800000)      // cluster view
//	grid, _ := m.AggregateGrid(ctx, isbnmap.MD5, 1000, 800, 2500)    // global view
//
// # Sources
//
// Archives and snapshots are read through blobstore.BlobStore. Local files
// are memory-mapped; blobstore/s3, blobstore/minio and blobstore/httpstore
// fetch from remote storage.
package isbnmap
