// Package archive loads an ISBN code archive: a zstd-compressed bencode
// dictionary that maps each dataset prefix to its packed run buffer.
//
// Keys are resolved into the fixed Dataset set. Unknown keys are logged and
// skipped, and a missing required dataset fails the load:
//
//	cat, err := archive.Load(ctx, f, archive.WithRequired(archive.MD5))
//	if err != nil {
//		return err
//	}
//	md5 := cat.MustGet(archive.MD5)
package archive
