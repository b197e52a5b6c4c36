// Package fs abstracts the few filesystem operations behind atomic blob
// writes so tests can inject failures.
//
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs or closes
//     of files whose name matches a rule
//
// Usage:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 16})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// There are no context.Context parameters: local syscalls cannot be
// interrupted. Slow backends go through [blobstore.Blob] instead.
package fs
