// Package mmap maps archive and snapshot files read-only into memory.
//
//	m, err := mmap.Open("aa_isbn13_codes.benc.zst")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op. Close is idempotent; callers must
// not touch Bytes() after Close returns.
package mmap
