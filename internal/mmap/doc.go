// Package mmap provides read-only memory-mapped file access.
//
// Matrix files are decoded straight out of the mapping, so a large file is
// never copied through an intermediate read buffer.
//
//	m, err := mmap.Open("matrix.sdm")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	header := m.Data[:48]
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
package mmap
