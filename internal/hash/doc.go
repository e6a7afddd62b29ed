// Package hash provides the checksum used by the matrix file format.
//
// Files are protected with CRC32-Castagnoli (CRC32C), which Go computes with
// hardware instructions on x86 (SSE4.2) and ARM (CRC extension):
//
//	checksum := hash.CRC32C(payload)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
//
// CRC32C detects accidental corruption only; it is not a cryptographic hash.
package hash
