// Package codec reads and writes compressed sparse matrices in a
// self-describing binary format.
//
// A file is a fixed 48-byte little-endian header followed by three sections
// (offsets, indices, values). Each section is a sequence of blocks, each
// optionally compressed with LZ4 or ZSTD:
//
//	header   magic "SDTN" | version | value kind | index kind | order |
//	         compression | rows | cols | nnz | CRC32-C of the payload
//	section  [encoded length uint64] block...
//	block    [uncompressed uint32][compressed uint32, 0 = stored][bytes]
//
// The header carries the element and index widths, so a reader that does
// not know them up front calls ReadHeader first and dispatches on Kind.
package codec
