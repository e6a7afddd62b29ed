// Package blobstore provides storage backends for matrix files.
//
// A Store holds immutable blobs addressed by name. Matrix files are written
// whole with Put and read back through Open, so every backend only needs
// whole-object writes and ranged reads.
//
// # Built-in Implementations
//
//   - LocalStore: local directory, reads are memory-mapped, writes are atomic
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 (and compatible endpoints) via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible servers via minio-go
//
// # Reading
//
// Blobs implement io.ReaderAt. Local blobs also implement Mappable, which
// exposes the file contents without a copy:
//
//	blob, err := store.Open(ctx, "left.sdm")
//	if err != nil { ... }
//	defer blob.Close()
//
//	data, err := blobstore.ReadAll(blob)
package blobstore
