// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("matrices/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Ranged GETs for partial reads
//   - Multipart uploads for large matrices, single PUT with CRC32C otherwise
//   - Automatic pagination for listing
//   - Custom endpoints with path-style addressing for S3-compatible servers
package s3
