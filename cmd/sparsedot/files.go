package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/sparsedot/blobstore"
	"github.com/hupe1980/sparsedot/blobstore/minio"
	"github.com/hupe1980/sparsedot/blobstore/s3"
	"github.com/hupe1980/sparsedot/codec"
	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/mmio"
	"github.com/hupe1980/sparsedot/resource"
)

// isMatrixMarket reports whether location names a Matrix Market file.
func isMatrixMarket(location string) bool {
	return strings.EqualFold(path.Ext(location), ".mtx")
}

// locate resolves a local path, s3://bucket/key or minio://bucket/key to a
// store and the blob name inside it.
func (a *app) locate(ctx context.Context, location string) (blobstore.Store, string, error) {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok {
		return blobstore.NewLocalStore(filepath.Dir(location)), filepath.Base(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, "", fmt.Errorf("invalid location %q: want %s://bucket/key", location, scheme)
	}

	switch scheme {
	case "s3":
		var opts []s3.Option
		if a.s3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(a.s3Endpoint))
		}
		store, err := s3.New(ctx, bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	case "minio":
		store, err := minio.NewFromEnv(a.minioEndpoint, a.minioTLS, bucket, "")
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	default:
		return nil, "", fmt.Errorf("unsupported location scheme %q in %s", scheme, location)
	}
}

// content is a fully loaded matrix file.
type content struct {
	location string
	data     []byte
	release  func() error
}

// load reads the whole blob at location. Unthrottled local reads return the
// memory-mapped file; release must be called once decoding is done.
func (a *app) load(ctx context.Context, location string, rc *resource.Controller) (*content, error) {
	store, name, err := a.locate(ctx, location)
	if err != nil {
		return nil, err
	}
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	var data []byte
	if a.ioBytesPerSec > 0 {
		r := resource.NewRateLimitedReader(ctx, io.NewSectionReader(blob, 0, blob.Size()), rc)
		data, err = blobstore.ReadAllFrom(r, blob.Size())
		a.logger.Debug("throttled read", "location", location, "bytes", r.Bytes())
	} else {
		data, err = blobstore.ReadAll(blob)
	}
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return &content{location: location, data: data, release: blob.Close}, nil
}

func (c *content) header() (codec.Header, error) {
	h, err := codec.ReadHeader(bytes.NewReader(c.data))
	if err != nil {
		return codec.Header{}, fmt.Errorf("%s: %w", c.location, err)
	}
	return h, nil
}

// kinds reports the stored value and index types. Matrix Market files
// always decode as float64/int64.
func (c *content) kinds() (kinds, error) {
	if isMatrixMarket(c.location) {
		return kinds{codec.KindFloat64, codec.KindInt64}, nil
	}
	h, err := c.header()
	if err != nil {
		return kinds{}, err
	}
	return kinds{h.ValueKind, h.IndexKind}, nil
}

func decodeMatrix[T csr.Number, I csr.Index](c *content) (*csr.Matrix[T, I], error) {
	if isMatrixMarket(c.location) {
		m, err := decodeMatrixMarket(c)
		if err != nil {
			return nil, err
		}
		return csr.Convert[T, I](m)
	}
	m, err := codec.Unmarshal[T, I](c.data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.location, err)
	}
	return m, nil
}

func decodeMatrixMarket(c *content) (*csr.Matrix[float64, int64], error) {
	m, _, err := mmio.Read(bytes.NewReader(c.data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.location, err)
	}
	return m, nil
}

// saveMatrix encodes m, as Matrix Market when the location ends in .mtx and
// in the binary format otherwise, and stores it at location.
func saveMatrix[T csr.Number, I csr.Index](ctx context.Context, a *app, location string, m *csr.Matrix[T, I], c codec.Compression, rc *resource.Controller) error {
	var buf bytes.Buffer
	var w io.Writer = &buf
	if a.ioBytesPerSec > 0 {
		lw := resource.NewRateLimitedWriter(ctx, &buf, rc)
		defer func() { a.logger.Debug("throttled write", "location", location, "bytes", lw.Bytes()) }()
		w = lw
	}

	if isMatrixMarket(location) {
		if err := mmio.Write(w, m); err != nil {
			return err
		}
	} else if _, err := codec.Write(w, m, c); err != nil {
		return err
	}

	store, name, err := a.locate(ctx, location)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("%s: %w", location, err)
	}
	return nil
}

// kinds identifies one value/index instantiation.
type kinds struct {
	value codec.Kind
	index codec.Kind
}

func (k kinds) String() string { return k.value.String() + "/" + k.index.String() }

func parseKinds(value, index string, fallback kinds) (kinds, error) {
	k := fallback
	if value != "" {
		v, err := codec.ParseKind(value)
		if err != nil {
			return kinds{}, fmt.Errorf("invalid --values: %w", err)
		}
		k.value = v
	}
	if index != "" {
		i, err := codec.ParseKind(index)
		if err != nil || (i != codec.KindInt32 && i != codec.KindInt64) {
			return kinds{}, fmt.Errorf("invalid --indices %q", index)
		}
		k.index = i
	}
	return k, nil
}
