package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsedot"
	"github.com/hupe1980/sparsedot/blobstore"
	"github.com/hupe1980/sparsedot/codec"
	"github.com/hupe1980/sparsedot/csr"
)

const (
	leftMTX = `%%MatrixMarket matrix coordinate real general
3 3 4
1 1 1
1 3 2
2 2 3
3 1 4
`
	rightMTX = `%%MatrixMarket matrix coordinate real general
3 2 4
1 1 1
1 2 2
2 2 1
3 1 3
`
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fixtures writes both operands as Matrix Market and converts them, the
// right one to column-major.
func fixtures(t *testing.T) (dir, left, right string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mtx"), []byte(leftMTX), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mtx"), []byte(rightMTX), 0o600))

	left = filepath.Join(dir, "a.sdm")
	right = filepath.Join(dir, "b.sdm")
	_, err := execute(t, "convert", "--in", filepath.Join(dir, "a.mtx"), "--out", left)
	require.NoError(t, err)
	_, err = execute(t, "convert", "--in", filepath.Join(dir, "b.mtx"), "--out", right, "--order", "col", "--compression", "lz4")
	require.NoError(t, err)
	return dir, left, right
}

func TestMultiply(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		_, left, right := fixtures(t)

		out, err := execute(t, "multiply", "--left", left, "--right", right, "--top-n", "1")
		require.NoError(t, err)
		assert.Equal(t, "%%MatrixMarket matrix coordinate real general\n3 2 3\n1 1 7\n2 2 3\n3 2 8\n", out)
	})

	t.Run("matrix market operands", func(t *testing.T) {
		dir, _, right := fixtures(t)

		out, err := execute(t, "multiply", "--left", filepath.Join(dir, "a.mtx"), "--right", right, "--top-n", "1")
		require.NoError(t, err)
		assert.Equal(t, "%%MatrixMarket matrix coordinate real general\n3 2 3\n1 1 7\n2 2 3\n3 2 8\n", out)
	})

	t.Run("threshold drops entries", func(t *testing.T) {
		_, left, right := fixtures(t)

		out, err := execute(t, "multiply", "-a", left, "-b", right, "-n", "2", "--threshold", "4")
		require.NoError(t, err)
		assert.Equal(t, "%%MatrixMarket matrix coordinate real general\n3 2 2\n1 1 7\n3 2 8\n", out)
	})

	t.Run("parallel file output", func(t *testing.T) {
		dir, left, right := fixtures(t)
		result := filepath.Join(dir, "c.sdm")

		out, err := execute(t, "--io-limit", "100MB", "multiply",
			"--left", left, "--right", right, "--top-n", "2",
			"--workers", "2", "--strategy", "block", "--block-size", "1",
			"--partition", "rows", "--memory-limit", "1MiB", "--out", result)
		require.NoError(t, err)
		assert.Contains(t, out, "strategy block")

		m, err := codec.ReadFile[float64, int64](result)
		require.NoError(t, err)
		assert.Equal(t, csr.RowMajor, m.Order())
		assert.Equal(t, [][]float64{{7, 2}, {0, 3}, {4, 8}}, m.Dense())
	})

	t.Run("memory limit", func(t *testing.T) {
		_, left, right := fixtures(t)

		_, err := execute(t, "multiply", "--left", left, "--right", right, "--top-n", "1", "--memory-limit", "8B")
		assert.ErrorIs(t, err, sparsedot.ErrResourceExhausted)
	})

	t.Run("operand types differ", func(t *testing.T) {
		dir, left, right := fixtures(t)
		narrow := filepath.Join(dir, "a32.sdm")
		_, err := execute(t, "convert", "--in", left, "--out", narrow, "--values", "float32", "--indices", "int32")
		require.NoError(t, err)

		_, err = execute(t, "multiply", "--left", narrow, "--right", right, "--top-n", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "operand types differ")
	})

	t.Run("invalid flags", func(t *testing.T) {
		_, left, right := fixtures(t)
		base := []string{"multiply", "--left", left, "--right", right, "--top-n", "1"}

		for _, extra := range [][]string{
			{"--strategy", "fastest"},
			{"--partition", "random"},
			{"--memory-limit", "lots"},
			{"--compression", "gzip"},
			{"--log-level", "loud"},
			{"--log-format", "xml"},
		} {
			_, err := execute(t, append(base, extra...)...)
			assert.Error(t, err, "%v", extra)
		}

		_, err := execute(t, "multiply", "--left", left, "--right", right, "--top-n", "0")
		assert.ErrorIs(t, err, sparsedot.ErrInvalidTopN)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, left, right := fixtures(t)
		_, err := execute(t, "multiply", "--left", right, "--right", left, "--top-n", "1")
		var dm *sparsedot.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})
}

func TestConvert(t *testing.T) {
	t.Run("binary to matrix market", func(t *testing.T) {
		dir, left, _ := fixtures(t)
		mtx := filepath.Join(dir, "a_int.mtx")

		out, err := execute(t, "--log-level", "debug", "convert", "--in", left, "--out", mtx, "--values", "int32", "--order", "col")
		require.NoError(t, err)
		assert.Contains(t, out, "int32/int64")
		assert.Contains(t, out, "col-major")

		data, err := os.ReadFile(mtx)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "%%MatrixMarket matrix coordinate integer general\n3 3 4\n"))
	})

	t.Run("bad index type", func(t *testing.T) {
		dir, left, _ := fixtures(t)
		_, err := execute(t, "convert", "--in", left, "--out", filepath.Join(dir, "x.sdm"), "--indices", "float32")
		assert.Error(t, err)
	})

	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, "convert", "--in", filepath.Join(dir, "none.sdm"), "--out", filepath.Join(dir, "x.sdm"))
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "x.sdm"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestInspect(t *testing.T) {
	_, left, right := fixtures(t)

	out, err := execute(t, "inspect", right)
	require.NoError(t, err)
	assert.Contains(t, out, "compression: lz4")
	assert.Contains(t, out, "float64/int64, col-major")
	assert.Contains(t, out, "per column:  min 2, max 2, mean 2.00, 0 empty")
	assert.Contains(t, out, "referenced:  3 of 3 rows")

	out, err = execute(t, "inspect", "--json", left)
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "sparsedot v1", r.Format)
	assert.Equal(t, "row", r.Order)
	assert.Equal(t, 4, r.NNZ)
	assert.Equal(t, vectorStats{Count: 3, Min: 1, Max: 2, Mean: 4.0 / 3}, r.Vectors)
	assert.Equal(t, uint64(3), r.InnerUsed)
	assert.Positive(t, r.FileBytes)

	_, err = execute(t, "inspect")
	assert.Error(t, err)
}

func TestLocate(t *testing.T) {
	a := &app{minioEndpoint: "localhost:9000"}
	ctx := context.Background()

	store, name, err := a.locate(ctx, filepath.Join("data", "m.sdm"))
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)
	assert.Equal(t, "m.sdm", name)

	for _, location := range []string{"s3://bucket", "minio:///key", "ftp://host/m.sdm"} {
		_, _, err := a.locate(ctx, location)
		assert.Error(t, err, location)
	}

	store, name, err = a.locate(ctx, "minio://bucket/dir/m.sdm")
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, "dir/m.sdm", name)
}
