// Package mmio reads and writes sparse matrices in the Matrix Market
// coordinate exchange format.
package mmio

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/sparsedot/csr"
)

// ErrFormat is wrapped by every parse failure.
var ErrFormat = errors.New("mmio: malformed matrix market file")

const banner = "%%matrixmarket"

// Field is the value type declared in the banner.
type Field string

const (
	FieldReal    Field = "real"
	FieldInteger Field = "integer"
	FieldPattern Field = "pattern"
)

// Symmetry is the storage scheme declared in the banner.
type Symmetry string

const (
	General       Symmetry = "general"
	Symmetric     Symmetry = "symmetric"
	SkewSymmetric Symmetry = "skew-symmetric"
)

// Header is the parsed banner and size line.
type Header struct {
	Field    Field
	Symmetry Symmetry
	Rows     int
	Cols     int
	Entries  int
}

type triplet struct {
	row, col int64
	value    float64
}

type scanner struct {
	s    *bufio.Scanner
	line int
}

func (sc *scanner) next() (string, bool) {
	for sc.s.Scan() {
		sc.line++
		text := strings.TrimSpace(sc.s.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		return text, true
	}
	return "", false
}

func (sc *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, sc.line, fmt.Sprintf(format, args...))
}

func parseBanner(line string) (Header, error) {
	f := strings.Fields(strings.ToLower(line))
	if len(f) != 5 || f[0] != banner || f[1] != "matrix" {
		return Header{}, fmt.Errorf("%w: bad banner %q", ErrFormat, line)
	}
	if f[2] != "coordinate" {
		return Header{}, fmt.Errorf("%w: unsupported format %q", ErrFormat, f[2])
	}

	h := Header{Field: Field(f[3]), Symmetry: Symmetry(f[4])}
	switch h.Field {
	case FieldReal, FieldInteger, FieldPattern:
	default:
		return Header{}, fmt.Errorf("%w: unsupported field %q", ErrFormat, f[3])
	}
	switch h.Symmetry {
	case General, Symmetric, SkewSymmetric:
	default:
		return Header{}, fmt.Errorf("%w: unsupported symmetry %q", ErrFormat, f[4])
	}
	return h, nil
}

// Read parses a coordinate Matrix Market file into a RowMajor matrix.
// Symmetric storage is expanded, entries are sorted by row and column, and
// duplicate coordinates are summed.
func Read(r io.Reader) (*csr.Matrix[float64, int64], Header, error) {
	raw := bufio.NewScanner(r)
	raw.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc := &scanner{s: raw}

	if !raw.Scan() {
		if err := raw.Err(); err != nil {
			return nil, Header{}, err
		}
		return nil, Header{}, fmt.Errorf("%w: empty input", ErrFormat)
	}
	sc.line++
	h, err := parseBanner(raw.Text())
	if err != nil {
		return nil, Header{}, err
	}

	size, ok := sc.next()
	if !ok {
		return nil, Header{}, sc.errorf("missing size line")
	}
	dims := strings.Fields(size)
	if len(dims) != 3 {
		return nil, Header{}, sc.errorf("size line needs rows cols entries")
	}
	var vals [3]int
	for i, d := range dims {
		v, err := strconv.Atoi(d)
		if err != nil || v < 0 {
			return nil, Header{}, sc.errorf("bad size %q", d)
		}
		vals[i] = v
	}
	h.Rows, h.Cols, h.Entries = vals[0], vals[1], vals[2]
	if h.Symmetry != General && h.Rows != h.Cols {
		return nil, Header{}, sc.errorf("%s matrix must be square", h.Symmetry)
	}

	want := 3
	if h.Field == FieldPattern {
		want = 2
	}

	capHint := h.Entries
	if h.Symmetry != General {
		capHint *= 2
	}
	entries := make([]triplet, 0, min(capHint, 1<<24))
	for n := 0; n < h.Entries; n++ {
		line, ok := sc.next()
		if !ok {
			if err := raw.Err(); err != nil {
				return nil, Header{}, err
			}
			return nil, Header{}, sc.errorf("expected %d entries, got %d", h.Entries, n)
		}
		f := strings.Fields(line)
		if len(f) != want {
			return nil, Header{}, sc.errorf("expected %d fields, got %d", want, len(f))
		}
		i, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil || i < 1 || i > int64(h.Rows) {
			return nil, Header{}, sc.errorf("row %q out of range", f[0])
		}
		j, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil || j < 1 || j > int64(h.Cols) {
			return nil, Header{}, sc.errorf("column %q out of range", f[1])
		}

		v := 1.0
		switch h.Field {
		case FieldReal:
			if v, err = strconv.ParseFloat(f[2], 64); err != nil {
				return nil, Header{}, sc.errorf("bad value %q", f[2])
			}
		case FieldInteger:
			iv, err := strconv.ParseInt(f[2], 10, 64)
			if err != nil {
				return nil, Header{}, sc.errorf("bad integer %q", f[2])
			}
			v = float64(iv)
		}

		entries = append(entries, triplet{row: i - 1, col: j - 1, value: v})
		if i != j {
			switch h.Symmetry {
			case Symmetric:
				entries = append(entries, triplet{row: j - 1, col: i - 1, value: v})
			case SkewSymmetric:
				entries = append(entries, triplet{row: j - 1, col: i - 1, value: -v})
			}
		}
	}
	if err := raw.Err(); err != nil {
		return nil, Header{}, err
	}

	m, err := assemble(h.Rows, h.Cols, entries)
	if err != nil {
		return nil, Header{}, err
	}
	return m, h, nil
}

func assemble(rows, cols int, entries []triplet) (*csr.Matrix[float64, int64], error) {
	slices.SortFunc(entries, func(a, b triplet) int {
		if c := cmp.Compare(a.row, b.row); c != 0 {
			return c
		}
		return cmp.Compare(a.col, b.col)
	})

	offsets := make([]int64, rows+1)
	indices := make([]int64, 0, len(entries))
	values := make([]float64, 0, len(entries))
	for k, e := range entries {
		last := len(indices) - 1
		if k > 0 && entries[k-1].row == e.row && entries[k-1].col == e.col {
			values[last] += e.value
			continue
		}
		indices = append(indices, e.col)
		values = append(values, e.value)
		offsets[e.row+1]++
	}
	for i := range rows {
		offsets[i+1] += offsets[i]
	}
	return csr.New(rows, cols, offsets, indices, values)
}

// Write emits m as a general coordinate file. Float matrices are written as
// real and integer matrices as integer. Entries follow storage order.
func Write[T csr.Number, I csr.Index](w io.Writer, m *csr.Matrix[T, I]) error {
	var zero T
	kind := reflect.TypeOf(zero).Kind()
	field, bits := FieldReal, 64
	switch kind {
	case reflect.Float32:
		bits = 32
	case reflect.Int32, reflect.Int64:
		field = FieldInteger
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%%%%MatrixMarket matrix coordinate %s %s\n%d %d %d\n",
		field, General, m.Rows(), m.Cols(), m.NNZ()); err != nil {
		return err
	}

	var buf []byte
	for o := range m.Outer() {
		idx, vals := m.Vector(o)
		for k, x := range idx {
			row, col := int64(o), int64(x)
			if m.Order() == csr.ColMajor {
				row, col = col, row
			}
			buf = strconv.AppendInt(buf[:0], row+1, 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, col+1, 10)
			buf = append(buf, ' ')
			if field == FieldInteger {
				buf = strconv.AppendInt(buf, int64(vals[k]), 10)
			} else {
				buf = strconv.AppendFloat(buf, float64(vals[k]), 'g', -1, bits)
			}
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
