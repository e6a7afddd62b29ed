package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/conv"
	"github.com/hupe1980/sparsedot/internal/hash"
	"github.com/hupe1980/sparsedot/internal/mmap"
)

// Write encodes m to w and returns the number of bytes written.
func Write[T csr.Number, I csr.Index](w io.Writer, m *csr.Matrix[T, I], c Compression) (int64, error) {
	if c > CompressionZSTD {
		return 0, fmt.Errorf("%w: compression %d", ErrInvalidHeader, c)
	}
	h := Header{
		Magic:       MagicNumber,
		Version:     Version,
		ValueKind:   KindOf[T](),
		IndexKind:   KindOf[I](),
		Order:       m.Order(),
		Compression: c,
		Rows:        uint64(m.Rows()),
		Cols:        uint64(m.Cols()),
		NNZ:         uint64(m.NNZ()),
	}
	if h.ValueKind == KindInvalid || h.IndexKind == KindInvalid {
		return 0, ErrUnsupportedKind
	}

	payload, err := appendSection(nil, m.Offsets(), c)
	if err != nil {
		return 0, err
	}
	if payload, err = appendSection(payload, m.Indices(), c); err != nil {
		return 0, err
	}
	if payload, err = appendSection(payload, m.Values(), c); err != nil {
		return 0, err
	}
	h.Checksum = hash.CRC32C(payload)

	hb, err := h.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(hb)
	if err != nil {
		return int64(n), err
	}
	p, err := w.Write(payload)
	return int64(n + p), err
}

// appendSection encodes elems little-endian, splits the bytes into blocks
// and appends them after a length prefix.
func appendSection[E csr.Number](dst []byte, elems []E, c Compression) ([]byte, error) {
	raw, err := binary.Append(nil, binary.LittleEndian, elems)
	if err != nil {
		return nil, err
	}

	lenPos := len(dst)
	dst = binary.LittleEndian.AppendUint64(dst, 0)
	for len(raw) > 0 {
		n := min(blockSize, len(raw))
		if dst, err = appendBlock(dst, raw[:n], c); err != nil {
			return nil, err
		}
		raw = raw[n:]
	}
	binary.LittleEndian.PutUint64(dst[lenPos:], uint64(len(dst)-lenPos-8))
	return dst, nil
}

// ReadHeader reads and validates the header at the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Read decodes a matrix from r. T and I must match the kinds in the header.
func Read[T csr.Number, I csr.Index](r io.Reader) (*csr.Matrix[T, I], error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return ReadBody[T, I](r, h)
}

// ReadBody decodes the sections following a header obtained from ReadHeader.
func ReadBody[T csr.Number, I csr.Index](r io.Reader, h Header) (*csr.Matrix[T, I], error) {
	if err := checkKinds[T, I](h); err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode[T, I](h, payload)
}

// ReadFile memory-maps the file at path and decodes it. The returned matrix
// owns its arrays; the mapping is released before ReadFile returns.
func ReadFile[T csr.Number, I csr.Index](path string) (*csr.Matrix[T, I], error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	_ = f.Advise(mmap.AccessSequential)

	return Unmarshal[T, I](f.Data)
}

// Unmarshal decodes a complete file image. The returned matrix does not
// alias data.
func Unmarshal[T csr.Number, I csr.Index](data []byte) (*csr.Matrix[T, I], error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(data))
	}
	var h Header
	if err := h.UnmarshalBinary(data[:HeaderSize]); err != nil {
		return nil, err
	}
	if err := checkKinds[T, I](h); err != nil {
		return nil, err
	}
	return decode[T, I](h, data[HeaderSize:])
}

func checkKinds[T csr.Number, I csr.Index](h Header) error {
	if h.ValueKind != KindOf[T]() || h.IndexKind != KindOf[I]() {
		return fmt.Errorf("%w: file holds %s/%s, want %s/%s",
			ErrKindMismatch, h.ValueKind, h.IndexKind, KindOf[T](), KindOf[I]())
	}
	return nil
}

// decode verifies the checksum and decodes the three sections. The
// returned arrays never alias payload.
func decode[T csr.Number, I csr.Index](h Header, payload []byte) (*csr.Matrix[T, I], error) {
	if sum := hash.CRC32C(payload); sum != h.Checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, sum, h.Checksum)
	}

	rows, err := conv.Uint64ToInt(h.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := conv.Uint64ToInt(h.Cols)
	if err != nil {
		return nil, err
	}
	nnz, err := conv.Uint64ToInt(h.NNZ)
	if err != nil {
		return nil, err
	}
	outer, err := conv.Uint64ToInt(h.Outer())
	if err != nil {
		return nil, err
	}

	offsets, payload, err := readSection[I](payload, outer+1, h.Compression)
	if err != nil {
		return nil, fmt.Errorf("offsets: %w", err)
	}
	indices, payload, err := readSection[I](payload, nnz, h.Compression)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	values, payload, err := readSection[T](payload, nnz, h.Compression)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	if len(payload) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptSection, len(payload))
	}

	var m *csr.Matrix[T, I]
	if h.Order == csr.ColMajor {
		m, err = csr.NewColMajor(rows, cols, offsets, indices, values)
	} else {
		m, err = csr.New(rows, cols, offsets, indices, values)
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readSection[E csr.Number](src []byte, count int, c Compression) ([]E, []byte, error) {
	if len(src) < 8 {
		return nil, nil, fmt.Errorf("%w: missing section length", ErrCorruptSection)
	}
	n := binary.LittleEndian.Uint64(src)
	src = src[8:]
	if n > uint64(len(src)) {
		return nil, nil, fmt.Errorf("%w: section extends beyond data", ErrCorruptSection)
	}
	body, rest := src[:n], src[n:]

	size := KindOf[E]().Size()
	if count < 0 || count > math.MaxInt/size {
		return nil, nil, fmt.Errorf("%w: element count %d", ErrCorruptSection, count)
	}
	raw := make([]byte, 0, min(count*size, 1<<20))
	var err error
	for len(body) > 0 {
		if raw, body, err = readBlock(raw, body, c); err != nil {
			return nil, nil, err
		}
	}
	if len(raw) != count*size {
		return nil, nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptSection, len(raw), count*size)
	}

	out := make([]E, count)
	if _, err := binary.Decode(raw, binary.LittleEndian, out); err != nil {
		return nil, nil, err
	}
	return out, rest, nil
}
