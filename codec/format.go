package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/sparsedot/csr"
)

const (
	// MagicNumber identifies sparsedot matrix files (ASCII: "SDTN").
	MagicNumber = 0x4E544453
	// Version is the current file format version.
	Version = 1

	// HeaderSize is the encoded size of Header.
	HeaderSize = 48
)

var (
	ErrInvalidMagic    = errors.New("codec: invalid magic number")
	ErrInvalidVersion  = errors.New("codec: unsupported version")
	ErrInvalidHeader   = errors.New("codec: invalid header")
	ErrChecksum        = errors.New("codec: checksum mismatch")
	ErrKindMismatch    = errors.New("codec: element kind mismatch")
	ErrCorruptSection  = errors.New("codec: corrupt section")
	ErrUnsupportedKind = errors.New("codec: unsupported element type")
)

// Kind identifies the width and representation of stored elements.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFloat32
	KindFloat64
	KindInt32
	KindInt64
)

func (k Kind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind maps "float32", "float64", "int32" or "int64" to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{KindFloat32, KindFloat64, KindInt32, KindInt64} {
		if k.String() == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

// Size returns the encoded size of one element.
func (k Kind) Size() int {
	switch k {
	case KindFloat32, KindInt32:
		return 4
	case KindFloat64, KindInt64:
		return 8
	default:
		return 0
	}
}

// KindOf returns the kind of T. Named types report their underlying kind.
func KindOf[T csr.Number]() Kind {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	default:
		return KindInvalid
	}
}

// Header is the fixed-size header at the start of every matrix file.
type Header struct {
	Magic       uint32
	Version     uint32
	ValueKind   Kind
	IndexKind   Kind
	Order       csr.Order
	Compression Compression
	Rows        uint64
	Cols        uint64
	NNZ         uint64
	Checksum    uint32 // CRC32-C of everything after the header
}

// MarshalBinary encodes the header into HeaderSize bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = byte(h.ValueKind)
	buf[9] = byte(h.IndexKind)
	buf[10] = byte(h.Order)
	buf[11] = byte(h.Compression)
	// 12..16 reserved
	binary.LittleEndian.PutUint64(buf[16:], h.Rows)
	binary.LittleEndian.PutUint64(buf[24:], h.Cols)
	binary.LittleEndian.PutUint64(buf[32:], h.NNZ)
	binary.LittleEndian.PutUint32(buf[40:], h.Checksum)
	// 44..48 reserved
	return buf, nil
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(buf))
	}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.ValueKind = Kind(buf[8])
	h.IndexKind = Kind(buf[9])
	h.Order = csr.Order(buf[10])
	h.Compression = Compression(buf[11])
	h.Rows = binary.LittleEndian.Uint64(buf[16:])
	h.Cols = binary.LittleEndian.Uint64(buf[24:])
	h.NNZ = binary.LittleEndian.Uint64(buf[32:])
	h.Checksum = binary.LittleEndian.Uint32(buf[40:])

	if h.Magic != MagicNumber {
		return ErrInvalidMagic
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	if h.ValueKind.Size() == 0 {
		return fmt.Errorf("%w: value kind %s", ErrInvalidHeader, h.ValueKind)
	}
	if h.IndexKind != KindInt32 && h.IndexKind != KindInt64 {
		return fmt.Errorf("%w: index kind %s", ErrInvalidHeader, h.IndexKind)
	}
	if h.Order != csr.RowMajor && h.Order != csr.ColMajor {
		return fmt.Errorf("%w: order %d", ErrInvalidHeader, h.Order)
	}
	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: compression %d", ErrInvalidHeader, h.Compression)
	}
	return nil
}

// Outer is the number of compressed vectors described by the header.
func (h Header) Outer() uint64 {
	if h.Order == csr.ColMajor {
		return h.Cols
	}
	return h.Rows
}
