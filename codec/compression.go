package codec

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of a file.
type Compression uint8

const (
	// CompressionNone stores blocks as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", name)
	}
}

// blockSize is the uncompressed size of a full block.
const blockSize = 256 * 1024

const blockHeaderSize = 8

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// appendBlock compresses data and appends it with its block header to dst.
// Blocks that do not shrink below 90% are stored uncompressed.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	}

	stored := len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	if stored {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, data...), nil
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(compressed)))
	return append(dst, compressed...), nil
}

// readBlock decodes the block at the start of src into dst and returns the
// remaining input.
func readBlock(dst, src []byte, c Compression) ([]byte, []byte, error) {
	if len(src) < blockHeaderSize {
		return nil, nil, fmt.Errorf("%w: block too small for header", ErrCorruptSection)
	}
	uncompressedSize := int(binary.LittleEndian.Uint32(src[0:]))
	compressedSize := int(binary.LittleEndian.Uint32(src[4:]))
	src = src[blockHeaderSize:]

	if compressedSize == 0 {
		if len(src) < uncompressedSize {
			return nil, nil, fmt.Errorf("%w: block extends beyond data", ErrCorruptSection)
		}
		return append(dst, src[:uncompressedSize]...), src[uncompressedSize:], nil
	}
	if len(src) < compressedSize {
		return nil, nil, fmt.Errorf("%w: compressed block extends beyond data", ErrCorruptSection)
	}
	payload, rest := src[:compressedSize], src[compressedSize:]

	start := len(dst)
	switch c {
	case CompressionLZ4:
		dst = append(dst, make([]byte, uncompressedSize)...)
		n, err := lz4.UncompressBlock(payload, dst[start:])
		if err != nil {
			return nil, nil, err
		}
		if n != uncompressedSize {
			return nil, nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptSection)
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		var err error
		dst, err = dec.DecodeAll(payload, dst)
		if err != nil {
			return nil, nil, err
		}
		if len(dst)-start != uncompressedSize {
			return nil, nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptSection)
		}
	default:
		return nil, nil, fmt.Errorf("%w: compressed block in uncompressed file", ErrCorruptSection)
	}
	return dst, rest, nil
}
