// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagecache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// Compression selects how blobs are stored at rest.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"

	// CompressionAuto stores SVG blobs with zstd and raster blobs
	// uncompressed. Raster formats are already entropy coded.
	CompressionAuto Compression = "auto"
)

// ParseCompression validates a configured compression name. Empty
// means [CompressionAuto].
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionAuto:
		return CompressionAuto, nil
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("unknown cache compression %q (want none, lz4, zstd or auto)", name)
	}
}

// forFormat resolves auto for a payload of the given format.
func (c Compression) forFormat(format backend.Format) Compression {
	if c != CompressionAuto {
		return c
	}
	if format.IsText() {
		return CompressionZstd
	}
	return CompressionNone
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("imagecache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("imagecache: zstd decoder initialization failed: " + err.Error())
	}
}

// compressBlob returns the stored form of data and the tag to record
// in the manifest. Data that does not shrink is stored raw with an
// empty tag.
func compressBlob(data []byte, compression Compression) ([]byte, Compression, error) {
	switch compression {
	case CompressionNone, "":
		return data, "", nil

	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, "", fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return data, "", nil
		}
		return destination[:written], CompressionLZ4, nil

	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return data, "", nil
		}
		return compressed, CompressionZstd, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob compression %q", compression)
	}
}

// decompressBlob reverses compressBlob. size is the encoded length
// recorded in the manifest and bounds the output.
func decompressBlob(stored []byte, tag Compression, size int) ([]byte, error) {
	switch tag {
	case "", CompressionNone:
		return stored, nil

	case CompressionLZ4:
		if size <= 0 {
			return nil, fmt.Errorf("lz4 blob without a recorded size")
		}
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(stored, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil

	case CompressionZstd:
		decompressed, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, max(size, 0)))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if size > 0 && len(decompressed) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(decompressed), size)
		}
		return decompressed, nil

	default:
		return nil, fmt.Errorf("unsupported blob compression %q", tag)
	}
}
