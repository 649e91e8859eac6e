// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
)

// decodeRaster decodes source with whichever registered decoder claims
// it. Importing the webp and avif packages registers their decoders
// alongside the standard library's JPEG and PNG decoders. target is
// only used to label the error.
func decodeRaster(kind Kind, target Format, source []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, &EncodeError{Backend: kind, Target: target, Err: fmt.Errorf("decoding source: %w", err)}
	}
	return img, nil
}

// encodeRaster encodes img as target using settings.
func encodeRaster(kind Kind, img image.Image, target Format, settings Settings) ([]byte, error) {
	var buffer bytes.Buffer
	var err error

	switch target {
	case FormatJPEG:
		err = jpeg.Encode(&buffer, img, &jpeg.Options{Quality: clamp(settings.Quality, 1, 100, 75)})

	case FormatPNG:
		encoder := png.Encoder{CompressionLevel: pngCompressionLevel(settings.Effort)}
		err = encoder.Encode(&buffer, img)

	case FormatWebP:
		err = webp.Encode(&buffer, img, webp.Options{
			Quality:  clamp(settings.Quality, 1, 100, 75),
			Lossless: settings.Lossless,
			Method:   clamp(settings.Effort, 0, 6, 4),
		})

	case FormatAVIF:
		quality := clamp(settings.Quality, 1, 100, 60)
		err = avif.Encode(&buffer, img, avif.Options{
			Quality:      quality,
			QualityAlpha: quality,
			Speed:        10 - clamp(settings.Effort, 0, 9, 4),
		})

	default:
		return nil, encodeError(kind, target, "%s is not a raster format", target)
	}

	if err != nil {
		return nil, &EncodeError{Backend: kind, Target: target, Err: err}
	}
	return buffer.Bytes(), nil
}

func pngCompressionLevel(effort int) png.CompressionLevel {
	switch {
	case effort <= 0:
		return png.DefaultCompression
	case effort < 3:
		return png.BestSpeed
	case effort < 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// clamp bounds value to [low, high], substituting fallback for zero.
func clamp(value, low, high, fallback int) int {
	if value == 0 {
		return fallback
	}
	return max(low, min(value, high))
}
