// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"fmt"
	"strings"
)

// Format is a codec identity. Extensions map onto formats many-to-one:
// "jpg" and "jpeg" are both [FormatJPEG].
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatSVG  Format = "svg"
)

var extensionFormats = map[string]Format{
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"png":  FormatPNG,
	"webp": FormatWebP,
	"avif": FormatAVIF,
	"svg":  FormatSVG,
}

// ParseFormat maps a file extension (with or without the leading dot,
// any case) to its format.
func ParseFormat(extension string) (Format, error) {
	format, ok := extensionFormats[normalizeExtension(extension)]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", extension)
	}
	return format, nil
}

// IsImageExtension reports whether extension names a supported image
// format, raster or vector.
func IsImageExtension(extension string) bool {
	_, ok := extensionFormats[normalizeExtension(extension)]
	return ok
}

// IsRaster reports whether f is a pixel format handled by the native
// and pool backends.
func (f Format) IsRaster() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatWebP, FormatAVIF:
		return true
	default:
		return false
	}
}

// IsText reports whether payloads of this format are text, which
// decides whether compressing them at rest is worthwhile.
func (f Format) IsText() bool { return f == FormatSVG }

func (f Format) String() string { return string(f) }

func normalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(extension, "."))
}
