// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"testing"
)

// SVG is a small document with comments, metadata, and whitespace that
// the vector optimizer removes.
const SVG = `<?xml version="1.0" encoding="UTF-8"?>
<!-- generated by a drawing tool -->
<svg xmlns="http://www.w3.org/2000/svg"   width="100"   height="100"   viewBox="0 0 100 100">
    <metadata>   tool export metadata   </metadata>
    <g>
        <rect x="10.000000" y="10.000000" width="80.000000" height="80.000000" fill="#ff0000"/>
    </g>
</svg>
`

// gradient returns a deterministic RGBA image.
func gradient(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// PNG returns a PNG-encoded gradient of the given size.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, gradient(width, height)); err != nil {
		t.Fatalf("encoding png fixture: %v", err)
	}
	return buffer.Bytes()
}

// NoisyPNG returns a PNG of seeded random noise. Noise defeats PNG's
// deflate stage, so the file is large and any lossy re-encode at low
// quality is much smaller.
func NoisyPNG(t testing.TB, width, height int, seed uint64) []byte {
	t.Helper()
	random := rand.New(rand.NewPCG(seed, seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for index := range img.Pix {
		img.Pix[index] = uint8(random.IntN(256))
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		t.Fatalf("encoding noisy png fixture: %v", err)
	}
	return buffer.Bytes()
}

// JPEG returns a JPEG-encoded gradient at quality.
func JPEG(t testing.TB, width, height, quality int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, gradient(width, height), &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encoding jpeg fixture: %v", err)
	}
	return buffer.Bytes()
}

// NoisyJPEG returns a JPEG of seeded random noise at quality. At high
// quality the file is large relative to its dimensions.
func NoisyJPEG(t testing.TB, width, height, quality int, seed uint64) []byte {
	t.Helper()
	random := rand.New(rand.NewPCG(seed, seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for index := range img.Pix {
		img.Pix[index] = uint8(random.IntN(256))
	}
	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encoding noisy jpeg fixture: %v", err)
	}
	return buffer.Bytes()
}
