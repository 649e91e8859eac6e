// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"unicode/utf8"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

// maxVectorPasses bounds the multipass loop. Minification converges in
// two or three passes on real-world files.
const maxVectorPasses = 8

// Vector is the SVG optimizer backend. It is lossless with respect to
// rendering and takes no quality parameter.
type Vector struct {
	minifier *minify.M
}

// NewVector returns a ready vector backend. Inline <style> blocks are
// minified with the CSS minifier.
func NewVector() *Vector {
	minifier := minify.New()
	minifier.Add(svgMediaType, &svg.Minifier{})
	minifier.AddFunc("text/css", css.Minify)
	return &Vector{minifier: minifier}
}

// Kind returns [KindVector].
func (*Vector) Kind() Kind { return KindVector }

// Encode optimizes SVG source. Passes repeat until one fails to shrink
// the document; the smallest output seen is returned, so the result is
// never larger than the input.
func (v *Vector) Encode(ctx context.Context, source []byte, target Format, _ Settings) ([]byte, error) {
	if target != FormatSVG {
		return nil, encodeError(KindVector, target, "vector backend only produces svg")
	}
	if !utf8.Valid(source) {
		return nil, encodeError(KindVector, target, "source is not valid UTF-8")
	}

	best := source
	for range maxVectorPasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := v.minifier.Bytes(svgMediaType, best)
		if err != nil {
			return nil, &EncodeError{Backend: KindVector, Target: target, Err: err}
		}
		if len(next) >= len(best) {
			break
		}
		best = next
	}
	return best, nil
}

// Close is a no-op.
func (*Vector) Close() error { return nil }
