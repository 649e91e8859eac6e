// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import "context"

// Native is the stateless raster backend. Each Encode decodes and
// encodes on the calling goroutine; there is nothing to set up or tear
// down, so any number of calls may run concurrently.
type Native struct{}

// Kind returns [KindNative].
func (Native) Kind() Kind { return KindNative }

// Encode decodes source and re-encodes it as target.
func (Native) Encode(ctx context.Context, source []byte, target Format, settings Settings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !target.IsRaster() {
		return nil, encodeError(KindNative, target, "unsupported target format %q", target)
	}
	img, err := decodeRaster(KindNative, target, source)
	if err != nil {
		return nil, err
	}
	return encodeRaster(KindNative, img, target, settings)
}

// Close is a no-op.
func (Native) Close() error { return nil }
