// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend provides the interchangeable image encoders used by
// the pipeline and the registry that selects between them.
//
// Three backends exist:
//
//   - native: stateless raster encoder. Every call decodes and encodes
//     on the calling goroutine, so callers may run any number of
//     encodes concurrently with no shared setup or teardown.
//   - pool: raster encoder backed by a fixed set of worker goroutines,
//     one per usable host core. Ingestion (decode) and encoding are two
//     explicit steps, both executed on a worker. One [Pool] serves a
//     whole build and must be closed exactly once after every
//     outstanding encode has completed.
//   - vector: SVG optimizer. Operates on UTF-8 text, runs the minifier
//     repeatedly until the output stops shrinking, and has no quality
//     parameter.
//
// Raster codecs: JPEG and PNG use the standard library encoders, WebP
// and AVIF use the gen2brain WebAssembly builds of libwebp and libavif.
// All registered decoders are available to both raster backends, so a
// source in any supported format can be converted to any other raster
// format.
//
// Backend availability is decided once by [Probe], which returns an
// immutable [Capabilities] value. [Registry.Acquire] turns a requested
// [Kind] into a ready [Encoder], falling back from pool to native (with
// a logged warning) when the host cannot run a pool, and failing with a
// [ConfigurationError] for unknown kinds.
package backend
