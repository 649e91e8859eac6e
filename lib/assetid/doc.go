// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assetid derives stable output names for image assets.
//
// An identifier is a pure function of a source path and a target
// format: the first eight hex digits of the SHA-256 of the path,
// followed by the target extension. It never depends on encoded bytes.
// Inline mode embeds the output name into generated source text before
// any encoding has happened, so the name must be computable at
// discovery time and must match whatever the encode phase produces
// later.
//
//   - [Identify] returns the bare identifier ("1a2b3c4d.webp")
//   - [OutputName] returns the emitted filename ("hero-1a2b3c4d.webp")
//   - [Stem] and [Extension] split a path into the pieces the reference
//     rewriter matches on
//
// This package has no dependencies on other imagepipe packages.
package assetid
