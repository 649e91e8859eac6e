// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle models a build's output artifact set.
//
// A [Set] maps output filenames (slash-separated, relative to the
// output directory) to [Artifact] values. Chunks carry script text in
// Code and are mutated in place; assets carry bytes in Source and are
// replaced wholesale. The pipeline only touches artifacts it is handed
// and records every change, so [Set.Flush] can write back exactly what
// changed.
//
// A Go host builds a Set directly with [Set.Put]. The imagepipe CLI,
// which runs after the host build tool has written its output, uses
// [Load] to read an output directory into a Set and [Set.Flush] to
// persist the result.
package bundle
