// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for imagepipe packages.
//
// Fixtures: [PNG] and [JPEG] build small, deterministic gradient
// images; [NoisyPNG] builds one that compresses poorly so lossy
// re-encoding visibly shrinks it; [SVG] is a hand-written document
// with comments and redundant whitespace for the vector optimizer.
//
// Filesystems: [MemFS] returns an in-memory billy.Filesystem guarded
// by one mutex so concurrent pipeline goroutines can share it, and
// [WriteFile], [ReadFile], and [Exists] wrap it with t.Fatalf error
// handling so tests can lay out a project tree in a few lines.
//
// Backends: [CountingEncoder] wraps any encoder (or a canned function)
// and counts Encode calls, which is how tests assert that a warm cache
// performs zero encodes.
//
// [RequireReceive] encapsulates the select-with-timeout pattern for
// channel assertions.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
