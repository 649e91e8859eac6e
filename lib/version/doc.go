// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the imagepipe
// binary and the cache namespace derived from it.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/imagepipe/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without ldflags the VCS stamps embedded by the Go toolchain are used.
package version
