// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the imagepipe command tree.
//
// Every command that touches a project loads configuration the same
// way: --config, then IMAGEPIPE_CONFIG, then defaults, with a few
// flags (--root, --backend, --no-cache) overriding the file. See
// [configParams].
package commands
