// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads imagepipe configuration.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the IMAGEPIPE_CONFIG environment variable (via
// [Load]). There is no search for files: without either, commands use
// [Default]. YAML is the native format; files ending in .json or
// .jsonc are read as JSON with comments, which lets a project share
// the options object it passes to the JavaScript plugin.
//
// The file may contain development and production sections that
// override base values when [Config].Environment matches.
//
// ${HOME}, ${IMAGEPIPE_ROOT} and ${VAR:-default} patterns are expanded
// in path fields after loading.
//
// Key exports:
//
//   - [Config] -- the options struct, with [Config.Validate]
//   - [Default] -- defaults every file is merged onto
//   - [Load], [LoadFile] and [Resolve] -- the entry points for loading
package config
