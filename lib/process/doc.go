// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helper: turning the
// error from run() into a stderr line and an exit code. It is used
// before the structured logger exists, so it writes to stderr directly.
package process
