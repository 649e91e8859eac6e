// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package backend

import "runtime"

func hostCores() int {
	return max(runtime.NumCPU(), 1)
}
