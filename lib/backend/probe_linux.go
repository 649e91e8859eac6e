// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package backend

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// hostCores returns the size of this process's CPU affinity mask, which
// is smaller than the machine's core count under taskset or a cgroup
// cpuset. Falls back to runtime.NumCPU when the mask is unreadable.
func hostCores() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return max(runtime.NumCPU(), 1)
	}
	return max(set.Count(), 1)
}
