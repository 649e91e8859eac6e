// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

// Capabilities records which backends are usable on this host. It is
// computed once by [Probe] and passed by value; nothing mutates it
// afterward.
type Capabilities struct {
	Native bool
	Pool   bool
	Vector bool

	// Cores is the number of cores available to this process. It
	// sizes the pool.
	Cores int
}

// Probe inspects the host. The native and vector backends are pure Go
// and always usable. The pool needs more than one usable core: with a
// single core it only adds queueing on top of the native backend.
func Probe() Capabilities {
	cores := hostCores()
	return Capabilities{
		Native: true,
		Pool:   cores > 1,
		Vector: true,
		Cores:  cores,
	}
}

// Available reports whether kind can run on this host.
func (c Capabilities) Available(kind Kind) bool {
	switch kind {
	case KindNative:
		return c.Native
	case KindPool:
		return c.Pool
	case KindVector:
		return c.Vector
	default:
		return false
	}
}
