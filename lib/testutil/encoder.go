// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"sync"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// CountingEncoder wraps a backend.Encoder and records every call. With
// a nil inner encoder it returns a fixed transformation of the source
// ([Stamp]) so tests can run without real codecs.
type CountingEncoder struct {
	inner backend.Encoder
	kind  backend.Kind

	mu      sync.Mutex
	calls   int
	closes  int
	targets []backend.Format

	// Fail, when set, is consulted before each encode. A non-nil
	// return fails that call.
	Fail func(source []byte, target backend.Format) error
}

// NewCountingEncoder returns a counting wrapper around inner. Pass nil
// for a stub that reports kind and stamps its output.
func NewCountingEncoder(kind backend.Kind, inner backend.Encoder) *CountingEncoder {
	return &CountingEncoder{inner: inner, kind: kind}
}

// Kind returns the configured kind.
func (c *CountingEncoder) Kind() backend.Kind { return c.kind }

// Encode counts the call and delegates.
func (c *CountingEncoder) Encode(ctx context.Context, source []byte, target backend.Format, settings backend.Settings) ([]byte, error) {
	c.mu.Lock()
	c.calls++
	c.targets = append(c.targets, target)
	fail := c.Fail
	c.mu.Unlock()

	if fail != nil {
		if err := fail(source, target); err != nil {
			return nil, err
		}
	}
	if c.inner != nil {
		return c.inner.Encode(ctx, source, target, settings)
	}
	return Stamp(source, target), nil
}

// Close counts the call and delegates.
func (c *CountingEncoder) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Calls returns the number of Encode calls so far.
func (c *CountingEncoder) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Closes returns the number of Close calls so far.
func (c *CountingEncoder) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Targets returns the target format of every Encode call, in call
// order.
func (c *CountingEncoder) Targets() []backend.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]backend.Format(nil), c.targets...)
}

// Stamp is the stub encoding: a short header naming the target
// followed by the first half of source. The result is deterministic
// and strictly smaller than any source longer than the header.
func Stamp(source []byte, target backend.Format) []byte {
	header := "stub:" + string(target) + ":"
	output := make([]byte, 0, len(header)+len(source)/2)
	output = append(output, header...)
	return append(output, source[:len(source)/2]...)
}

// Backends is a fixed backend provider for pipeline tests. Raster is
// returned from every Acquire, Vector from Vector.
type Backends struct {
	Raster *CountingEncoder
	Svg    *CountingEncoder

	mu       sync.Mutex
	acquired []backend.Kind
}

// NewBackends returns stub raster and vector encoders.
func NewBackends() *Backends {
	return &Backends{
		Raster: NewCountingEncoder(backend.KindNative, nil),
		Svg:    NewCountingEncoder(backend.KindVector, nil),
	}
}

// Acquire records the requested kind and returns the raster encoder.
func (b *Backends) Acquire(kind backend.Kind) (backend.Encoder, error) {
	if _, err := backend.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.acquired = append(b.acquired, kind)
	b.mu.Unlock()
	return b.Raster, nil
}

// Vector returns the vector encoder.
func (b *Backends) Vector() backend.Encoder { return b.Svg }

// Acquired returns the kinds passed to Acquire.
func (b *Backends) Acquired() []backend.Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.Kind(nil), b.acquired...)
}
