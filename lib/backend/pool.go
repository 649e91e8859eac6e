// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"image"
	"log/slog"
	"sync"
)

// PoolConfig holds the parameters for starting a [Pool].
type PoolConfig struct {
	// Size is the number of worker goroutines. If zero or negative,
	// defaults to the probed core count (at least 1).
	Size int

	// Logger receives pool lifecycle messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Pool is the bounded raster backend. A fixed set of workers executes
// every decode and encode; callers above that bound block until a
// worker is free. One Pool serves one build.
//
// Close must be called exactly once, after every Encode for the build
// has returned. Closing early drops queued and in-flight work (those
// callers receive [ErrPoolClosed]); never closing leaks the workers.
type Pool struct {
	size   int
	logger *slog.Logger

	jobs chan func()
	done chan struct{}

	closeOnce sync.Once
	workers   sync.WaitGroup
}

// NewPool starts a pool of workers.
func NewPool(config PoolConfig) *Pool {
	size := config.Size
	if size <= 0 {
		size = hostCores()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool := &Pool{
		size:   size,
		logger: logger,
		jobs:   make(chan func()),
		done:   make(chan struct{}),
	}
	pool.workers.Add(size)
	for range size {
		go pool.work()
	}

	logger.Debug("encoder pool started", "workers", size)
	return pool
}

func (p *Pool) work() {
	defer p.workers.Done()
	for {
		select {
		case <-p.done:
			return
		case job := <-p.jobs:
			job()
		}
	}
}

// submit runs fn on a worker and waits for it to finish.
func (p *Pool) submit(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}

	select {
	case p.jobs <- job:
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Image is a source decoded by a pool worker, ready to be encoded into
// one or more target formats.
type Image struct {
	pool    *Pool
	decoded image.Image
}

// Ingest decodes source on a worker.
func (p *Pool) Ingest(ctx context.Context, source []byte) (*Image, error) {
	var decoded image.Image
	var decodeErr error
	if err := p.submit(ctx, func() {
		decoded, decodeErr = decodeRaster(KindPool, "", source)
	}); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &Image{pool: p, decoded: decoded}, nil
}

// Encode encodes the ingested image as target on a worker.
func (i *Image) Encode(ctx context.Context, target Format, settings Settings) ([]byte, error) {
	if !target.IsRaster() {
		return nil, encodeError(KindPool, target, "unsupported target format %q", target)
	}

	var encoded []byte
	var encodeErr error
	if err := i.pool.submit(ctx, func() {
		encoded, encodeErr = encodeRaster(KindPool, i.decoded, target, settings)
	}); err != nil {
		return nil, err
	}
	return encoded, encodeErr
}

// Kind returns [KindPool].
func (p *Pool) Kind() Kind { return KindPool }

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Encode ingests source and encodes it as target: the two pool steps
// in sequence, so a Pool satisfies [Encoder].
func (p *Pool) Encode(ctx context.Context, source []byte, target Format, settings Settings) ([]byte, error) {
	img, err := p.Ingest(ctx, source)
	if err != nil {
		return nil, err
	}
	return img.Encode(ctx, target, settings)
}

// Close stops the workers and waits for them to exit. The first call
// returns nil; later calls return [ErrPoolClosed].
func (p *Pool) Close() error {
	closed := false
	p.closeOnce.Do(func() {
		close(p.done)
		closed = true
	})
	if !closed {
		return ErrPoolClosed
	}
	p.workers.Wait()
	p.logger.Debug("encoder pool closed", "workers", p.size)
	return nil
}
