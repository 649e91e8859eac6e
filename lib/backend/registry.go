// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Kind names a backend.
type Kind string

const (
	KindNative Kind = "native"
	KindPool   Kind = "pool"
	KindVector Kind = "vector"
)

// kindAliases accepts the names of the codecs each backend stands in
// for, so configurations written for the JavaScript plugin keep
// working.
var kindAliases = map[string]Kind{
	"native":  KindNative,
	"sharp":   KindNative,
	"pool":    KindPool,
	"squoosh": KindPool,
}

// ParseKind maps a configured backend name to a raster [Kind]. The
// vector backend is not selectable: it always handles SVG sources.
func ParseKind(name string) (Kind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &ConfigurationError{
			Field:  "backend",
			Reason: fmt.Sprintf("unknown backend %q (want native or pool)", name),
		}
	}
	return kind, nil
}

// Encoder is a backend acquired for one build.
type Encoder interface {
	// Kind identifies the backend.
	Kind() Kind

	// Encode re-encodes source as target. Fails with *EncodeError on
	// malformed input or an unsupported target.
	Encode(ctx context.Context, source []byte, target Format, settings Settings) ([]byte, error)

	// Close releases build-scoped resources. Call it once, after every
	// Encode for the build has returned.
	Close() error
}

// Registry hands out encoders according to the host's capabilities.
type Registry struct {
	capabilities Capabilities
	logger       *slog.Logger
}

// NewRegistry creates a registry for capabilities (normally the result
// of [Probe]). A nil logger discards fallback warnings.
func NewRegistry(capabilities Capabilities, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{capabilities: capabilities, logger: logger}
}

// Capabilities returns the probed capabilities.
func (r *Registry) Capabilities() Capabilities {
	return r.capabilities
}

// Resolve decides which raster backend serves a request for kind.
// When the pool is requested but unavailable the result is native and
// warning explains the fallback. Unknown kinds fail with
// *ConfigurationError.
func (r *Registry) Resolve(kind Kind) (resolved Kind, warning string, err error) {
	switch kind {
	case KindNative:
		return KindNative, "", nil
	case KindPool:
		if r.capabilities.Pool {
			return KindPool, "", nil
		}
		return KindNative, fmt.Sprintf("pool backend needs more than one core (host has %d); using native backend",
			r.capabilities.Cores), nil
	default:
		return "", "", &ConfigurationError{
			Field:  "backend",
			Reason: fmt.Sprintf("unknown raster backend %q", kind),
		}
	}
}

// Acquire returns a raster encoder for one build. A pool encoder owns
// worker goroutines: the caller must Close it exactly once after its
// join barrier.
func (r *Registry) Acquire(kind Kind) (Encoder, error) {
	resolved, warning, err := r.Resolve(kind)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		r.logger.Warn("backend fallback", "requested", kind, "using", resolved, "reason", warning)
	}

	switch resolved {
	case KindPool:
		return NewPool(PoolConfig{Size: r.capabilities.Cores, Logger: r.logger}), nil
	default:
		return Native{}, nil
	}
}

// Vector returns the SVG optimizer.
func (r *Registry) Vector() Encoder {
	return NewVector()
}
