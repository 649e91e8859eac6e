// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned for work submitted to (or still queued in)
// a [Pool] after Close.
var ErrPoolClosed = errors.New("backend: pool is closed")

// ConfigurationError reports invalid pipeline configuration: an
// unknown backend, an unknown format, or an invalid conversion rule.
// It is fatal and is always raised before any encoding starts.
type ConfigurationError struct {
	// Field names the configuration key at fault (e.g. "backend",
	// "conversion[2].to").
	Field string

	// Reason describes what is wrong with the value.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// EncodeError reports that a backend rejected an input or target
// format. It is scoped to one asset: the pipeline logs it, leaves the
// asset unconverted, and continues with the others.
type EncodeError struct {
	Backend Kind
	Target  Format
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s backend: encoding to %s: %v", e.Backend, e.Target, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func encodeError(kind Kind, target Format, format string, args ...any) *EncodeError {
	return &EncodeError{Backend: kind, Target: target, Err: fmt.Errorf(format, args...)}
}
