// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/term"
)

// LoggerOptions configures [NewLogger].
type LoggerOptions struct {
	// Output defaults to os.Stderr.
	Output io.Writer

	// Terminal selects the text handler. Ignored when Output is nil:
	// then it is detected from os.Stderr.
	Terminal bool

	// Verbose lowers the level to debug.
	Verbose bool
}

// NewLogger creates the structured logger for one command run. On a
// terminal it uses slog.TextHandler for human-readable output; piped
// or redirected (CI, build tools) it uses slog.JSONHandler. Every
// record carries a run_id, so interleaved logs from concurrent
// builds can be separated.
func NewLogger(options LoggerOptions) *slog.Logger {
	output := options.Output
	terminal := options.Terminal
	if output == nil {
		output = os.Stderr
		terminal = term.IsTerminal(int(os.Stderr.Fd()))
	}

	level := slog.LevelInfo
	if options.Verbose {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(output, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(output, handlerOptions)
	}
	return slog.New(handler).With("run_id", uuid.NewString())
}
