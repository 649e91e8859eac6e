// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/pipeline"
	"github.com/bureau-foundation/imagepipe/lib/report"
	"github.com/bureau-foundation/imagepipe/lib/version"
)

// Env holds the process-level dependencies of the command tree. Zero
// fields get production defaults; tests substitute buffers and stub
// backends.
type Env struct {
	// Stdout receives command results (modules, identifiers,
	// listings). Defaults to os.Stdout.
	Stdout io.Writer

	// Printer receives per-asset lines. Defaults to a printer on
	// stderr.
	Printer *report.Printer

	// Logger overrides the run logger built from --verbose.
	Logger *slog.Logger

	// Backends overrides the probed backend registry.
	Backends pipeline.Backends
}

func (e Env) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e Env) printer() *report.Printer {
	if e.Printer == nil {
		return report.Stderr()
	}
	return e.Printer
}

// Root returns the imagepipe command tree.
func Root(env Env) *cli.Command {
	return &cli.Command{
		Name:    "imagepipe",
		Summary: "Build-time image optimization",
		Description: `imagepipe re-encodes the images of a web build, converts formats,
caches results across builds, and rewrites references to renamed files.`,
		Subcommands: []*cli.Command{
			postCommand(env),
			inlineCommand(env),
			probeCommand(env),
			cacheCommand(env),
			idCommand(env),
			versionCommand(env),
		},
	}
}

func versionCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			fmt.Fprintln(env.stdout(), "imagepipe "+version.Full())
			return nil
		},
	}
}
