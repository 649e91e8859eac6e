// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/bundle"
	"github.com/bureau-foundation/imagepipe/lib/pipeline"
)

// ExitNotHandled is the status of "inline resolve" for a module id the
// pipeline does not handle. The host then loads the module normally.
const ExitNotHandled = 2

func inlineCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:    "inline",
		Summary: "Resolve image imports and generate the promised assets",
		Description: `Inline mode runs inside the host's module graph. "resolve" is called
once per image import and prints the JavaScript module that replaces
it; "generate" is called once at the end of the build and writes
every promised asset to the output directory.

Resolved imports are recorded in a ledger next to the cache, so the
two steps can run in separate processes.`,
		Subcommands: []*cli.Command{
			inlineResolveCommand(env),
			inlineGenerateCommand(env),
		},
	}
}

func inlineResolveCommand(env Env) *cli.Command {
	var params configParams

	return &cli.Command{
		Name:    "resolve",
		Summary: "Print the module for one image import",
		Usage:   "imagepipe inline resolve [flags] <module-id>",
		Description: `Print the JavaScript module that replaces an image import and record
the asset for "inline generate". Query strings and fragments are
ignored. Exits with status 2 and prints nothing when the id is not a
handled image.`,
		Examples: []cli.Example{
			{Command: "imagepipe inline resolve src/images/hero.jpg?url"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("resolve", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one module id, got %d", len(args))
			}
			s, err := params.open(env, "inline/resolve")
			if err != nil {
				return err
			}
			orchestrator, err := s.orchestrator(nil)
			if err != nil {
				return err
			}

			module, ok := orchestrator.Resolve(pipeline.SourcePath(s.root, args[0]))
			if !ok {
				s.logger.Debug("module not handled", "module", args[0])
				return &cli.ExitError{Code: ExitNotHandled}
			}
			ledger, err := s.ledger()
			if err != nil {
				return err
			}
			if err := ledger.Record(orchestrator.Resolved()...); err != nil {
				return err
			}
			fmt.Fprintln(env.stdout(), module)
			return nil
		},
	}
}

type generateParams struct {
	configParams
	Strict     bool `flag:"strict" desc:"exit with status 1 when any asset fails"`
	KeepLedger bool `flag:"keep-ledger" desc:"keep the resolved imports after generating"`
}

func inlineGenerateCommand(env Env) *cli.Command {
	var params generateParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Encode every resolved import into the output directory",
		Usage:   "imagepipe inline generate [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("generate", &params) },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runGenerate(ctx, env, &params)
		},
	}
}

func runGenerate(ctx context.Context, env Env, params *generateParams) error {
	s, err := params.open(env, "inline/generate")
	if err != nil {
		return err
	}
	ledger, err := s.ledger()
	if err != nil {
		return err
	}
	entries, err := ledger.Entries()
	if err != nil {
		return err
	}

	printer := env.printer()
	orchestrator, err := s.orchestrator(printer)
	if err != nil {
		return err
	}
	orchestrator.Adopt(entries)

	start := time.Now()
	set := bundle.NewSet()
	summary, err := orchestrator.Generate(ctx, set)
	if err != nil {
		return err
	}
	outputFS, err := s.outputFS()
	if err != nil {
		return err
	}
	if err := set.Flush(outputFS); err != nil {
		return fmt.Errorf("writing output directory: %w", err)
	}
	if !params.KeepLedger {
		if err := ledger.Clear(); err != nil {
			return err
		}
	}

	printer.Summary(summary, time.Since(start))
	if params.Strict && summary.Failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
