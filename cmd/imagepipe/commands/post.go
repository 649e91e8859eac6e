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
	"github.com/bureau-foundation/imagepipe/lib/config"
)

type postParams struct {
	configParams
	Strict bool `flag:"strict" desc:"exit with status 1 when any asset fails"`
}

func postCommand(env Env) *cli.Command {
	var params postParams

	return &cli.Command{
		Name:    "post",
		Summary: "Optimize a finished build output directory",
		Description: `Re-encode every image in the output directory and the passthrough
directory, convert formats per the conversion rules, and rewrite
references in scripts, stylesheets and HTML to the new filenames.

A failed asset is reported and left as it was; the command still
succeeds unless --strict is given.`,
		Usage: "imagepipe post [flags]",
		Examples: []cli.Example{
			{Description: "Optimize dist/ using imagepipe.yaml", Command: "imagepipe post --config imagepipe.yaml"},
			{Description: "One-off run with the worker pool and no cache", Command: "imagepipe post --backend pool --no-cache"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("post", &params) },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runPost(ctx, env, &params)
		},
	}
}

func runPost(ctx context.Context, env Env, params *postParams) error {
	s, err := params.open(env, "post")
	if err != nil {
		return err
	}
	if s.config.Mode == config.ModeInline {
		s.logger.Warn("config selects inline mode; running post mode as requested")
	}

	printer := env.printer()
	orchestrator, err := s.orchestrator(printer)
	if err != nil {
		return err
	}
	outputFS, err := s.outputFS()
	if err != nil {
		return err
	}
	set, err := bundle.Load(outputFS)
	if err != nil {
		return err
	}

	start := time.Now()
	summary, runErr := orchestrator.RunPost(ctx, set)
	// Whatever finished before a cancellation is still written, so the
	// output directory is never left referencing a removed file.
	if err := set.Flush(outputFS); err != nil {
		return fmt.Errorf("writing output directory: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	printer.Summary(summary, time.Since(start))
	if params.Strict && summary.Failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
