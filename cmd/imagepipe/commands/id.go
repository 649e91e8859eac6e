// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/assetid"
	"github.com/bureau-foundation/imagepipe/lib/backend"
)

type idParams struct {
	Name bool `flag:"name" desc:"print the full output filename instead of the identifier"`
}

func idCommand(env Env) *cli.Command {
	var params idParams

	return &cli.Command{
		Name:    "id",
		Summary: "Print the identifier for a source path and target format",
		Usage:   "imagepipe id [--name] <path> <format>",
		Examples: []cli.Example{
			{Command: "imagepipe id hero.jpg webp"},
			{Description: "Filename a converted asset is placed under", Command: "imagepipe id --name src/images/hero.jpg avif"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("id", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <path> <format>, got %d arguments", len(args))
			}
			if _, err := backend.ParseFormat(args[1]); err != nil {
				return err
			}
			if params.Name {
				fmt.Fprintln(env.stdout(), assetid.OutputName(args[0], args[1]))
			} else {
				fmt.Fprintln(env.stdout(), assetid.Identify(args[0], args[1]))
			}
			return nil
		},
	}
}
