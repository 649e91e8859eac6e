// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/backend"
)

type probeParams struct {
	Backend string `flag:"backend" desc:"backend to resolve" default:"native"`
}

func probeCommand(env Env) *cli.Command {
	var params probeParams

	return &cli.Command{
		Name:    "probe",
		Summary: "Print the backends available on this host",
		Usage:   "imagepipe probe [--backend name]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("probe", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			requested, err := backend.ParseKind(params.Backend)
			if err != nil {
				return err
			}

			capabilities := backend.Probe()
			resolved, warning, err := backend.NewRegistry(capabilities, nil).Resolve(requested)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(env.stdout(), 2, 0, 3, ' ', 0)
			for _, kind := range []backend.Kind{backend.KindNative, backend.KindPool, backend.KindVector} {
				state := "unavailable"
				if capabilities.Available(kind) {
					state = "available"
				}
				if kind == backend.KindPool && capabilities.Pool {
					state = fmt.Sprintf("available (%d workers)", capabilities.Cores)
				}
				fmt.Fprintf(writer, "%s\t%s\n", kind, state)
			}
			fmt.Fprintf(writer, "cores\t%d\n", capabilities.Cores)
			fmt.Fprintf(writer, "%s resolves to\t%s\n", params.Backend, resolved)
			writer.Flush()
			if warning != "" {
				fmt.Fprintln(env.stdout(), "note: "+warning)
			}
			return nil
		},
	}
}
