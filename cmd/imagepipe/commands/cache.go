// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/imagecache"
)

func cacheCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect or clear the encode cache",
		Subcommands: []*cli.Command{
			cacheListCommand(env),
			cacheClearCommand(env),
		},
	}
}

func cacheListCommand(env Env) *cli.Command {
	var params configParams

	return &cli.Command{
		Name:    "list",
		Summary: "Print the cache manifest",
		Usage:   "imagepipe cache list [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			s, err := params.open(env, "cache/list")
			if err != nil {
				return err
			}
			if s.cache == nil {
				fmt.Fprintln(env.stdout(), "cache disabled")
				return nil
			}

			entries := s.cache.Entries()
			writer := tabwriter.NewWriter(env.stdout(), 2, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "KEY\tORIGIN\tENCODED\tSTORED AS")
			var origin, encoded uint64
			for _, entry := range entries {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					entry.Key[:16],
					humanize.IBytes(uint64(entry.Size)),
					humanize.IBytes(uint64(entry.Encoded)),
					storedAs(entry.Compression))
				origin += uint64(entry.Size)
				encoded += uint64(entry.Encoded)
			}
			writer.Flush()
			fmt.Fprintf(env.stdout(), "%d %s, %s of originals cached as %s\n",
				len(entries), pluralEntries(len(entries)), humanize.IBytes(origin), humanize.IBytes(encoded))
			return nil
		},
	}
}

func cacheClearCommand(env Env) *cli.Command {
	var params configParams

	return &cli.Command{
		Name:    "clear",
		Summary: "Delete the cache directory",
		Usage:   "imagepipe cache clear [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("clear", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			// Clearing works even when the config disables the cache.
			params.NoCache = true
			s, err := params.open(env, "cache/clear")
			if err != nil {
				return err
			}
			if err := util.RemoveAll(s.fs, s.cacheDir); err != nil {
				return fmt.Errorf("removing %s: %w", s.cacheDir, err)
			}
			s.logger.Info("cache cleared", "directory", s.cacheDir)
			return nil
		},
	}
}

func storedAs(compression imagecache.Compression) string {
	if compression == "" {
		return "raw"
	}
	return string(compression)
}

func pluralEntries(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
