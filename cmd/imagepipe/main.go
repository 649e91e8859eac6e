// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command imagepipe optimizes the images of a web build. See
// "imagepipe --help".
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/commands"
	"github.com/bureau-foundation/imagepipe/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(commands.Env{}).Execute(ctx, os.Args[1:])
}
