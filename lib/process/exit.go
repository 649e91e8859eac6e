// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that carry their own exit code.
// Commands that already printed their outcome (a build with failed
// assets, for example) return one so no extra "error:" line appears.
type ExitCoder interface {
	ExitCode() int
}

// Code returns the exit code for err: 0 for nil, the code of the first
// ExitCoder in err's chain, 1 otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes "error: err" to w unless err carries its own exit code.
func Report(w io.Writer, err error) {
	var coder ExitCoder
	if err == nil || errors.As(err, &coder) {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// Fatal reports err to stderr and exits with [Code]. Use it in main()
// for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(Code(err))
}
