// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// DefaultExcludes keeps dependency and VCS trees out of the pipeline.
var DefaultExcludes = []string{
	"node_modules/**",
	"**/node_modules/**",
	".git/**",
	"**/.git/**",
}

// Excludes is a compiled set of glob patterns over slash-separated
// paths relative to the project root. "*" stops at "/", "**" does not.
type Excludes struct {
	patterns []string
	globs    []glob.Glob
}

// CompileExcludes compiles patterns. An invalid pattern is a
// *backend.ConfigurationError.
func CompileExcludes(patterns []string) (Excludes, error) {
	excludes := Excludes{patterns: patterns}
	for index, pattern := range patterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return Excludes{}, &backend.ConfigurationError{
				Field:  fmt.Sprintf("exclude[%d]", index),
				Reason: err.Error(),
			}
		}
		excludes.globs = append(excludes.globs, compiled)
	}
	return excludes, nil
}

// Match reports whether path is excluded.
func (e Excludes) Match(path string) bool {
	for _, compiled := range e.globs {
		if compiled.Match(path) {
			return true
		}
	}
	return false
}
