// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"time"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// State is a position in an asset's lifecycle.
type State int

const (
	StateDiscovered State = iota
	StateCacheCheck
	StateCacheHit
	StateEncode
	StateWritten
	StateOriginRemoved
	StateDone
	StateSkipped
	StateFailed
)

var stateNames = [...]string{
	StateDiscovered:    "discovered",
	StateCacheCheck:    "cache-check",
	StateCacheHit:      "cache-hit",
	StateEncode:        "encode",
	StateWritten:       "written",
	StateOriginRemoved: "origin-removed",
	StateDone:          "done",
	StateSkipped:       "skipped",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

// Origin says where an asset's source bytes came from.
type Origin string

const (
	// OriginModule is an import resolved in inline mode.
	OriginModule Origin = "module"

	// OriginBuild is an asset the host build wrote to the output
	// directory.
	OriginBuild Origin = "build"

	// OriginPassthrough is a file in the passthrough directory, which
	// the host copies to the output verbatim.
	OriginPassthrough Origin = "passthrough"
)

// AssetRecord tracks one asset through one build. The identity fields
// are fixed at discovery; the outcome fields are filled in as the
// asset moves through its states.
type AssetRecord struct {
	// SourcePath is the slash-separated path of the source, relative
	// to the project root. It is the identity input for the
	// identifier and the cache key.
	SourcePath string
	Origin     Origin

	// ArtifactName is the source's filename in the artifact set:
	// output-relative for build and passthrough assets, empty for
	// module assets.
	ArtifactName string

	SourceFormat backend.Format
	TargetFormat backend.Format
	TargetExt    string
	Converted    bool

	// Identifier is assetid.Identify(SourcePath, TargetExt).
	Identifier string

	// OutputPath is the artifact name the result is placed under.
	OutputPath string

	State State
	Err   error

	OriginSizeAtEncode int64
	EncodedSize        int
	CacheHit           bool

	// Kept is set when a same-format encode did not shrink the asset
	// and the original bytes were left in place.
	Kept bool

	Elapsed time.Duration
}

// Written reports whether the asset produced output.
func (r *AssetRecord) Written() bool {
	return r.State == StateDone
}
