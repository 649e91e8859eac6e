// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives image assets from discovery to their final
// place in a build's output.
//
// An [Orchestrator] is built once per build from [Options] and a
// [Backends] provider (normally a *backend.Registry). It runs in one
// of two modes.
//
// Inline mode runs alongside the host build. [Orchestrator.Resolve]
// intercepts an image import and immediately returns a JavaScript
// module exporting the asset's final URL; the filename is derived
// from the source path and target format only (see lib/assetid), so
// it can be promised before any encoding. [Orchestrator.Generate]
// later encodes every resolved asset and inserts it into the artifact
// set under the promised name. When resolve and generate run in
// different processes, a [Ledger] carries the resolved records
// between them.
//
// Post mode runs after the host build has written its output.
// [Orchestrator.RunPost] collects image assets from the artifact set
// and from the passthrough directory, re-encodes each one, places the
// results, and then rewrites references in scripts, stylesheets, and
// the entry document.
//
// Per asset the pipeline walks:
//
//	Discovered → CacheCheck → CacheHit → Written → [OriginRemoved] → Done
//	                        ↘ Encode   ↗
//
// Excluded images and passthrough files that are not images end in
// Skipped. An I/O or encode failure ends in Failed: in post mode the
// asset is left exactly as the host produced it, in inline mode the
// unconverted source is placed under the promised name. Either way
// the build continues. Nothing is retried; re-running the pipeline is
// the recovery path and the cache makes it cheap.
//
// Every asset of a phase is processed concurrently. Reference
// rewriting starts only after all of them have finished, and a pooled
// backend is closed exactly once, after that barrier.
package pipeline
