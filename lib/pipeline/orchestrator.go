// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/bureau-foundation/imagepipe/lib/assetid"
	"github.com/bureau-foundation/imagepipe/lib/backend"
	"github.com/bureau-foundation/imagepipe/lib/clock"
	"github.com/bureau-foundation/imagepipe/lib/imagecache"
)

// Backends hands out encoders for one build. *backend.Registry
// satisfies it.
type Backends interface {
	// Acquire returns the raster encoder for kind. The caller closes
	// it once, after its join barrier.
	Acquire(kind backend.Kind) (backend.Encoder, error)

	// Vector returns the SVG encoder.
	Vector() backend.Encoder
}

// Reporter observes assets as they reach a terminal state. Calls
// arrive concurrently.
type Reporter interface {
	Report(record AssetRecord)
}

// Options configures an [Orchestrator]. Paths are slash-separated and
// relative to the root of FS.
type Options struct {
	// FS is rooted at the project root. Assets are read from it
	// concurrently, so it must be safe for concurrent use.
	FS billy.Filesystem

	Rules   Rules
	Profile backend.Profile

	// Backend is the requested raster backend.
	Backend backend.Kind

	// Cache may be nil to disable caching.
	Cache *imagecache.Cache

	// Namespace separates cache keys of different tool versions and
	// environments.
	Namespace string

	// OutputDir is the host build's output directory.
	OutputDir string

	// PassthroughDir holds files the host copies to OutputDir
	// verbatim. Empty disables passthrough handling.
	PassthroughDir string

	// AssetsDir is where inline-mode assets are placed, relative to
	// OutputDir.
	AssetsDir string

	// Base is the public URL prefix of OutputDir.
	Base string

	// Entry is the entry document, relative to OutputDir.
	Entry string

	Excludes Excludes

	// Logger defaults to a no-op logger.
	Logger *slog.Logger

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Reporter may be nil.
	Reporter Reporter
}

// Orchestrator runs the pipeline for one build.
type Orchestrator struct {
	options  Options
	backends Backends
	logger   *slog.Logger
	clock    clock.Clock

	// resolved holds inline-mode records keyed by source path.
	mu       sync.Mutex
	resolved map[string]*AssetRecord
}

// New validates options and returns an orchestrator. The requested
// backend is checked here, so an unknown backend fails before any
// encoding starts.
func New(options Options, backends Backends) (*Orchestrator, error) {
	if options.FS == nil {
		return nil, fmt.Errorf("pipeline: FS is required")
	}
	if backends == nil {
		return nil, fmt.Errorf("pipeline: backends are required")
	}
	if _, err := backend.ParseKind(string(options.Backend)); err != nil {
		return nil, err
	}
	if options.Profile == nil {
		options.Profile = backend.DefaultProfile()
	}
	if options.AssetsDir == "" {
		options.AssetsDir = "assets"
	}
	if options.Base == "" {
		options.Base = "/"
	}
	if options.Entry == "" {
		options.Entry = "index.html"
	}
	options.OutputDir = cleanRelative(options.OutputDir)
	if options.PassthroughDir != "" {
		options.PassthroughDir = cleanRelative(options.PassthroughDir)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := options.Clock
	if now == nil {
		now = clock.Real()
	}

	return &Orchestrator{
		options:  options,
		backends: backends,
		logger:   logger,
		clock:    now,
		resolved: make(map[string]*AssetRecord),
	}, nil
}

func cleanRelative(name string) string {
	cleaned := assetid.Normalize(name)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// newRecord classifies a source. ok is false when sourcePath is not an
// image this pipeline handles.
func (o *Orchestrator) newRecord(sourcePath string, origin Origin, artifactName string) (*AssetRecord, bool) {
	sourcePath = assetid.Normalize(sourcePath)
	extension := assetid.Extension(sourcePath)
	if !backend.IsImageExtension(extension) {
		return nil, false
	}
	sourceFormat, _ := backend.ParseFormat(extension)
	targetExt, targetFormat, converted, err := o.options.Rules.Target(extension)
	if err != nil {
		return nil, false
	}
	return &AssetRecord{
		SourcePath:   sourcePath,
		Origin:       origin,
		ArtifactName: artifactName,
		SourceFormat: sourceFormat,
		TargetFormat: targetFormat,
		TargetExt:    targetExt,
		Converted:    converted,
		Identifier:   assetid.Identify(sourcePath, targetExt),
		State:        StateDiscovered,
	}, true
}

// skip records a candidate the pipeline leaves alone.
func (o *Orchestrator) skip(sourcePath string, origin Origin, artifactName string) *AssetRecord {
	record := &AssetRecord{
		SourcePath:   assetid.Normalize(sourcePath),
		Origin:       origin,
		ArtifactName: artifactName,
	}
	o.transition(record, StateSkipped)
	return record
}

// convertedName is the filename a converted asset is placed under, in
// the same directory as name.
func convertedName(name string, record *AssetRecord) string {
	output := assetid.OutputName(record.SourcePath, record.TargetExt)
	directory := path.Dir(name)
	if directory == "." {
		return output
	}
	return directory + "/" + output
}

func (o *Orchestrator) transition(record *AssetRecord, state State) {
	record.State = state
	o.logger.Debug("asset state", "source", record.SourcePath, "state", state.String())
}

func (o *Orchestrator) fail(record *AssetRecord, err error) {
	record.Err = err
	o.transition(record, StateFailed)
	o.logger.Warn("asset left unconverted", "source", record.SourcePath, "error", err)
}

func (o *Orchestrator) report(record *AssetRecord) {
	if o.options.Reporter != nil {
		o.options.Reporter.Report(*record)
	}
}

// encoders holds the encoders for one phase.
type encoders struct {
	raster backend.Encoder
	vector backend.Encoder
}

// acquire obtains the encoders the records need. The raster encoder is
// only acquired when a raster asset is present.
func (o *Orchestrator) acquire(records []*AssetRecord) (*encoders, error) {
	set := &encoders{}
	for _, record := range records {
		if record.TargetFormat.IsRaster() && set.raster == nil {
			raster, err := o.backends.Acquire(o.options.Backend)
			if err != nil {
				return nil, err
			}
			set.raster = raster
		}
		if record.TargetFormat == backend.FormatSVG && set.vector == nil {
			set.vector = o.backends.Vector()
		}
	}
	return set, nil
}

// close releases the encoders. Call once, after the join barrier.
func (o *Orchestrator) close(set *encoders) {
	for _, encoder := range []backend.Encoder{set.raster, set.vector} {
		if encoder == nil {
			continue
		}
		if err := encoder.Close(); err != nil {
			o.logger.Warn("closing backend", "backend", encoder.Kind(), "error", err)
		}
	}
}

// transcode moves a record from Discovered to Written: cache lookup,
// encode on a miss, cache fill. It returns the output bytes.
func (o *Orchestrator) transcode(ctx context.Context, set *encoders, record *AssetRecord, source []byte) ([]byte, error) {
	record.OriginSizeAtEncode = int64(len(source))

	o.transition(record, StateCacheCheck)
	settings := o.options.Profile.For(record.TargetFormat)
	key := imagecache.Key(o.options.Namespace, record.SourcePath, record.TargetFormat, settings)
	fingerprint := imagecache.FingerprintOf(source, o.options.Cache.Fingerprinting())

	if cached, ok := o.options.Cache.Get(key, fingerprint); ok {
		record.CacheHit = true
		o.transition(record, StateCacheHit)
		return cached, nil
	}

	o.transition(record, StateEncode)
	encoder := set.raster
	if record.TargetFormat == backend.FormatSVG {
		encoder = set.vector
	}
	if encoder == nil {
		return nil, fmt.Errorf("no encoder acquired for %s", record.TargetFormat)
	}
	encoded, err := encoder.Encode(ctx, source, record.TargetFormat, settings)
	if err != nil {
		return nil, err
	}
	o.options.Cache.Set(key, encoded, fingerprint, record.TargetFormat)
	return encoded, nil
}

// readSource reads name from the project filesystem.
func (o *Orchestrator) readSource(name string) ([]byte, error) {
	data, err := util.ReadFile(o.options.FS, name)
	if err != nil {
		return nil, &IOError{Op: "reading", Path: name, Err: err}
	}
	return data, nil
}

// outputPath joins name onto the output directory.
func (o *Orchestrator) outputPath(name string) string {
	if o.options.OutputDir == "." {
		return name
	}
	return o.options.OutputDir + "/" + name
}
