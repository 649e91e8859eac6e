// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"encoding/json"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/imagepipe/lib/assetid"
	"github.com/bureau-foundation/imagepipe/lib/bundle"
	"github.com/bureau-foundation/imagepipe/lib/clock"
)

// ParseModuleID strips the query and fragment a bundler appends to a
// module id ("hero.jpg?url", "icon.svg#frag").
func ParseModuleID(moduleID string) string {
	if index := strings.IndexAny(moduleID, "?#"); index >= 0 {
		moduleID = moduleID[:index]
	}
	return moduleID
}

// SourcePath converts a module path into the project-relative form
// used for identity. Absolute paths under root are made relative;
// anything else is only normalized.
func SourcePath(root, modulePath string) string {
	if root != "" && filepath.IsAbs(modulePath) {
		if relative, err := filepath.Rel(root, modulePath); err == nil && !strings.HasPrefix(relative, "..") {
			modulePath = relative
		}
	}
	return assetid.Normalize(modulePath)
}

// Resolve handles one module id in inline mode. If the id names a
// handled image, the asset is recorded for [Orchestrator.Generate]
// and Resolve returns the JavaScript module that replaces the import:
//
//	export default "/assets/hero-bc3db3c5.webp"
//
// ok is false for ids that are not images or are excluded; the host
// should load those normally. moduleID must already be relative to the
// project root (see [SourcePath]). Resolving the same source twice
// returns the same module and records it once.
func (o *Orchestrator) Resolve(moduleID string) (module string, ok bool) {
	sourcePath := assetid.Normalize(ParseModuleID(moduleID))
	if o.options.Excludes.Match(sourcePath) {
		return "", false
	}

	o.mu.Lock()
	record, exists := o.resolved[sourcePath]
	if !exists {
		record, ok = o.newRecord(sourcePath, OriginModule, "")
		if !ok {
			o.mu.Unlock()
			return "", false
		}
		record.OutputPath = o.inlineOutputPath(record)
		o.resolved[sourcePath] = record
		o.logger.Debug("inline asset resolved", "source", sourcePath, "output", record.OutputPath)
	}
	output := record.OutputPath
	o.mu.Unlock()

	return moduleFor(o.publicURL(output)), true
}

// inlineOutputPath is the promised artifact name, relative to the
// output directory.
func (o *Orchestrator) inlineOutputPath(record *AssetRecord) string {
	return path.Join(o.options.AssetsDir, assetid.OutputName(record.SourcePath, record.TargetExt))
}

// publicURL prefixes an output-relative name with the base URL.
func (o *Orchestrator) publicURL(name string) string {
	return strings.TrimSuffix(o.options.Base, "/") + "/" + name
}

func moduleFor(url string) string {
	// json.Marshal of a string cannot fail. Its output is a valid
	// JavaScript string literal.
	quoted, _ := json.Marshal(url)
	return "export default " + string(quoted)
}

// Resolved returns copies of the inline records, sorted by source
// path.
func (o *Orchestrator) Resolved() []AssetRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	records := make([]AssetRecord, 0, len(o.resolved))
	for _, record := range o.resolved {
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SourcePath < records[j].SourcePath })
	return records
}

// Generate encodes every resolved asset and inserts each result into
// set under the filename promised by Resolve. All assets run
// concurrently; the raster backend is closed once after all of them
// finish. A failed asset is reported in the summary. If its source was
// read, the unconverted bytes are still placed under the promised name
// so the module emitted by Resolve never dangles. The returned error is non-nil only when the phase could
// not start (backend acquisition) or ctx was cancelled.
func (o *Orchestrator) Generate(ctx context.Context, set *bundle.Set) (Summary, error) {
	o.mu.Lock()
	records := make([]*AssetRecord, 0, len(o.resolved))
	for _, record := range o.resolved {
		records = append(records, record)
	}
	o.mu.Unlock()

	if len(records) == 0 {
		o.logger.Info("no image modules resolved")
		return summarize(nil), nil
	}

	encoderSet, err := o.acquire(records)
	if err != nil {
		return Summary{}, err
	}

	var group errgroup.Group
	for _, record := range records {
		group.Go(func() error {
			o.generateOne(ctx, encoderSet, set, record)
			return nil
		})
	}
	group.Wait()
	o.close(encoderSet)

	summary := summarize(records)
	o.logger.Info("inline generate finished",
		"assets", len(records), "encoded", summary.Encoded,
		"cache_hits", summary.CacheHits, "failed", summary.Failed)
	return summary, ctx.Err()
}

func (o *Orchestrator) generateOne(ctx context.Context, encoderSet *encoders, set *bundle.Set, record *AssetRecord) {
	start := o.clock.Now()
	defer func() {
		record.Elapsed = clock.Since(o.clock, start)
		o.report(record)
	}()

	if err := ctx.Err(); err != nil {
		o.fail(record, err)
		return
	}
	source, err := o.readSource(record.SourcePath)
	if err != nil {
		o.fail(record, err)
		return
	}
	encoded, err := o.transcode(ctx, encoderSet, record, source)
	if err != nil {
		o.fail(record, err)
		// The module already points at the promised name; the
		// unconverted source keeps that reference alive.
		set.Put(&bundle.Artifact{FileName: record.OutputPath, Type: bundle.TypeAsset, Source: source})
		o.logger.Warn("inline asset emitted unconverted", "source", record.SourcePath, "output", record.OutputPath)
		return
	}

	set.Put(&bundle.Artifact{FileName: record.OutputPath, Type: bundle.TypeAsset, Source: encoded})
	record.EncodedSize = len(encoded)
	o.transition(record, StateWritten)
	o.transition(record, StateDone)
}

// Adopt installs records resolved by another process, normally loaded
// from a [Ledger]. Records are re-derived from their source paths so a
// ledger written under different rules cannot smuggle in a stale
// filename; such entries are logged and re-promised under the current
// rules.
func (o *Orchestrator) Adopt(entries []LedgerEntry) {
	for _, entry := range entries {
		module, ok := o.Resolve(entry.SourcePath)
		if !ok {
			o.logger.Warn("ledger entry no longer resolves", "source", entry.SourcePath)
			continue
		}
		if !strings.HasSuffix(module, entry.OutputPath+`"`) {
			o.logger.Warn("ledger entry promised a different filename",
				"source", entry.SourcePath, "promised", entry.OutputPath)
		}
	}
}
