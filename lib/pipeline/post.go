// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/imagepipe/lib/bundle"
	"github.com/bureau-foundation/imagepipe/lib/clock"
	"github.com/bureau-foundation/imagepipe/lib/rewrite"
)

// RunPost re-encodes every image in a finished build.
//
// Candidates are the image assets of set plus the image files of the
// passthrough directory. An asset of set whose name matches a
// passthrough file is the host's verbatim copy of that file and is
// handled as passthrough, not as a build asset.
//
// Placement:
//
//   - Build asset, same format: replaced in place, unless the encode
//     is not smaller, in which case the original bytes stay.
//   - Build asset, converted: written as <dir>/<stem>-<id>.<to> and
//     the original removed from set.
//   - Passthrough file: the file in the passthrough directory is never
//     modified. The result goes to the output tree at the same relative
//     path (<stem>-<id>.<to> when converted). The verbatim copy is kept
//     when converting.
//
// After every asset has finished, converted filenames are substituted
// in all textual artifacts of set and in the entry document. Per-asset
// failures are reported in the summary; the returned error is non-nil
// only when the phase could not start or ctx was cancelled.
func (o *Orchestrator) RunPost(ctx context.Context, set *bundle.Set) (Summary, error) {
	records, err := o.discoverPost(set)
	if err != nil {
		return Summary{}, err
	}

	var pending []*AssetRecord
	for _, record := range records {
		if record.State == StateSkipped {
			o.report(record)
			continue
		}
		pending = append(pending, record)
	}
	if len(pending) == 0 {
		o.logger.Info("no image assets found", "skipped", len(records))
		return summarize(records), nil
	}

	encoderSet, err := o.acquire(pending)
	if err != nil {
		return Summary{}, err
	}

	var group errgroup.Group
	for _, record := range pending {
		group.Go(func() error {
			o.postOne(ctx, encoderSet, set, record)
			return nil
		})
	}
	group.Wait()
	o.close(encoderSet)

	summary := summarize(records)
	summary.Substitutions = o.rewriteReferences(set, records)

	o.logger.Info("post processing finished",
		"assets", len(pending), "encoded", summary.Encoded,
		"cache_hits", summary.CacheHits, "failed", summary.Failed,
		"skipped", summary.Skipped, "substitutions", summary.Substitutions)
	return summary, ctx.Err()
}

// discoverPost builds the post-mode records. Every passthrough file
// and every image asset of set gets one; excluded images and
// passthrough files that are not images are recorded as skipped.
func (o *Orchestrator) discoverPost(set *bundle.Set) ([]*AssetRecord, error) {
	passthrough, err := o.passthroughFiles()
	if err != nil {
		return nil, err
	}

	var records []*AssetRecord
	for _, name := range passthrough {
		sourcePath := path.Join(o.options.PassthroughDir, name)
		record, ok := o.newRecord(sourcePath, OriginPassthrough, name)
		if !ok || o.options.Excludes.Match(sourcePath) {
			record = o.skip(sourcePath, OriginPassthrough, name)
		}
		records = append(records, record)
	}

	isPassthrough := make(map[string]bool, len(passthrough))
	for _, name := range passthrough {
		isPassthrough[name] = true
	}
	for _, artifact := range set.Assets() {
		if isPassthrough[artifact.FileName] {
			continue
		}
		sourcePath := o.outputPath(artifact.FileName)
		record, ok := o.newRecord(sourcePath, OriginBuild, artifact.FileName)
		if !ok {
			continue
		}
		if o.options.Excludes.Match(sourcePath) {
			record = o.skip(sourcePath, OriginBuild, artifact.FileName)
		}
		records = append(records, record)
	}
	return records, nil
}

// passthroughFiles lists regular files under the passthrough
// directory, relative to it. A missing directory has no files.
func (o *Orchestrator) passthroughFiles() ([]string, error) {
	if o.options.PassthroughDir == "" {
		return nil, nil
	}
	root, err := o.options.FS.Chroot(o.options.PassthroughDir)
	if err != nil {
		return nil, &IOError{Op: "opening", Path: o.options.PassthroughDir, Err: err}
	}

	var names []string
	err = util.Walk(root, "", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			if name == "" && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if info.Mode().IsRegular() {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, &IOError{Op: "walking", Path: o.options.PassthroughDir, Err: err}
	}
	return names, nil
}

func (o *Orchestrator) postOne(ctx context.Context, encoderSet *encoders, set *bundle.Set, record *AssetRecord) {
	start := o.clock.Now()
	defer func() {
		record.Elapsed = clock.Since(o.clock, start)
		o.report(record)
	}()

	if err := ctx.Err(); err != nil {
		o.fail(record, err)
		return
	}

	var source []byte
	switch record.Origin {
	case OriginPassthrough:
		data, err := o.readSource(record.SourcePath)
		if err != nil {
			o.fail(record, err)
			return
		}
		source = data
	default:
		artifact, ok := set.Get(record.ArtifactName)
		if !ok {
			o.fail(record, &IOError{Op: "reading", Path: record.SourcePath, Err: fs.ErrNotExist})
			return
		}
		source = artifact.Source
	}

	encoded, err := o.transcode(ctx, encoderSet, record, source)
	if err != nil {
		o.fail(record, err)
		return
	}
	record.EncodedSize = len(encoded)

	if !record.Converted {
		record.OutputPath = record.ArtifactName
		record.Kept = len(encoded) >= len(source)
		output := encoded
		if record.Kept {
			output = source
		}
		if _, present := set.Get(record.OutputPath); !record.Kept || !present {
			set.Put(&bundle.Artifact{FileName: record.OutputPath, Type: bundle.TypeAsset, Source: output})
		}
		o.transition(record, StateWritten)
		o.transition(record, StateDone)
		return
	}

	record.OutputPath = convertedName(record.ArtifactName, record)
	set.Put(&bundle.Artifact{FileName: record.OutputPath, Type: bundle.TypeAsset, Source: encoded})
	o.transition(record, StateWritten)
	if record.Origin == OriginBuild {
		set.Delete(record.ArtifactName)
		o.transition(record, StateOriginRemoved)
	}
	o.transition(record, StateDone)
}

// rewriteReferences substitutes converted filenames in set and in the
// entry document. It must run after the join barrier.
func (o *Orchestrator) rewriteReferences(set *bundle.Set, records []*AssetRecord) int {
	var converted []*AssetRecord
	shared := make(map[string]int)
	for _, record := range records {
		shared[path.Base(record.ArtifactName)]++
		if record.State == StateDone && record.Converted {
			converted = append(converted, record)
		}
	}

	// Base names keep relative references ("url(hero.jpg)") working.
	// When another candidate shares the base name, the full
	// output-relative name is matched instead so that file's references
	// are left alone.
	var renames []rewrite.Rename
	for _, record := range converted {
		rename := rewrite.Rename{From: record.ArtifactName, To: record.OutputPath}
		if shared[path.Base(record.ArtifactName)] == 1 {
			rename = rewrite.Rename{From: path.Base(record.ArtifactName), To: path.Base(record.OutputPath)}
		}
		renames = append(renames, rename)
	}
	rewriter := rewrite.New(renames)
	if rewriter.Len() == 0 {
		return 0
	}

	total := rewriter.RewriteSet(set)
	if _, inSet := set.Get(o.options.Entry); !inSet {
		total += o.rewriteEntryDocument(rewriter)
	}
	return total
}

// rewriteEntryDocument applies rewriter to the entry document on disk,
// for hosts whose artifact set does not include it.
func (o *Orchestrator) rewriteEntryDocument(rewriter *rewrite.Rewriter) int {
	name := o.outputPath(o.options.Entry)
	data, err := util.ReadFile(o.options.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return 0
	}
	if err != nil {
		o.logger.Warn("reading entry document", "path", name, "error", err)
		return 0
	}
	text, count := rewriter.Rewrite(string(data))
	if count == 0 {
		return 0
	}
	if err := util.WriteFile(o.options.FS, name, []byte(text), 0o644); err != nil {
		o.logger.Warn("writing entry document", "path", name, "error", err)
		return 0
	}
	return count
}
