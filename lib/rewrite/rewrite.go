// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rewrite substitutes image filenames inside textual build
// artifacts once the final filename table is known.
//
// Substitution is literal. The rewriter does not parse scripts,
// stylesheets, or markup, so a rename of "logo.png" also rewrites
// "biglogo.png" and any string that merely contains the old name. Run
// it only after every asset has been placed: a rename recorded after
// the pass is simply missed.
package rewrite

import (
	"sort"
	"strings"

	"github.com/bureau-foundation/imagepipe/lib/bundle"
)

// Rename maps an old filename token to its replacement, for example
// "hero.jpg" to "hero-bc3db3c5.webp".
type Rename struct {
	From string
	To   string
}

// textualExtensions are the asset types rewritten alongside chunks.
var textualExtensions = map[string]bool{
	"css":  true,
	"html": true,
	"htm":  true,
}

// IsTextual reports whether artifact is rewritten: every chunk, plus
// stylesheet and markup assets.
func IsTextual(artifact *bundle.Artifact) bool {
	return artifact.Type == bundle.TypeChunk || textualExtensions[artifact.Extension()]
}

// Rewriter applies a fixed rename table.
type Rewriter struct {
	renames []Rename
}

// New returns a rewriter for renames. Renames with an empty From or
// with From equal to To are dropped, and duplicates collapse to the
// last one given. Longer tokens are applied first so that "a-b.png"
// is not consumed by an earlier rename of "b.png".
func New(renames []Rename) *Rewriter {
	byFrom := make(map[string]string, len(renames))
	for _, rename := range renames {
		if rename.From == "" || rename.From == rename.To {
			continue
		}
		byFrom[rename.From] = rename.To
	}

	table := make([]Rename, 0, len(byFrom))
	for from, to := range byFrom {
		table = append(table, Rename{From: from, To: to})
	}
	sort.Slice(table, func(i, j int) bool {
		if len(table[i].From) != len(table[j].From) {
			return len(table[i].From) > len(table[j].From)
		}
		return table[i].From < table[j].From
	})
	return &Rewriter{renames: table}
}

// Len returns the number of renames in the table.
func (r *Rewriter) Len() int { return len(r.renames) }

// Rewrite returns text with every rename applied, and the number of
// substitutions made.
func (r *Rewriter) Rewrite(text string) (string, int) {
	total := 0
	for _, rename := range r.renames {
		count := strings.Count(text, rename.From)
		if count == 0 {
			continue
		}
		text = strings.ReplaceAll(text, rename.From, rename.To)
		total += count
	}
	return text, total
}

// RewriteArtifact rewrites artifact in place and reports the number of
// substitutions. Non-textual artifacts are left alone.
func (r *Rewriter) RewriteArtifact(artifact *bundle.Artifact) int {
	if !IsTextual(artifact) {
		return 0
	}
	text, count := r.Rewrite(artifact.Text())
	if count > 0 {
		artifact.SetText(text)
	}
	return count
}

// RewriteSet rewrites every textual artifact in set, marking changed
// ones, and returns the total number of substitutions.
func (r *Rewriter) RewriteSet(set *bundle.Set) int {
	if len(r.renames) == 0 {
		return 0
	}
	total := 0
	for _, artifact := range set.Filter(IsTextual) {
		if count := r.RewriteArtifact(artifact); count > 0 {
			set.MarkChanged(artifact.FileName)
			total += count
		}
	}
	return total
}
