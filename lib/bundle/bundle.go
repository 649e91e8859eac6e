// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// Type distinguishes textual chunks from binary assets.
type Type string

const (
	TypeChunk Type = "chunk"
	TypeAsset Type = "asset"
)

// Artifact is one output file.
type Artifact struct {
	// FileName is the output-relative path, slash-separated.
	FileName string

	Type Type

	// Code is the text of a chunk.
	Code string

	// Source is the content of an asset.
	Source []byte
}

// Text returns the artifact's content as text.
func (a *Artifact) Text() string {
	if a.Type == TypeChunk {
		return a.Code
	}
	return string(a.Source)
}

// SetText replaces the artifact's content.
func (a *Artifact) SetText(text string) {
	if a.Type == TypeChunk {
		a.Code = text
		return
	}
	a.Source = []byte(text)
}

// Extension returns the lowercase extension of the filename without
// the dot.
func (a *Artifact) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(a.FileName), "."))
}

// Set is a build's artifacts keyed by filename. It is safe for
// concurrent use.
type Set struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
	changed   map[string]bool
	removed   map[string]bool
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{
		artifacts: make(map[string]*Artifact),
		changed:   make(map[string]bool),
		removed:   make(map[string]bool),
	}
}

func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
}

// Put inserts or replaces an artifact and marks it changed.
func (s *Set) Put(artifact *Artifact) {
	artifact.FileName = cleanName(artifact.FileName)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.FileName] = artifact
	s.changed[artifact.FileName] = true
	delete(s.removed, artifact.FileName)
}

// add inserts an artifact without marking it changed. Used by Load.
func (s *Set) add(artifact *Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.FileName] = artifact
}

// Get returns the artifact named name.
func (s *Set) Get(name string) (*Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[cleanName(name)]
	return artifact, ok
}

// Delete removes name from the set and marks it for removal.
func (s *Set) Delete(name string) {
	name = cleanName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[name]; !ok {
		return
	}
	delete(s.artifacts, name)
	delete(s.changed, name)
	s.removed[name] = true
}

// MarkChanged records an in-place edit of name's content.
func (s *Set) MarkChanged(name string) {
	name = cleanName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[name]; ok {
		s.changed[name] = true
	}
}

// Names returns every filename, sorted.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.artifacts))
	for name := range s.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns the artifacts accepted by keep, sorted by filename.
func (s *Set) Filter(keep func(*Artifact) bool) []*Artifact {
	var result []*Artifact
	for _, name := range s.Names() {
		artifact, ok := s.Get(name)
		if ok && keep(artifact) {
			result = append(result, artifact)
		}
	}
	return result
}

// Chunks returns every chunk, sorted by filename.
func (s *Set) Chunks() []*Artifact {
	return s.Filter(func(a *Artifact) bool { return a.Type == TypeChunk })
}

// Assets returns every asset, sorted by filename.
func (s *Set) Assets() []*Artifact {
	return s.Filter(func(a *Artifact) bool { return a.Type == TypeAsset })
}

// Len returns the number of artifacts.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.artifacts)
}

// Changes returns the filenames changed and removed since the set was
// created or loaded, each sorted.
func (s *Set) Changes() (changed, removed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.changed {
		changed = append(changed, name)
	}
	for name := range s.removed {
		removed = append(removed, name)
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
