// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// chunkExtensions are loaded as chunks. Everything else is an asset.
var chunkExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
}

// Load reads every regular file under filesystem into a set. A missing
// root yields an empty set.
func Load(filesystem billy.Filesystem) (*Set, error) {
	set := NewSet()
	err := util.Walk(filesystem, "", func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			if name == "" && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		data, err := util.ReadFile(filesystem, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		artifact := &Artifact{FileName: cleanName(name)}
		if chunkExtensions[strings.ToLower(path.Ext(name))] {
			artifact.Type = TypeChunk
			artifact.Code = string(data)
		} else {
			artifact.Type = TypeAsset
			artifact.Source = data
		}
		set.add(artifact)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading output directory: %w", err)
	}
	return set, nil
}

// Flush writes every changed artifact to filesystem and removes every
// deleted one. Removal of an already-missing file is not an error.
// Both lists are cleared on success.
func (s *Set) Flush(filesystem billy.Filesystem) error {
	changed, removed := s.Changes()

	var errs []error
	for _, name := range removed {
		if err := filesystem.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", name, err))
		}
	}
	for _, name := range changed {
		artifact, ok := s.Get(name)
		if !ok {
			continue
		}
		data := artifact.Source
		if artifact.Type == TypeChunk {
			data = []byte(artifact.Code)
		}
		if err := util.WriteFile(filesystem, name, data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.mu.Lock()
	clear(s.changed)
	clear(s.removed)
	s.mu.Unlock()
	return nil
}
