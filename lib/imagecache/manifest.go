// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ManifestName is the manifest's filename inside the cache directory.
const ManifestName = "manifest.json"

// Entry is one manifest record.
type Entry struct {
	// Size is the origin file's byte length when the blob was written.
	Size int64 `json:"size"`

	// Encoded is the length of the encoded (uncompressed) payload.
	Encoded int `json:"encoded,omitempty"`

	// Digest is the origin's content digest, recorded in content
	// fingerprint mode.
	Digest string `json:"digest,omitempty"`

	// Compression names the at-rest blob compression, if any.
	Compression Compression `json:"compression,omitempty"`
}

type manifest map[string]Entry

// CorruptionError reports a manifest that exists but cannot be
// parsed. The cache discards it and starts empty.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("cache manifest %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// readManifest loads the manifest. A missing manifest is empty and not
// an error.
func readManifest(filesystem billy.Filesystem) (manifest, error) {
	data, err := util.ReadFile(filesystem, ManifestName)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest{}, nil
	}
	if err != nil {
		return manifest{}, err
	}

	entries := manifest{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return manifest{}, &CorruptionError{Path: ManifestName, Err: err}
	}
	if entries == nil {
		// "null" parses without error.
		entries = manifest{}
	}
	return entries, nil
}

// writeManifest replaces the manifest atomically.
func writeManifest(filesystem billy.Filesystem, entries manifest) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return writeFileAtomic(filesystem, ManifestName, data)
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over name, so readers never observe a partial file.
func writeFileAtomic(filesystem billy.Filesystem, name string, data []byte) error {
	temp, err := filesystem.TempFile("", "."+name+"-")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tempName := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		filesystem.Remove(tempName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := temp.Close(); err != nil {
		filesystem.Remove(tempName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := filesystem.Rename(tempName, name); err != nil {
		filesystem.Remove(tempName)
		return fmt.Errorf("renaming %s: %w", name, err)
	}
	return nil
}

// Listing is a manifest entry with its key.
type Listing struct {
	Key string
	Entry
}

func (m manifest) sorted() []Listing {
	listings := make([]Listing, 0, len(m))
	for key, entry := range m {
		listings = append(listings, Listing{Key: key, Entry: entry})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Key < listings[j].Key })
	return listings
}
