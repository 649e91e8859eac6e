// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/bureau-foundation/imagepipe/lib/codec"
)

const ledgerSuffix = ".cbor"

// LedgerEntry is one resolved inline asset as persisted between the
// resolve and generate processes.
type LedgerEntry struct {
	SourcePath string `cbor:"source_path"`
	Target     string `cbor:"target"`
	Identifier string `cbor:"identifier"`
	OutputPath string `cbor:"output_path"`
}

// Ledger stores resolved inline assets, one CBOR file per identifier,
// in a directory. Files are named by identifier, so recording the same
// asset again rewrites identical bytes and concurrent resolvers never
// contend on a shared file.
type Ledger struct {
	filesystem billy.Filesystem
}

// NewLedger returns a ledger stored in filesystem. The directory is
// created on the first write.
func NewLedger(filesystem billy.Filesystem) *Ledger {
	return &Ledger{filesystem: filesystem}
}

// Record persists records.
func (l *Ledger) Record(records ...AssetRecord) error {
	var errs []error
	for _, record := range records {
		entry := LedgerEntry{
			SourcePath: record.SourcePath,
			Target:     record.TargetExt,
			Identifier: record.Identifier,
			OutputPath: record.OutputPath,
		}
		data, err := codec.Marshal(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("encoding ledger entry for %s: %w", record.SourcePath, err))
			continue
		}
		if err := util.WriteFile(l.filesystem, record.Identifier+ledgerSuffix, data, 0o644); err != nil {
			errs = append(errs, &IOError{Op: "writing ledger entry", Path: record.Identifier, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Entries returns every recorded entry, sorted by source path. An
// absent ledger directory has no entries.
func (l *Ledger) Entries() ([]LedgerEntry, error) {
	names, err := l.names()
	if err != nil {
		return nil, err
	}

	entries := make([]LedgerEntry, 0, len(names))
	for _, name := range names {
		data, err := util.ReadFile(l.filesystem, name)
		if err != nil {
			return nil, &IOError{Op: "reading ledger entry", Path: name, Err: err}
		}
		var entry LedgerEntry
		if err := codec.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("decoding ledger entry %s: %w", name, err)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SourcePath < entries[j].SourcePath })
	return entries, nil
}

// Clear removes every entry.
func (l *Ledger) Clear() error {
	names, err := l.names()
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := l.filesystem.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, &IOError{Op: "removing ledger entry", Path: name, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (l *Ledger) names() ([]string, error) {
	infos, err := l.filesystem.ReadDir("")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "listing ledger", Path: l.filesystem.Root(), Err: err}
	}
	var names []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), ledgerSuffix) {
			names = append(names, info.Name())
		}
	}
	return names, nil
}
