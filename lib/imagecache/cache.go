// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagecache

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// Config holds the parameters for opening a [Cache].
type Config struct {
	// FS is rooted at the cache directory. The directory need not
	// exist yet. Get and Set touch it from many goroutines at once, so
	// it must be safe for concurrent use (osfs is, bare memfs is not).
	FS billy.Filesystem

	// Fingerprinting defaults to [FingerprintSize].
	Fingerprinting Fingerprinting

	// Compression defaults to [CompressionAuto].
	Compression Compression

	// Logger receives miss reasons and swallowed I/O errors. If nil,
	// a no-op logger is used.
	Logger *slog.Logger
}

// Cache is an open cache directory. A nil *Cache is a disabled cache:
// every Get misses and every Set is a no-op.
type Cache struct {
	filesystem     billy.Filesystem
	fingerprinting Fingerprinting
	compression    Compression
	logger         *slog.Logger

	mu        sync.Mutex
	entries   manifest
	recovered error
}

// Open loads the manifest from config.FS. It never fails: an
// unreadable manifest is logged and the cache starts empty (see
// [Cache.Recovered]).
func Open(config Config) *Cache {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fingerprinting := config.Fingerprinting
	if fingerprinting == "" {
		fingerprinting = FingerprintSize
	}
	compression := config.Compression
	if compression == "" {
		compression = CompressionAuto
	}

	cache := &Cache{
		filesystem:     config.FS,
		fingerprinting: fingerprinting,
		compression:    compression,
		logger:         logger,
	}

	entries, err := readManifest(config.FS)
	if err != nil {
		var corruption *CorruptionError
		if errors.As(err, &corruption) {
			logger.Warn("cache manifest corrupt, starting empty", "error", err)
		} else {
			logger.Warn("cache manifest unreadable, starting empty", "error", err)
		}
		cache.recovered = err
	}
	cache.entries = entries
	return cache
}

// OpenDir opens the cache rooted at directory on the host filesystem.
func OpenDir(directory string, config Config) *Cache {
	config.FS = osfs.New(directory)
	return Open(config)
}

// Fingerprinting returns the cache's comparison mode, which callers
// pass to [FingerprintOf].
func (c *Cache) Fingerprinting() Fingerprinting {
	if c == nil {
		return FingerprintSize
	}
	return c.fingerprinting
}

// Recovered returns the error that caused Open to discard the
// manifest, or nil.
func (c *Cache) Recovered() error {
	if c == nil {
		return nil
	}
	return c.recovered
}

// Get returns the encoded bytes for key if the recorded origin
// fingerprint matches origin.
func (c *Cache) Get(key string, origin Fingerprint) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	if entry.Size != origin.Size {
		c.logger.Debug("cache stale: origin size changed", "key", key,
			"recorded", entry.Size, "current", origin.Size)
		return nil, false
	}
	if c.fingerprinting == FingerprintContent && entry.Digest != origin.Digest {
		c.logger.Debug("cache stale: origin content changed", "key", key)
		return nil, false
	}

	stored, err := util.ReadFile(c.filesystem, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	data, err := decompressBlob(stored, entry.Compression, entry.Encoded)
	if err != nil {
		c.logger.Warn("cache blob unreadable", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Set stores data under key and records origin in the manifest. The
// blob is written before the manifest, so an interrupted write leaves
// at worst an orphan blob, never an entry without one. format selects
// the at-rest compression in auto mode.
func (c *Cache) Set(key string, data []byte, origin Fingerprint, format backend.Format) {
	if c == nil {
		return
	}

	stored, tag, err := compressBlob(data, c.compression.forFormat(format))
	if err != nil {
		c.logger.Warn("cache compression failed, storing raw", "key", key, "error", err)
		stored, tag = data, ""
	}
	if err := writeFileAtomic(c.filesystem, key, stored); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}

	entry := Entry{Size: origin.Size, Encoded: len(data), Compression: tag}
	if c.fingerprinting == FingerprintContent {
		entry.Digest = origin.Digest
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	if err := writeManifest(c.filesystem, c.entries); err != nil {
		c.logger.Warn("cache manifest write failed", "error", err)
	}
}

// Entries returns every manifest entry, sorted by key.
func (c *Cache) Entries() []Listing {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.sorted()
}
