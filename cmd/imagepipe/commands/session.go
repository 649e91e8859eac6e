// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/bureau-foundation/imagepipe/cmd/imagepipe/cli"
	"github.com/bureau-foundation/imagepipe/lib/backend"
	"github.com/bureau-foundation/imagepipe/lib/config"
	"github.com/bureau-foundation/imagepipe/lib/imagecache"
	"github.com/bureau-foundation/imagepipe/lib/pipeline"
	"github.com/bureau-foundation/imagepipe/lib/version"
)

// configParams are the flags shared by every project command.
type configParams struct {
	Config  string `flag:"config,c" desc:"config file (YAML, or JSON/JSONC by extension); defaults to $IMAGEPIPE_CONFIG"`
	Root    string `flag:"root" desc:"project root; overrides the config file"`
	Backend string `flag:"backend" desc:"raster backend: native or pool; overrides the config file"`
	NoCache bool   `flag:"no-cache" desc:"disable the encode cache for this run"`
	Verbose bool   `flag:"verbose,v" desc:"log every asset state transition"`
}

// session is a loaded project: configuration plus the filesystem,
// cache and backends built from it.
type session struct {
	config   *config.Config
	root     string
	fs       billy.Filesystem
	logger   *slog.Logger
	cache    *imagecache.Cache
	backends pipeline.Backends

	// outputDir, cacheDir and passthroughDir are relative to root. An
	// empty passthroughDir disables passthrough discovery.
	outputDir      string
	cacheDir       string
	passthroughDir string
}

// load resolves the configuration and applies flag overrides. The
// result is validated.
func (p *configParams) load() (*config.Config, error) {
	cfg, err := config.Resolve(p.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if p.Root != "" {
		cfg.Root = p.Root
	}
	if p.Backend != "" {
		cfg.Backend = p.Backend
	}
	if p.NoCache {
		cfg.Cache = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads the project for command.
func (p *configParams) open(env Env, command string) (*session, error) {
	cfg, err := p.load()
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	outputDir, err := underRoot(root, cfg.OutputDir, "output_dir")
	if err != nil {
		return nil, err
	}
	cacheDir, err := underRoot(root, cfg.CacheDir, "cache_dir")
	if err != nil {
		return nil, err
	}
	var passthroughDir string
	if cfg.PassthroughDir != "" {
		passthroughDir, err = underRoot(root, cfg.PassthroughDir, "passthrough_dir")
		if err != nil {
			return nil, err
		}
	}

	logger := env.Logger
	if logger == nil {
		logger = cli.NewLogger(cli.LoggerOptions{Verbose: p.Verbose})
	}
	logger = logger.With("command", command, "root", root)

	s := &session{
		config:         cfg,
		root:           root,
		fs:             osfs.New(root),
		logger:         logger,
		backends:       env.Backends,
		outputDir:      outputDir,
		cacheDir:       cacheDir,
		passthroughDir: passthroughDir,
	}
	if s.backends == nil {
		s.backends = backend.NewRegistry(backend.Probe(), logger)
	}
	if cfg.Cache {
		s.cache, err = s.openCache()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *session) openCache() (*imagecache.Cache, error) {
	fingerprinting, err := imagecache.ParseFingerprinting(s.config.Fingerprint)
	if err != nil {
		return nil, err
	}
	compression, err := imagecache.ParseCompression(s.config.CacheCompression)
	if err != nil {
		return nil, err
	}
	cacheFS, err := s.fs.Chroot(s.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening cache directory: %w", err)
	}
	return imagecache.Open(imagecache.Config{
		FS:             cacheFS,
		Fingerprinting: fingerprinting,
		Compression:    compression,
		Logger:         s.logger,
	}), nil
}

// orchestrator builds the pipeline for this project. The config was
// validated by load, so the compile steps cannot fail here unless the
// config changed since.
func (s *session) orchestrator(reporter pipeline.Reporter) (*pipeline.Orchestrator, error) {
	kind, err := s.config.BackendKind()
	if err != nil {
		return nil, err
	}
	profile, err := s.config.Profile()
	if err != nil {
		return nil, err
	}
	rules, err := s.config.Rules()
	if err != nil {
		return nil, err
	}
	excludes, err := s.config.Excludes()
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		FS:             s.fs,
		Rules:          rules,
		Profile:        profile,
		Backend:        kind,
		Cache:          s.cache,
		Namespace:      s.config.Namespace(version.CacheNamespace()),
		OutputDir:      s.outputDir,
		PassthroughDir: s.passthroughDir,
		AssetsDir:      s.config.AssetsDir,
		Base:           s.config.Base,
		Entry:          s.config.Entry,
		Excludes:       excludes,
		Logger:         s.logger,
		Reporter:       reporter,
	}, s.backends)
}

// outputFS is the host build's output directory.
func (s *session) outputFS() (billy.Filesystem, error) {
	filesystem, err := s.fs.Chroot(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("opening output directory: %w", err)
	}
	return filesystem, nil
}

// ledger is the inline-mode ledger, kept next to the cache.
func (s *session) ledger() (*pipeline.Ledger, error) {
	filesystem, err := s.fs.Chroot(filepath.ToSlash(filepath.Join(s.cacheDir, "inline")))
	if err != nil {
		return nil, fmt.Errorf("opening inline ledger: %w", err)
	}
	return pipeline.NewLedger(filesystem), nil
}

// underRoot returns dir relative to root. Absolute directories must
// lie inside root.
func underRoot(root, dir, field string) (string, error) {
	if !filepath.IsAbs(dir) {
		return filepath.ToSlash(filepath.Clean(dir)), nil
	}
	relative, err := filepath.Rel(root, dir)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", &backend.ConfigurationError{
			Field:  field,
			Reason: fmt.Sprintf("%s is outside the project root %s", dir, root),
		}
	}
	return filepath.ToSlash(relative), nil
}
