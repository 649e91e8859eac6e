// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/imagepipe/lib/backend"
	"github.com/bureau-foundation/imagepipe/lib/imagecache"
	"github.com/bureau-foundation/imagepipe/lib/pipeline"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "IMAGEPIPE_CONFIG"

// Environment represents the build environment.
type Environment string

const (
	// Development is a local dev-server build.
	Development Environment = "development"
	// Production is a release build.
	Production Environment = "production"
)

// Mode selects how the pipeline attaches to the host build.
type Mode string

const (
	// ModeInline rewrites image imports to promised filenames and
	// emits the encoded assets during generation.
	ModeInline Mode = "inline"
	// ModePost transforms the finished output directory.
	ModePost Mode = "post"
)

// Config is the imagepipe configuration. Field names follow the
// JavaScript plugin options, so a JSON config written for the plugin
// loads unchanged.
type Config struct {
	// Environment selects the override section and is part of the
	// cache namespace.
	Environment Environment `yaml:"environment" json:"environment"`

	// Mode is inline or post. Default: post.
	Mode Mode `yaml:"mode" json:"mode"`

	// Backend is the raster backend: native (alias sharp) or pool
	// (alias squoosh). Default: native.
	Backend string `yaml:"backend" json:"backend"`

	// Compress overrides encode settings per extension.
	Compress map[string]backend.Settings `yaml:"compress" json:"compress"`

	// Conversion lists format conversions. The first rule matching a
	// source extension wins.
	Conversion []pipeline.ConversionRule `yaml:"conversion" json:"conversion"`

	// Cache enables the persistent encode cache. Default: true.
	Cache bool `yaml:"cache" json:"cache"`

	// CacheDir holds the manifest and blobs, relative to Root.
	// Default: node_modules/.cache/imagepipe
	CacheDir string `yaml:"cache_dir" json:"cacheDir"`

	// CacheCompression is none, lz4, zstd or auto. Default: auto.
	CacheCompression string `yaml:"cache_compression" json:"cacheCompression"`

	// Fingerprint is size or content. Default: size.
	Fingerprint string `yaml:"fingerprint" json:"fingerprint"`

	// Root is the project root. A relative root is resolved against
	// the directory holding the config file.
	Root string `yaml:"root" json:"root"`

	// OutputDir is the host build output, relative to Root.
	// Default: dist
	OutputDir string `yaml:"output_dir" json:"outputDir"`

	// PassthroughDir holds files copied to the output verbatim,
	// relative to Root. Default: public
	PassthroughDir string `yaml:"passthrough_dir" json:"passthroughDir"`

	// AssetsDir is where inline assets land, relative to OutputDir.
	// Default: assets
	AssetsDir string `yaml:"assets_dir" json:"assetsDir"`

	// Base is the public URL of OutputDir. Default: /
	Base string `yaml:"base" json:"base"`

	// Entry is the entry document relative to OutputDir.
	// Default: index.html
	Entry string `yaml:"entry" json:"entry"`

	// Exclude lists glob patterns of project paths the pipeline never
	// touches. Setting it replaces the defaults.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Per-environment overrides, applied after the file is loaded.
	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// Overrides contains the fields that can be overridden per
// environment. Nil and empty values leave the base value in place.
type Overrides struct {
	Mode             Mode                        `yaml:"mode,omitempty" json:"mode,omitempty"`
	Backend          string                      `yaml:"backend,omitempty" json:"backend,omitempty"`
	Compress         map[string]backend.Settings `yaml:"compress,omitempty" json:"compress,omitempty"`
	Conversion       []pipeline.ConversionRule   `yaml:"conversion,omitempty" json:"conversion,omitempty"`
	Cache            *bool                       `yaml:"cache,omitempty" json:"cache,omitempty"`
	CacheDir         string                      `yaml:"cache_dir,omitempty" json:"cacheDir,omitempty"`
	CacheCompression string                      `yaml:"cache_compression,omitempty" json:"cacheCompression,omitempty"`
	Fingerprint      string                      `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
	OutputDir        string                      `yaml:"output_dir,omitempty" json:"outputDir,omitempty"`
	Base             string                      `yaml:"base,omitempty" json:"base,omitempty"`
}

// Default returns the default configuration. It is the base every
// config file is merged onto.
func Default() *Config {
	return &Config{
		Environment:      Production,
		Mode:             ModePost,
		Backend:          string(backend.KindNative),
		Cache:            true,
		CacheDir:         "node_modules/.cache/imagepipe",
		CacheCompression: string(imagecache.CompressionAuto),
		Fingerprint:      string(imagecache.FingerprintSize),
		Root:             ".",
		OutputDir:        "dist",
		PassthroughDir:   "public",
		AssetsDir:        "assets",
		Base:             "/",
		Entry:            "index.html",
		Exclude:          append([]string(nil), pipeline.DefaultExcludes...),
	}
}

// Load loads configuration from the file named by IMAGEPIPE_CONFIG.
// There is no discovery: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your imagepipe config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// Resolve loads path if it is non-empty, then IMAGEPIPE_CONFIG if that
// is set, and otherwise returns [Default] rooted at the working
// directory. Commands use it so a project with no config file still
// builds with defaults.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from path. Files ending in .json or
// .jsonc are read as JSON with comments and trailing commas allowed;
// anything else is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, nil
}

// loadFile merges one file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Mode != "" {
		c.Mode = overrides.Mode
	}
	if overrides.Backend != "" {
		c.Backend = overrides.Backend
	}
	if overrides.Compress != nil {
		if c.Compress == nil {
			c.Compress = make(map[string]backend.Settings, len(overrides.Compress))
		}
		for extension, settings := range overrides.Compress {
			c.Compress[extension] = c.Compress[extension].Merge(settings)
		}
	}
	if overrides.Conversion != nil {
		c.Conversion = overrides.Conversion
	}
	if overrides.Cache != nil {
		c.Cache = *overrides.Cache
	}
	if overrides.CacheDir != "" {
		c.CacheDir = overrides.CacheDir
	}
	if overrides.CacheCompression != "" {
		c.CacheCompression = overrides.CacheCompression
	}
	if overrides.Fingerprint != "" {
		c.Fingerprint = overrides.Fingerprint
	}
	if overrides.OutputDir != "" {
		c.OutputDir = overrides.OutputDir
	}
	if overrides.Base != "" {
		c.Base = overrides.Base
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"IMAGEPIPE_ROOT": c.Root,
		"HOME":           os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["IMAGEPIPE_ROOT"] = c.Root

	c.CacheDir = expandVars(c.CacheDir, vars)
	c.OutputDir = expandVars(c.OutputDir, vars)
	c.PassthroughDir = expandVars(c.PassthroughDir, vars)
	c.Base = expandVars(c.Base, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars take
// precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks every field that can be checked without touching
// the filesystem. All problems are reported together; each is a
// *backend.ConfigurationError.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field, reason string) {
		errs = append(errs, &backend.ConfigurationError{Field: field, Reason: reason})
	}

	if c.Environment != Development && c.Environment != Production {
		invalid("environment", fmt.Sprintf("unknown environment %q (want development or production)", c.Environment))
	}
	if c.Mode != ModeInline && c.Mode != ModePost {
		invalid("mode", fmt.Sprintf("unknown mode %q (want inline or post)", c.Mode))
	}
	if _, err := c.BackendKind(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Profile(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Rules(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Excludes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := imagecache.ParseFingerprinting(c.Fingerprint); err != nil {
		invalid("fingerprint", err.Error())
	}
	if _, err := imagecache.ParseCompression(c.CacheCompression); err != nil {
		invalid("cache_compression", err.Error())
	}
	if c.Cache && c.CacheDir == "" {
		invalid("cache_dir", "required when the cache is enabled")
	}
	if c.OutputDir == "" {
		invalid("output_dir", "required")
	}
	for _, dir := range []struct{ field, value string }{
		{"output_dir", c.OutputDir},
		{"cache_dir", c.CacheDir},
		{"assets_dir", c.AssetsDir},
		{"passthrough_dir", c.PassthroughDir},
	} {
		cleaned := filepath.ToSlash(filepath.Clean(dir.value))
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			invalid(dir.field, fmt.Sprintf("%q escapes the project root", dir.value))
		}
	}

	return errors.Join(errs...)
}

// BackendKind parses Backend.
func (c *Config) BackendKind() (backend.Kind, error) {
	return backend.ParseKind(c.Backend)
}

// Profile resolves Compress over the default settings.
func (c *Config) Profile() (backend.Profile, error) {
	return backend.ResolveProfile(c.Compress)
}

// Rules compiles Conversion.
func (c *Config) Rules() (pipeline.Rules, error) {
	return pipeline.CompileRules(c.Conversion)
}

// Excludes compiles Exclude.
func (c *Config) Excludes() (pipeline.Excludes, error) {
	return pipeline.CompileExcludes(c.Exclude)
}

// Namespace returns the cache namespace for a tool version. Entries
// written by another version or environment never match.
func (c *Config) Namespace(toolVersion string) string {
	return toolVersion + "/" + string(c.Environment)
}
