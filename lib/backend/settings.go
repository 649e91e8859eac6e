// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"fmt"
	"sort"
)

// Settings are the tunable encode parameters for one format. Zero
// values mean "use the default" when merging, so an override only
// needs to name the keys it changes.
type Settings struct {
	// Quality is the lossy quality, 1-100. Ignored by PNG and by
	// lossless WebP.
	Quality int `yaml:"quality" json:"quality"`

	// Effort trades encode time for size, 0-9. Maps to the WebP
	// method (0-6), the AVIF speed (inverted), and the PNG compression
	// level.
	Effort int `yaml:"effort" json:"effort"`

	// Lossless selects lossless WebP encoding. Overrides can only
	// switch it on.
	Lossless bool `yaml:"lossless" json:"lossless"`
}

// Merge returns s with every non-zero field of override applied.
func (s Settings) Merge(override Settings) Settings {
	merged := s
	if override.Quality != 0 {
		merged.Quality = override.Quality
	}
	if override.Effort != 0 {
		merged.Effort = override.Effort
	}
	if override.Lossless {
		merged.Lossless = true
	}
	return merged
}

// Digest returns a canonical string for the settings. It feeds cache
// key derivation, so changing any setting addresses a new entry.
func (s Settings) Digest() string {
	return fmt.Sprintf("quality=%d;effort=%d;lossless=%t", s.Quality, s.Effort, s.Lossless)
}

// Profile is a resolved per-format settings table. It is read-only
// once returned by [ResolveProfile].
type Profile map[Format]Settings

// DefaultProfile returns the system default settings for every
// encodable format.
func DefaultProfile() Profile {
	return Profile{
		FormatJPEG: {Quality: 75},
		FormatPNG:  {Effort: 6},
		FormatWebP: {Quality: 75, Effort: 4},
		FormatAVIF: {Quality: 60, Effort: 4},
		FormatSVG:  {},
	}
}

// For returns the settings for format, or zero settings when the
// profile has no entry.
func (p Profile) For(format Format) Settings {
	return p[format]
}

// ResolveProfile merges caller overrides, keyed by extension ("jpg",
// "webp", ...), over [DefaultProfile]. Keys are applied in sorted
// order so that "jpeg" and "jpg" overrides combine deterministically.
// An unknown key is a [ConfigurationError].
func ResolveProfile(overrides map[string]Settings) (Profile, error) {
	profile := DefaultProfile()

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		format, err := ParseFormat(key)
		if err != nil {
			return nil, &ConfigurationError{Field: "compress." + key, Reason: err.Error()}
		}
		profile[format] = profile[format].Merge(overrides[key])
	}
	return profile, nil
}
