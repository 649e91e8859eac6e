// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assetid

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"strings"
)

// digestLength is the number of hex characters of the path digest kept
// in an identifier. Eight characters (32 bits) keeps filenames short;
// collisions only matter between assets sharing a stem, and the stem
// is part of every output name.
const digestLength = 8

// Identify returns the identifier for sourcePath encoded as targetExt.
// The path is normalized to forward slashes and cleaned before hashing
// so the same logical path yields the same identifier on every
// platform. targetExt may be given with or without a leading dot.
func Identify(sourcePath, targetExt string) string {
	sum := sha256.Sum256([]byte(Normalize(sourcePath)))
	return hex.EncodeToString(sum[:])[:digestLength] + "." + trimDot(targetExt)
}

// OutputName returns the filename emitted for sourcePath encoded as
// targetExt: the source stem, a dash, and the identifier.
//
//	OutputName("src/assets/hero.jpg", "webp") == "hero-<8 hex>.webp"
func OutputName(sourcePath, targetExt string) string {
	return Stem(sourcePath) + "-" + Identify(sourcePath, targetExt)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(Normalize(p))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Extension returns the lowercase extension of p without the dot, or
// "" when p has none.
func Extension(p string) string {
	return strings.ToLower(trimDot(path.Ext(Normalize(p))))
}

// Normalize converts p to a cleaned, forward-slash path.
func Normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func trimDot(ext string) string {
	return strings.TrimPrefix(ext, ".")
}
