// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagecache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// Domain keys for BLAKE3 keyed hashing: the ASCII domain name,
// zero-padded to 32 bytes. Changing either orphans every existing
// entry.
var (
	keyDomain = [32]byte{
		'i', 'm', 'a', 'g', 'e', 'p', 'i', 'p', 'e', '.', 'c', 'a', 'c', 'h', 'e', '.',
		'k', 'e', 'y',
	}
	originDomain = [32]byte{
		'i', 'm', 'a', 'g', 'e', 'p', 'i', 'p', 'e', '.', 'c', 'a', 'c', 'h', 'e', '.',
		'o', 'r', 'i', 'g', 'i', 'n',
	}
)

// Key derives the cache key for encoding sourcePath to target with
// settings. The key is 64 lowercase hex characters and doubles as the
// blob filename.
func Key(namespace, sourcePath string, target backend.Format, settings backend.Settings) string {
	hasher := newHasher(keyDomain)
	// Length-prefix each field so "a"+"bc" and "ab"+"c" differ.
	for _, field := range []string{namespace, sourcePath, string(target), settings.Digest()} {
		fmt.Fprintf(hasher, "%d:%s;", len(field), field)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Fingerprinting selects how origin files are compared against the
// manifest.
type Fingerprinting string

const (
	// FingerprintSize compares byte length only.
	FingerprintSize Fingerprinting = "size"

	// FingerprintContent compares byte length and a BLAKE3 digest.
	FingerprintContent Fingerprinting = "content"
)

// ParseFingerprinting validates a configured mode. Empty means
// [FingerprintSize].
func ParseFingerprinting(name string) (Fingerprinting, error) {
	switch Fingerprinting(name) {
	case "", FingerprintSize:
		return FingerprintSize, nil
	case FingerprintContent:
		return FingerprintContent, nil
	default:
		return "", fmt.Errorf("unknown fingerprint mode %q (want size or content)", name)
	}
}

// Fingerprint describes an origin file at the time of a lookup or
// write.
type Fingerprint struct {
	Size int64

	// Digest is the hex BLAKE3 digest of the origin bytes. Empty in
	// size mode.
	Digest string
}

// FingerprintOf computes the fingerprint of origin under mode.
func FingerprintOf(origin []byte, mode Fingerprinting) Fingerprint {
	fingerprint := Fingerprint{Size: int64(len(origin))}
	if mode == FingerprintContent {
		hasher := newHasher(originDomain)
		hasher.Write(origin)
		fingerprint.Digest = hex.EncodeToString(hasher.Sum(nil))
	}
	return fingerprint
}

func newHasher(key [32]byte) *blake3.Hasher {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("imagecache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}
