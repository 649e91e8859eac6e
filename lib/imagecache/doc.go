// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagecache memoizes encoded images across builds.
//
// The cache is a directory holding manifest.json and one blob file per
// entry, named by its key:
//
//	{cacheDir}/manifest.json   {"<key>": {"size": 120000, "encoded": 5310}, ...}
//	{cacheDir}/<key>           encoded bytes
//
// The manifest is the only source of validity. A lookup hits when the
// manifest has an entry for the key and the origin file's current
// [Fingerprint] matches the one recorded at write time. In the default
// [FingerprintSize] mode only the byte length is compared, so two
// different sources of equal length are indistinguishable;
// [FingerprintContent] also compares a BLAKE3 digest of the origin.
//
// Keys come from [Key], a BLAKE3 keyed hash over a namespace (tool
// version plus environment), the source path, the target format, and
// the resolved encode settings. Changing any of them addresses a new
// entry; old entries are never pruned.
//
// Failures never reach the caller. Read errors are misses, write errors
// are no-ops, and an unparseable manifest is logged as a
// [CorruptionError] and replaced by an empty one for the run. All
// storage goes through a billy.Filesystem rooted at the cache
// directory; the directory itself is created on the first write.
//
// Every method is safe for concurrent use. Manifest rewrites are
// serialized within a process and land atomically (temp file plus
// rename). Two processes sharing a directory race with last-write-wins
// on the manifest.
package imagecache
