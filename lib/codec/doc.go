// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides imagepipe's CBOR encoding configuration.
//
// JSON is used where humans or other tools read the data (the cache
// manifest, configuration, CLI output). CBOR is used for state that
// only imagepipe reads back, such as the inline-mode ledger that
// carries resolved assets from "inline resolve" to "inline generate".
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same record always produces the same bytes and a rewritten ledger
// file is byte-identical when nothing changed.
//
// Types that are only ever CBOR use `cbor` struct tags. Types that are
// also printed as JSON use `json` tags, which fxamacker/cbor falls back
// to when no `cbor` tag is present.
package codec
