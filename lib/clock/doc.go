// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The pipeline measures how long each asset takes and reports it next
// to the size delta. Production code uses Real(); tests use Fake() so
// the reported durations are exact:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.SetStep(15 * time.Millisecond) // every Now call advances 15ms
package clock
