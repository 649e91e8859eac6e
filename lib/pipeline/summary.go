// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "sort"

// Summary describes one pipeline phase.
type Summary struct {
	// Records holds every asset the phase considered, sorted by
	// source path.
	Records []*AssetRecord

	Done          int
	CacheHits     int
	Encoded       int
	Kept          int
	Failed        int
	Skipped       int
	OriginRemoved int

	// BytesBefore and BytesAfter total the source and output sizes of
	// successful assets.
	BytesBefore int64
	BytesAfter  int64

	// Substitutions is the number of references the rewriter replaced.
	Substitutions int
}

func summarize(records []*AssetRecord) Summary {
	sorted := append([]*AssetRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SourcePath < sorted[j].SourcePath })

	summary := Summary{Records: sorted}
	for _, record := range sorted {
		switch record.State {
		case StateDone:
			summary.Done++
			summary.BytesBefore += record.OriginSizeAtEncode
			if record.Kept {
				summary.Kept++
				summary.BytesAfter += record.OriginSizeAtEncode
			} else {
				summary.BytesAfter += int64(record.EncodedSize)
			}
			if record.CacheHit {
				summary.CacheHits++
			} else {
				summary.Encoded++
			}
			if record.Converted && record.Origin == OriginBuild {
				summary.OriginRemoved++
			}
		case StateFailed:
			summary.Failed++
		case StateSkipped:
			summary.Skipped++
		}
	}
	return summary
}

// Failures returns the records that ended in StateFailed.
func (s Summary) Failures() []*AssetRecord {
	var failed []*AssetRecord
	for _, record := range s.Records {
		if record.State == StateFailed {
			failed = append(failed, record)
		}
	}
	return failed
}
