// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

// Trend classifies the change between two runs.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendDegrading Trend = "DEGRADING"
	TrendStable    Trend = "STABLE"
)

// String returns the string representation of the Trend.
func (t Trend) String() string {
	return string(t)
}

// Valid reports whether t is a known trend.
func (t Trend) Valid() bool {
	switch t {
	case TrendImproving, TrendDegrading, TrendStable:
		return true
	default:
		return false
	}
}

// trendEpsilon absorbs floating-point noise in precision/recall deltas.
const trendEpsilon = 1e-9

// TrendReport is the signed change from a previous run.
type TrendReport struct {
	PrecisionChange     float64 `json:"precisionChange"`
	RecallChange        float64 `json:"recallChange"`
	FalsePositiveChange int     `json:"falsePositiveChange"`
	Trend               Trend   `json:"trend"`

	// HasComparison is false when there was no previous run.
	HasComparison bool `json:"hasComparison"`
}

// CompareWithPreviousAnalysis computes the trend from previous to current.
//
// Description:
//
//	IMPROVING when precision and recall do not decrease, at least one of
//	them increases, and false positives decrease. DEGRADING is the mirror
//	image. Everything else is STABLE. A nil previous yields STABLE with
//	HasComparison false.
func CompareWithPreviousAnalysis(current AccuracyMetrics, previous *AccuracyMetrics) TrendReport {
	if previous == nil {
		return TrendReport{Trend: TrendStable}
	}

	r := TrendReport{
		PrecisionChange:     current.Precision() - previous.Precision(),
		RecallChange:        current.Recall() - previous.Recall(),
		FalsePositiveChange: current.FalsePositives - previous.FalsePositives,
		Trend:               TrendStable,
		HasComparison:       true,
	}

	dp, dr := r.PrecisionChange, r.RecallChange
	switch {
	case dp >= -trendEpsilon && dr >= -trendEpsilon &&
		(dp > trendEpsilon || dr > trendEpsilon) && r.FalsePositiveChange < 0:
		r.Trend = TrendImproving
	case dp <= trendEpsilon && dr <= trendEpsilon &&
		(dp < -trendEpsilon || dr < -trendEpsilon) && r.FalsePositiveChange > 0:
		r.Trend = TrendDegrading
	}
	return r
}
