// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats computes the analyzer's accuracy metrics, trends and the
// plain-text accuracy report.
//
// All functions are pure. Empty denominators yield 0, never NaN.
package stats

import (
	"github.com/AleutianAI/AleutianDI/services/di/graph"
	"github.com/AleutianAI/AleutianDI/services/di/index"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// TypeBreakdown is the accuracy of a single issue type.
type TypeBreakdown struct {
	Total             int     `json:"total"`
	TruePositives     int     `json:"truePositives"`
	FalsePositives    int     `json:"falsePositives"`
	NotValidated      int     `json:"notValidated"`
	AverageConfidence float64 `json:"averageConfidence"`
}

// AccuracyMetrics summarizes how accurate one analysis run was.
type AccuracyMetrics struct {
	TruePositives  int `json:"truePositives"`
	FalsePositives int `json:"falsePositives"`
	FalseNegatives int `json:"falseNegatives"`

	// ValidationEnabled is inferred by CalculateAccuracyMetrics as "at least
	// one issue was validated", so a clean run reads false. Callers that
	// know validation ran set it directly.
	ValidationEnabled bool `json:"validationEnabled"`

	// AverageConfidenceScore is the mean score of the validated issues.
	AverageConfidenceScore float64 `json:"averageConfidenceScore"`

	// TotalIssues is the number of issues before validation.
	TotalIssues int `json:"totalIssues"`

	// ExpectedIssues is the baseline the false negatives were derived from.
	ExpectedIssues int `json:"expectedIssues"`

	// ByType is the per-issue-type breakdown.
	ByType map[model.IssueType]TypeBreakdown `json:"byType"`
}

// Precision returns TP/(TP+FP), or 0 when there are no positives.
func (m AccuracyMetrics) Precision() float64 {
	return ratio(m.TruePositives, m.TruePositives+m.FalsePositives)
}

// Recall returns TP/(TP+FN), or 0 when the denominator is 0.
func (m AccuracyMetrics) Recall() float64 {
	return ratio(m.TruePositives, m.TruePositives+m.FalseNegatives)
}

// F1Score returns the harmonic mean of precision and recall, or 0 when
// both are 0.
func (m AccuracyMetrics) F1Score() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// CalculateAccuracyMetrics derives accuracy metrics from a run's issues.
//
// Description:
//
//	True and false positives are counted from the validation status of
//	validatedIssues. False negatives are max(0, expectedIssues - TP).
//	The per-type breakdown and the average confidence are computed over
//	validatedIssues, falling back to allIssues when nothing was validated.
//
// Inputs:
//
//	allIssues - The issues before validation.
//	validatedIssues - The issues after validation.
//	expectedIssues - Ground truth or EstimateExpectedIssues. Negative is 0.
//
// Outputs:
//
//	AccuracyMetrics - The metrics. ByType is never nil.
func CalculateAccuracyMetrics(allIssues, validatedIssues []model.Issue, expectedIssues int) AccuracyMetrics {
	if expectedIssues < 0 {
		expectedIssues = 0
	}

	m := AccuracyMetrics{
		TotalIssues:    len(allIssues),
		ExpectedIssues: expectedIssues,
		ByType:         make(map[model.IssueType]TypeBreakdown),
	}

	source := validatedIssues
	if len(source) == 0 {
		source = allIssues
	}

	confidenceSums := make(map[model.IssueType]float64)
	total := 0.0
	for _, is := range source {
		b := m.ByType[is.Type]
		b.Total++
		switch is.ValidationStatus {
		case model.ValidationTruePositive:
			b.TruePositives++
		case model.ValidationFalsePositive:
			b.FalsePositives++
		default:
			b.NotValidated++
		}
		m.ByType[is.Type] = b
		confidenceSums[is.Type] += is.ConfidenceScore
		total += is.ConfidenceScore
	}

	for _, is := range validatedIssues {
		switch is.ValidationStatus {
		case model.ValidationTruePositive:
			m.TruePositives++
			m.ValidationEnabled = true
		case model.ValidationFalsePositive:
			m.FalsePositives++
			m.ValidationEnabled = true
		}
	}

	for t, b := range m.ByType {
		b.AverageConfidence = confidenceSums[t] / float64(b.Total)
		m.ByType[t] = b
	}
	if len(validatedIssues) > 0 {
		sum := 0.0
		for _, is := range validatedIssues {
			sum += is.ConfidenceScore
		}
		m.AverageConfidenceScore = sum / float64(len(validatedIssues))
	} else if len(source) > 0 {
		m.AverageConfidenceScore = total / float64(len(source))
	}

	m.FalseNegatives = max(0, expectedIssues-m.TruePositives)
	return m
}

// EstimateExpectedIssues derives a structural baseline of issues a correct
// analyzer should report, used when no ground truth is supplied.
//
// Description:
//
//	Counts mutual-dependency pairs, self-loops, duplicate-provider buckets
//	(non-multibinding) and qualified dependencies with no exact provider
//	while the type is provided under another qualifier.
func EstimateExpectedIssues(components []model.Component) int {
	if len(components) == 0 {
		return 0
	}

	g := graph.BuildGraph(components)
	idx := index.Build(components)
	count := 0

	for _, n := range g.Nodes() {
		succ, _ := g.Successors(n.ID)
		for _, s := range succ {
			switch {
			case s == n.ID:
				count++
			case n.ID < s && g.HasEdge(s, n.ID):
				count++
			}
		}
	}

	count += len(idx.Groups(func(r index.ProviderRef) bool {
		return !r.Provider.IsMultiBinding()
	}))

	for _, c := range components {
		for _, d := range c.Dependencies {
			if !d.HasQualifier() {
				continue
			}
			if len(idx.Lookup(d.TargetType, d.NamedQualifier)) == 0 && len(idx.ForType(d.TargetType)) > 0 {
				count++
			}
		}
	}
	return count
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []model.Issue) map[model.Severity]int {
	out := make(map[model.Severity]int, 3)
	for _, is := range issues {
		out[is.Severity]++
	}
	return out
}

// CountByType tallies issues per type.
func CountByType(issues []model.Issue) map[model.IssueType]int {
	out := make(map[model.IssueType]int, len(model.AllIssueTypes()))
	for _, is := range issues {
		out[is.Type]++
	}
	return out
}
