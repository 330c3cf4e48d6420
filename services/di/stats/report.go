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

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianDI/services/di/detect"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// GenerateAccuracyReport renders the metrics as deterministic plain text.
//
// The output always contains the labels "Precision:", "Recall:" and
// "F1-Score:". Issue types appear in priority order. Trend may be nil.
func GenerateAccuracyReport(m AccuracyMetrics, trend *TrendReport) string {
	var sb strings.Builder

	sb.WriteString("DI Analysis Accuracy Report\n")
	sb.WriteString("===========================\n")
	fmt.Fprintf(&sb, "Total Issues: %d\n", m.TotalIssues)
	fmt.Fprintf(&sb, "Expected Issues: %d\n", m.ExpectedIssues)
	if m.ValidationEnabled {
		sb.WriteString("Validation: enabled\n")
	} else {
		sb.WriteString("Validation: disabled\n")
	}
	fmt.Fprintf(&sb, "True Positives: %d\n", m.TruePositives)
	fmt.Fprintf(&sb, "False Positives: %d\n", m.FalsePositives)
	fmt.Fprintf(&sb, "False Negatives: %d\n", m.FalseNegatives)
	fmt.Fprintf(&sb, "Precision: %s\n", percent(m.Precision()))
	fmt.Fprintf(&sb, "Recall: %s\n", percent(m.Recall()))
	fmt.Fprintf(&sb, "F1-Score: %s\n", percent(m.F1Score()))
	fmt.Fprintf(&sb, "Average Confidence: %.3f\n", m.AverageConfidenceScore)

	sb.WriteString("\nBreakdown by Issue Type:\n")
	wrote := false
	for _, t := range model.AllIssueTypes() {
		b, ok := m.ByType[t]
		if !ok || b.Total == 0 {
			continue
		}
		wrote = true
		fmt.Fprintf(&sb, "  %-30s total=%d tp=%d fp=%d unvalidated=%d avgConfidence=%.3f\n",
			t, b.Total, b.TruePositives, b.FalsePositives, b.NotValidated, b.AverageConfidence)
	}
	if !wrote {
		sb.WriteString("  (no issues)\n")
	}

	if trend != nil {
		sb.WriteString("\nTrend vs Previous Run:\n")
		if !trend.HasComparison {
			sb.WriteString("  No previous run to compare against\n")
		} else {
			fmt.Fprintf(&sb, "  Trend: %s\n", trend.Trend)
			fmt.Fprintf(&sb, "  Precision Change: %s\n", signedPercent(trend.PrecisionChange))
			fmt.Fprintf(&sb, "  Recall Change: %s\n", signedPercent(trend.RecallChange))
			fmt.Fprintf(&sb, "  False Positive Change: %+d\n", trend.FalsePositiveChange)
		}
	}
	return sb.String()
}

// GenerateIssueListing renders issues one per line, with the best
// qualifier suggestion when there is one.
func GenerateIssueListing(issues []model.Issue) string {
	var sb strings.Builder
	for _, is := range issues {
		fmt.Fprintf(&sb, "[%s] %s %s: %s", is.Severity, is.Type, is.ComponentName, is.Message)
		if is.ValidationStatus != model.ValidationNotValidated {
			fmt.Fprintf(&sb, " (%s, confidence %.2f)", is.ValidationStatus, is.ConfidenceScore)
		}
		sb.WriteString("\n")
		if s := suggestionsOf(is); len(s) > 0 {
			fmt.Fprintf(&sb, "    best match: %s (similarity %.2f)\n", s[0].Value, s[0].Score)
		}
		if is.SuggestedFix != "" {
			fmt.Fprintf(&sb, "    fix: %s\n", is.SuggestedFix)
		}
	}
	return sb.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// suggestionsOf re-ranks the stored qualifier suggestions of an issue.
func suggestionsOf(is model.Issue) []detect.Suggestion {
	vals, ok := is.MetaStrings(model.MetaSuggestions)
	if !ok {
		return nil
	}
	requested, _ := is.MetaString(model.MetaRequestedQualifier)
	return detect.RankSuggestions(requested, vals)
}
