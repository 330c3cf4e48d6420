// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package di

import (
	"github.com/AleutianAI/AleutianDI/services/di/detect"
	"github.com/AleutianAI/AleutianDI/services/di/graph"
	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/model"
	"github.com/AleutianAI/AleutianDI/services/di/stats"
	"github.com/AleutianAI/AleutianDI/services/di/validation"
)

// Analysis sources used as metric labels.
const (
	SourceCLI   = "cli"
	SourceHTTP  = "http"
	SourceWatch = "watch"
)

// AnalyzeRequest is the input of one analysis.
type AnalyzeRequest struct {
	// Components is the extracted fact set. May be empty.
	Components []model.Component `json:"components"`

	// Label is recorded with the run in history.
	Label string `json:"label,omitempty"`

	// ExpectedIssues overrides the structural estimate of expected issues.
	ExpectedIssues *int `json:"expectedIssues,omitempty" binding:"omitempty,gte=0"`

	// Validation overrides the service's validation settings.
	Validation *validation.Settings `json:"validation,omitempty"`

	// SkipHistory disables trend comparison and run recording.
	SkipHistory bool `json:"skipHistory,omitempty"`
}

// AnalysisResult is the output of one analysis.
type AnalysisResult struct {
	// RunID is the history record ID. Empty when nothing was recorded.
	RunID string `json:"runId,omitempty"`
	Label string `json:"label,omitempty"`

	// Issues are the deduplicated, validated issues in priority order.
	Issues []model.Issue `json:"issues"`

	// RawIssueCount is the number of issues before deduplication.
	RawIssueCount int `json:"rawIssueCount"`

	// Suppressed is the number of issues removed by deduplication.
	Suppressed int `json:"suppressed"`

	DetectorResults []detect.DetectorResult `json:"detectorResults"`
	GraphStats      graph.Stats             `json:"graphStats"`
	Cycles          graph.CycleReport       `json:"cycles"`

	Metrics   stats.AccuracyMetrics `json:"metrics"`
	Precision float64               `json:"precision"`
	Recall    float64               `json:"recall"`
	F1Score   float64               `json:"f1Score"`

	// Trend compares against the latest stored run. Nil without history.
	Trend *stats.TrendReport `json:"trend,omitempty"`

	// Report is the plain-text accuracy report.
	Report string `json:"report"`

	DurationMs int64 `json:"durationMs"`
}

// TrendRequest compares two metric sets. A nil Previous compares against
// the latest stored run.
type TrendRequest struct {
	Current  stats.AccuracyMetrics  `json:"current"`
	Previous *stats.AccuracyMetrics `json:"previous,omitempty"`
}

// HistoryResponse lists stored runs, newest first.
type HistoryResponse struct {
	Runs []history.RunRecord `json:"runs"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	HistoryEnabled bool   `json:"historyEnabled"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}
