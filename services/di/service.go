// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package di is the DI analyzer service: it runs the analysis pipeline
// (graph, detectors, validation, statistics), keeps run history and
// serves the HTTP API.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianDI/services/di/detect"
	"github.com/AleutianAI/AleutianDI/services/di/facts"
	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/model"
	"github.com/AleutianAI/AleutianDI/services/di/observability"
	"github.com/AleutianAI/AleutianDI/services/di/stats"
	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
	"github.com/AleutianAI/AleutianDI/services/di/validation"
)

// ServiceVersion is the analyzer service version.
const ServiceVersion = "0.1.0"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Validation is the default validation settings.
	Validation validation.Settings

	// ParallelDetectors runs detectors of one priority group concurrently.
	ParallelDetectors bool
}

// DefaultServiceConfig returns validation enabled at the default threshold.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{Validation: validation.DefaultSettings()}
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithHistory enables trend comparison and run recording.
func WithHistory(store *history.Store) ServiceOption {
	return func(s *Service) {
		s.history = store
	}
}

// WithMetrics publishes Prometheus metrics for every analysis.
func WithMetrics(m *observability.AnalyzerMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service runs analyses.
//
// Thread Safety: Safe for concurrent use. Each Analyze call works on its
// own snapshot of the components.
type Service struct {
	config      ServiceConfig
	coordinator *detect.Coordinator
	history     *history.Store
	metrics     *observability.AnalyzerMetrics
	logger      *slog.Logger

	// recordMu serializes the Latest then Save pair of recordRun.
	recordMu sync.Mutex
}

// NewService creates a Service.
func NewService(config ServiceConfig, opts ...ServiceOption) *Service {
	s := &Service{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.coordinator = detect.NewCoordinator(
		detect.WithLogger(s.logger),
		detect.WithParallelDetectors(config.ParallelDetectors),
	)
	return s
}

// ValidationSettings returns the service's default validation settings.
func (s *Service) ValidationSettings() validation.Settings {
	return s.config.Validation
}

// HistoryEnabled reports whether a run store is attached.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Analyze runs the full pipeline over req.Components.
//
// Description:
//
//	Builds the dependency graph and provider index, runs the detectors,
//	validates the surviving issues, and computes accuracy metrics against
//	req.ExpectedIssues or the structural estimate. With history enabled
//	the metrics are compared against the latest stored run and the new
//	run is recorded.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Must not be nil.
//	req - The facts and per-request overrides.
//	source - Metric label: SourceCLI, SourceHTTP or SourceWatch.
//
// Outputs:
//
//	*AnalysisResult - The analysis. Detector failures are reported in
//	DetectorResults, not as errors.
//	error - ErrNilContext, wrapped ErrInvalidRequest, context errors, or
//	history failures.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest, source string) (*AnalysisResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	start := time.Now()

	ctx, span := startAnalyzeSpan(ctx, source, len(req.Components))
	defer span.End()
	logger := telemetry.LoggerWithTrace(ctx, s.logger).With(slog.String("source", source))

	result, err := s.analyze(ctx, req, logger)
	duration := time.Since(start)

	if err != nil {
		telemetry.RecordError(span, err)
		recordAnalyzeMetrics(ctx, source, duration, 0, 0, false)
		s.metrics.ObserveAnalysis(source, duration, len(req.Components), err)
		logger.Warn("analysis failed", slog.String("error", err.Error()))
		return nil, err
	}

	result.DurationMs = duration.Milliseconds()
	setAnalyzeSpanResult(span, result)
	telemetry.SetSpanOK(span)
	recordAnalyzeMetrics(ctx, source, duration, len(result.Issues), result.Cycles.TotalCycles, true)
	s.observe(source, duration, len(req.Components), result)

	logger.Info("analysis complete",
		slog.Int("components", len(req.Components)),
		slog.Int("issues", len(result.Issues)),
		slog.Int("suppressed", result.Suppressed),
		slog.Float64("precision", result.Precision),
		slog.Int64("duration_ms", result.DurationMs))
	return result, nil
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest, logger *slog.Logger) (*AnalysisResult, error) {
	components := req.Components
	if components == nil {
		components = []model.Component{}
	}
	if err := facts.Validate(&facts.Document{Components: components, ExpectedIssues: req.ExpectedIssues}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	settings := s.config.Validation
	if req.Validation != nil {
		settings = *req.Validation
	}
	if settings.Weights != nil {
		if err := settings.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("%w: weights: %w", ErrInvalidRequest, err)
		}
	}

	_, buildSpan := startStageSpan(ctx, "build")
	input := detect.NewInput(components)
	buildSpan.End()

	detected, err := s.coordinator.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("run detectors: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, name := range detected.FailedDetectors() {
		logger.Warn("detector failed", slog.String("detector", name))
	}

	_, validateSpan := startStageSpan(ctx, "validate")
	validated := validation.ValidateIssues(detected.Issues, components, settings)
	validateSpan.End()

	expected := stats.EstimateExpectedIssues(components)
	if req.ExpectedIssues != nil {
		expected = *req.ExpectedIssues
	}
	metrics := stats.CalculateAccuracyMetrics(detected.Issues, validated, expected)
	if settings.Enabled {
		metrics.ValidationEnabled = true
	}

	result := &AnalysisResult{
		Label:           req.Label,
		Issues:          validated,
		RawIssueCount:   len(detected.RawIssues),
		Suppressed:      detected.Suppressed,
		DetectorResults: detected.DetectorResults,
		GraphStats:      input.Graph.Stats(),
		Cycles:          input.Graph.CycleReport(),
		Metrics:         metrics,
		Precision:       metrics.Precision(),
		Recall:          metrics.Recall(),
		F1Score:         metrics.F1Score(),
	}

	if s.history != nil && !req.SkipHistory {
		if err := s.recordRun(ctx, result, len(components)); err != nil {
			return nil, err
		}
	}

	result.Report = stats.GenerateAccuracyReport(metrics, result.Trend)
	return result, nil
}

// Record compares an analysis made with SkipHistory against the latest
// stored run, stores it, and refreshes its report with the trend.
//
// Callers that analyze several inputs concurrently record them one by one
// in a fixed order so every trend is reproducible.
//
// Outputs:
//
//	error - ErrNilContext, ErrInvalidRequest for a nil result,
//	ErrHistoryDisabled, or history failures.
func (s *Service) Record(ctx context.Context, result *AnalysisResult, componentCount int) error {
	if ctx == nil {
		return ErrNilContext
	}
	if result == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidRequest)
	}
	if s.history == nil {
		return ErrHistoryDisabled
	}
	if err := s.recordRun(ctx, result, componentCount); err != nil {
		return err
	}
	result.Report = stats.GenerateAccuracyReport(result.Metrics, result.Trend)
	return nil
}

func (s *Service) recordRun(ctx context.Context, result *AnalysisResult, componentCount int) error {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()

	var previous *stats.AccuracyMetrics
	latest, err := s.history.Latest(ctx)
	switch {
	case err == nil:
		previous = &latest.Metrics
	case errors.Is(err, history.ErrRunNotFound):
	default:
		return fmt.Errorf("load previous run: %w", err)
	}
	trend := stats.CompareWithPreviousAnalysis(result.Metrics, previous)
	result.Trend = &trend

	rec, err := s.history.Save(ctx, history.RunRecord{
		Label:          result.Label,
		ComponentCount: componentCount,
		Metrics:        result.Metrics,
		IssueCounts:    stats.CountByType(result.Issues),
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.RunID = rec.ID
	return nil
}

func (s *Service) observe(source string, d time.Duration, components int, result *AnalysisResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveAnalysis(source, d, components, nil)
	for _, is := range result.Issues {
		s.metrics.ObserveIssue(string(is.Type), string(is.ValidationStatus))
	}
	for _, dr := range result.DetectorResults {
		if !dr.Success && !dr.Skipped {
			s.metrics.ObserveDetectorFailure(dr.Name)
		}
	}
	s.metrics.SetAccuracy(result.Precision, result.F1Score)
}

// Trend compares req.Current with req.Previous, or with the latest stored
// run when Previous is nil.
func (s *Service) Trend(ctx context.Context, req TrendRequest) (*stats.TrendReport, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	previous := req.Previous
	if previous == nil && s.history != nil {
		latest, err := s.history.Latest(ctx)
		switch {
		case err == nil:
			previous = &latest.Metrics
		case !errors.Is(err, history.ErrRunNotFound):
			return nil, fmt.Errorf("load previous run: %w", err)
		}
	}
	report := stats.CompareWithPreviousAnalysis(req.Current, previous)
	return &report, nil
}

// History returns up to limit stored runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.RunRecord, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.List(ctx, limit)
}

// Run returns one stored run.
func (s *Service) Run(ctx context.Context, id string) (history.RunRecord, error) {
	if ctx == nil {
		return history.RunRecord{}, ErrNilContext
	}
	if s.history == nil {
		return history.RunRecord{}, ErrHistoryDisabled
	}
	return s.history.Get(ctx, id)
}
