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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
)

const instrumentationName = "aleutian.di"

var meter = otel.Meter(instrumentationName)

var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter
	issuesFound    metric.Int64Counter
	cyclesFound    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"di_analyze_duration_seconds",
			metric.WithDescription("Duration of DI analysis runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"di_analyze_total",
			metric.WithDescription("Total number of DI analysis runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesFound, err = meter.Int64Counter(
			"di_issues_found_total",
			metric.WithDescription("Issues reported after deduplication"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cyclesFound, err = meter.Int64Histogram(
			"di_cycles_per_analysis",
			metric.WithDescription("Dependency cycles found per analysis"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordAnalyzeMetrics(ctx context.Context, source string, duration time.Duration, issues, cycles int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	)
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)

	if success {
		issuesFound.Add(ctx, int64(issues), metric.WithAttributes(attribute.String("source", source)))
		cyclesFound.Record(ctx, int64(cycles))
	}
}

func startAnalyzeSpan(ctx context.Context, source string, components int) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, instrumentationName, "Service.Analyze",
		trace.WithAttributes(
			attribute.String("di.source", source),
			attribute.Int("di.component_count", components),
		),
	)
}

func setAnalyzeSpanResult(span trace.Span, result *AnalysisResult) {
	span.SetAttributes(
		attribute.Int("di.node_count", result.GraphStats.NodeCount),
		attribute.Int("di.edge_count", result.GraphStats.EdgeCount),
		attribute.Int("di.issue_count", len(result.Issues)),
		attribute.Int("di.suppressed", result.Suppressed),
		attribute.Float64("di.precision", result.Precision),
	)
}

func startStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, instrumentationName, "Service.Analyze."+stage)
}
