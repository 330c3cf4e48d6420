// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability defines the Prometheus metrics exported by the DI
// analyzer service.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "aleutian"
	diSubsystem      = "di"
)

// AnalyzerMetrics groups the analyzer's Prometheus collectors.
type AnalyzerMetrics struct {
	// AnalysesTotal counts analyses by source (cli, http, watch) and status.
	AnalysesTotal *prometheus.CounterVec

	// AnalysisDurationSeconds is the end-to-end pipeline latency.
	AnalysisDurationSeconds *prometheus.HistogramVec

	// ComponentsAnalyzed is the size of each analyzed component set.
	ComponentsAnalyzed prometheus.Histogram

	// IssuesTotal counts reported issues by type and validation status.
	IssuesTotal *prometheus.CounterVec

	// DetectorFailuresTotal counts detectors that errored or panicked.
	DetectorFailuresTotal *prometheus.CounterVec

	// Precision and F1Score hold the values of the latest run.
	Precision prometheus.Gauge
	F1Score   prometheus.Gauge

	// HTTPRequestsTotal counts API requests by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewAnalyzerMetrics registers the collectors with reg. A nil reg uses
// the default registry.
func NewAnalyzerMetrics(reg prometheus.Registerer) *AnalyzerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &AnalyzerMetrics{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "analyses_total",
				Help:      "Total analyses by source and status",
			},
			[]string{"source", "status"},
		),
		AnalysisDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "analysis_duration_seconds",
				Help:      "Analysis pipeline duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"source"},
		),
		ComponentsAnalyzed: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "components_analyzed",
				Help:      "Number of components per analysis",
				Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
			},
		),
		IssuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "issues_total",
				Help:      "Reported issues by type and validation status",
			},
			[]string{"type", "validation"},
		),
		DetectorFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "detector_failures_total",
				Help:      "Detectors that failed during analysis",
			},
			[]string{"detector"},
		),
		Precision: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "precision",
				Help:      "Precision of the latest analysis",
			},
		),
		F1Score: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "f1_score",
				Help:      "F1 score of the latest analysis",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: diSubsystem,
				Name:      "http_requests_total",
				Help:      "API requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// ObserveAnalysis records one finished analysis.
func (m *AnalyzerMetrics) ObserveAnalysis(source string, d time.Duration, components int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.AnalysesTotal.WithLabelValues(source, status).Inc()
	m.AnalysisDurationSeconds.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.ComponentsAnalyzed.Observe(float64(components))
	}
}

// ObserveIssue counts one reported issue.
func (m *AnalyzerMetrics) ObserveIssue(issueType, validation string) {
	if m == nil {
		return
	}
	m.IssuesTotal.WithLabelValues(issueType, validation).Inc()
}

// ObserveDetectorFailure counts one failed detector.
func (m *AnalyzerMetrics) ObserveDetectorFailure(detector string) {
	if m == nil {
		return
	}
	m.DetectorFailuresTotal.WithLabelValues(detector).Inc()
}

// SetAccuracy publishes the latest precision and F1 score.
func (m *AnalyzerMetrics) SetAccuracy(precision, f1 float64) {
	if m == nil {
		return
	}
	m.Precision.Set(precision)
	m.F1Score.Set(f1)
}

// ObserveRequest counts one HTTP request.
func (m *AnalyzerMetrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
