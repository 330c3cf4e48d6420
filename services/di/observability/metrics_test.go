// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzerMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalyzerMetrics(reg)

	m.ObserveAnalysis("cli", 10*time.Millisecond, 120, nil)
	m.ObserveAnalysis("http", time.Millisecond, 0, errors.New("bad input"))
	m.ObserveIssue("CIRCULAR_DEPENDENCY", "VALIDATED_TRUE_POSITIVE")
	m.ObserveIssue("CIRCULAR_DEPENDENCY", "VALIDATED_TRUE_POSITIVE")
	m.ObserveDetectorFailure("qualifier_mismatch")
	m.SetAccuracy(0.9, 0.85)
	m.ObserveRequest("/v1/di/analyze", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("cli", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("http", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("CIRCULAR_DEPENDENCY", "VALIDATED_TRUE_POSITIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetectorFailuresTotal.WithLabelValues("qualifier_mismatch")))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.Precision))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/v1/di/analyze", "200")))
}

func TestAnalyzerMetrics_NilSafe(t *testing.T) {
	var m *AnalyzerMetrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("cli", time.Second, 1, nil)
		m.ObserveIssue("x", "y")
		m.ObserveDetectorFailure("d")
		m.SetAccuracy(1, 1)
		m.ObserveRequest("/", 200)
	})
}
