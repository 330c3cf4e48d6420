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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/model"
	"github.com/AleutianAI/AleutianDI/services/di/observability"
	"github.com/AleutianAI/AleutianDI/services/di/stats"
	"github.com/AleutianAI/AleutianDI/services/di/validation"
)

// sampleComponents has a mutual cycle, a duplicated provider and a
// qualifier typo.
func sampleComponents() []model.Component {
	yes := true
	return []model.Component{
		{ClassName: "A", HasComponentAnnotation: &yes, Dependencies: []model.Dependency{{PropertyName: "b", TargetType: "B"}}},
		{ClassName: "B", HasComponentAnnotation: &yes, Dependencies: []model.Dependency{{PropertyName: "a", TargetType: "A"}}},
		{ClassName: "DbModule", Providers: []model.Provider{
			{MethodName: "cacheA", ReturnType: "Cache"},
			{MethodName: "cacheB", ReturnType: "Cache"},
			{MethodName: "primaryDb", ReturnType: "Db", NamedQualifier: "primary"},
		}},
		{ClassName: "Repo", HasComponentAnnotation: &yes, Dependencies: []model.Dependency{
			{PropertyName: "db", TargetType: "Db", NamedQualifier: "primery"},
		}},
	}
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	return NewService(DefaultServiceConfig(), opts...)
}

func TestService_Analyze(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Analyze(context.Background(), AnalyzeRequest{Components: sampleComponents()}, SourceCLI)
	require.NoError(t, err)

	types := make(map[model.IssueType]int)
	for _, is := range res.Issues {
		types[is.Type]++
		assert.NotEqual(t, model.ValidationNotValidated, is.ValidationStatus)
	}
	assert.Equal(t, 1, types[model.IssueTypeCircularDependency])
	assert.Equal(t, 1, types[model.IssueTypeAmbiguousProvider])
	assert.Equal(t, 1, types[model.IssueTypeNamedQualifierMismatch])

	assert.Equal(t, 4, res.GraphStats.NodeCount)
	assert.Equal(t, 1, res.Cycles.TotalCycles)
	assert.Equal(t, 3, res.Metrics.ExpectedIssues)
	assert.Contains(t, res.Report, "Precision:")
	assert.Nil(t, res.Trend)
	assert.Empty(t, res.RunID)
}

func TestService_Analyze_Empty(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Analyze(context.Background(), AnalyzeRequest{}, SourceHTTP)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Zero(t, res.Precision)
	assert.Len(t, res.DetectorResults, 6)
}

func TestService_Analyze_CleanRunReportsValidationEnabled(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Analyze(context.Background(), AnalyzeRequest{Components: []model.Component{
		{ClassName: "Service", Dependencies: []model.Dependency{{PropertyName: "repo", TargetType: "Repo"}}},
		{ClassName: "Repo"},
	}}, SourceCLI)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.True(t, res.Metrics.ValidationEnabled)
	assert.Contains(t, res.Report, "Validation: enabled")
}

func TestService_Analyze_ExpectedOverride(t *testing.T) {
	svc := newTestService(t)
	expected := 10
	res, err := svc.Analyze(context.Background(), AnalyzeRequest{Components: sampleComponents(), ExpectedIssues: &expected}, SourceCLI)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Metrics.ExpectedIssues)
	assert.Equal(t, 10-res.Metrics.TruePositives, res.Metrics.FalseNegatives)
}

func TestService_Analyze_ValidationDisabled(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Components: sampleComponents(),
		Validation: &validation.Settings{Enabled: false},
	}, SourceCLI)
	require.NoError(t, err)
	for _, is := range res.Issues {
		assert.Equal(t, model.ValidationNotValidated, is.ValidationStatus)
	}
	assert.False(t, res.Metrics.ValidationEnabled)
}

func TestService_Analyze_Errors(t *testing.T) {
	svc := newTestService(t)

	//nolint:staticcheck // nil context is the case under test
	_, err := svc.Analyze(nil, AnalyzeRequest{}, SourceCLI)
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Components: []model.Component{{ClassName: "A"}, {ClassName: "A"}}}, SourceCLI)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bad := validation.DefaultConfidenceWeights()
	bad.CycleConfirmed = 2
	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Validation: &validation.Settings{Enabled: true, Weights: &bad}}, SourceCLI)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents()}, SourceCLI)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_HistoryAndTrend(t *testing.T) {
	store, err := history.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	svc := newTestService(t, WithHistory(store))
	ctx := context.Background()

	first, err := svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents(), Label: "first"}, SourceCLI)
	require.NoError(t, err)
	require.NotNil(t, first.Trend)
	assert.False(t, first.Trend.HasComparison)
	assert.NotEmpty(t, first.RunID)

	second, err := svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents(), Label: "second"}, SourceCLI)
	require.NoError(t, err)
	require.NotNil(t, second.Trend)
	assert.True(t, second.Trend.HasComparison)
	assert.Equal(t, stats.TrendStable, second.Trend.Trend)
	assert.Contains(t, second.Report, "Trend vs Previous Run:")

	skipped, err := svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents(), SkipHistory: true}, SourceCLI)
	require.NoError(t, err)
	assert.Empty(t, skipped.RunID)

	runs, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Label)
	assert.Equal(t, 1, runs[0].IssueCounts[model.IssueTypeCircularDependency])

	run, err := svc.Run(ctx, first.RunID)
	require.NoError(t, err)
	assert.Equal(t, "first", run.Label)

	better := second.Metrics
	better.TruePositives++
	better.FalsePositives = 0
	trend, err := svc.Trend(ctx, TrendRequest{Current: better})
	require.NoError(t, err)
	assert.True(t, trend.HasComparison)
}

func TestService_Record(t *testing.T) {
	store, err := history.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	svc := newTestService(t, WithHistory(store))
	ctx := context.Background()

	res, err := svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents(), Label: "a", SkipHistory: true}, SourceCLI)
	require.NoError(t, err)
	require.Nil(t, res.Trend)
	assert.NotContains(t, res.Report, "Trend vs Previous Run:")

	require.NoError(t, svc.Record(ctx, res, len(sampleComponents())))
	assert.NotEmpty(t, res.RunID)
	require.NotNil(t, res.Trend)
	assert.False(t, res.Trend.HasComparison)
	assert.Contains(t, res.Report, "Trend vs Previous Run:")

	assert.ErrorIs(t, svc.Record(ctx, nil, 0), ErrInvalidRequest)
	assert.ErrorIs(t, newTestService(t).Record(ctx, res, 1), ErrHistoryDisabled)
}

func TestService_ConcurrentAnalyzeRecordsEveryRun(t *testing.T) {
	store, err := history.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	svc := newTestService(t, WithHistory(store))
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*AnalysisResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Analyze(ctx, AnalyzeRequest{Components: sampleComponents()}, SourceHTTP)
			if assert.NoError(t, err) {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	// Latest then Save is serialized, so exactly one run saw no predecessor.
	first := 0
	for _, res := range results {
		require.NotNil(t, res)
		require.NotNil(t, res.Trend)
		if !res.Trend.HasComparison {
			first++
		}
	}
	assert.Equal(t, 1, first)

	runs, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, n)
}

func TestService_HistoryDisabled(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.History(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.Run(context.Background(), "x")
	assert.ErrorIs(t, err, ErrHistoryDisabled)

	trend, err := svc.Trend(context.Background(), TrendRequest{})
	require.NoError(t, err)
	assert.False(t, trend.HasComparison)
}

func TestService_Metrics(t *testing.T) {
	m := observability.NewAnalyzerMetrics(prometheus.NewRegistry())
	svc := newTestService(t, WithMetrics(m))

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Components: sampleComponents()}, SourceWatch)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(SourceWatch, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues(
		string(model.IssueTypeCircularDependency), string(model.ValidationTruePositive))))
}
