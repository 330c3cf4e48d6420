// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// stubDetector is a configurable detector for coordinator tests.
type stubDetector struct {
	name     string
	typ      model.IssueType
	priority int
	issues   []model.Issue
	err      error
	panicMsg string
}

func (s *stubDetector) Name() string               { return s.name }
func (s *stubDetector) IssueType() model.IssueType { return s.typ }
func (s *stubDetector) Priority() int              { return s.priority }
func (s *stubDetector) Detect(_ context.Context, _ *Input) ([]model.Issue, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.issues, s.err
}

func TestCoordinator_NilArguments(t *testing.T) {
	c := NewCoordinator()

	//nolint:staticcheck // nil context is the case under test
	_, err := c.Run(nil, NewInput(nil))
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = c.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}

func TestCoordinator_EmptyInput(t *testing.T) {
	res, err := NewCoordinator().Run(context.Background(), NewInput(nil))
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.RawIssues)
	assert.Len(t, res.DetectorResults, 6)
	assert.Empty(t, res.FailedDetectors())
}

func TestCoordinator_CycleSuppressesUnresolvedAndAnnotation(t *testing.T) {
	no := false
	a := consumer("A", dep("b", "B"))
	a.HasComponentAnnotation = &no
	b := consumer("B", dep("a", "A"), dep("x", "Missing"))

	res, err := NewCoordinator().Run(context.Background(), NewInput([]model.Component{a, b}))
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueTypeCircularDependency, res.Issues[0].Type)
	assert.Len(t, res.RawIssues, 3)
	assert.Equal(t, 2, res.Suppressed)
}

func TestCoordinator_SingletonConflictSupersedesAmbiguity(t *testing.T) {
	p1 := provider("a", "Clock", "")
	p1.IsSingleton = true
	p2 := provider("b", "Clock", "")
	p2.IsSingleton = true

	res, err := NewCoordinator().Run(context.Background(), NewInput([]model.Component{module("M", p1, p2)}))
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueTypeSingletonViolation, res.Issues[0].Type)
}

func TestCoordinator_KeepsIssueWithUnclaimedComponent(t *testing.T) {
	issues := []model.Issue{
		model.NewIssue(model.IssueTypeUnresolvedDependency, model.SeverityError, "A", "u"),
		model.NewIssue(model.IssueTypeAmbiguousProvider, model.SeverityError, "A,B", "amb"),
		model.NewIssue(model.IssueTypeCircularDependency, model.SeverityError, "A,C", "cyc"),
		model.NewIssue(model.IssueTypeMissingComponentAnnotation, model.SeverityWarning, "", "orphan"),
	}

	kept := Deduplicate(issues)
	require.Len(t, kept, 3)
	assert.Equal(t, model.IssueTypeCircularDependency, kept[0].Type)
	assert.Equal(t, model.IssueTypeAmbiguousProvider, kept[1].Type, "B was still unclaimed")
	assert.Equal(t, "orphan", kept[2].Message)
	assert.Len(t, issues, 4, "input must not be modified")
}

func TestCoordinator_FailuresAreIsolated(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubDetector{name: "boom", typ: model.IssueTypeCircularDependency, priority: 1, panicMsg: "kaboom"})
	reg.Register(&stubDetector{name: "err", typ: model.IssueTypeAmbiguousProvider, priority: 1, err: errors.New("bad facts")})
	reg.Register(&stubDetector{
		name: "rogue", typ: model.IssueTypeAmbiguousProvider, priority: 2,
		issues: []model.Issue{{Type: model.IssueType("BOGUS"), ComponentName: "Z"}},
	})
	reg.Register(&stubDetector{
		name: "ok", typ: model.IssueTypeUnresolvedDependency, priority: 2,
		issues: []model.Issue{model.NewIssue(model.IssueTypeUnresolvedDependency, model.SeverityError, "A", "u")},
	})

	res, err := NewCoordinator(WithRegistry(reg)).Run(context.Background(), NewInput(nil))
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "A", res.Issues[0].ComponentName)
	assert.Equal(t, []string{"boom", "err", "rogue"}, res.FailedDetectors())

	byName := make(map[string]DetectorResult)
	for _, dr := range res.DetectorResults {
		byName[dr.Name] = dr
	}
	assert.Contains(t, byName["boom"].Error, ErrDetectorPanic.Error())
	assert.Contains(t, byName["boom"].Error, "kaboom")
	assert.Equal(t, "bad facts", byName["err"].Error)
	assert.Contains(t, byName["rogue"].Error, "BOGUS")
	assert.True(t, byName["ok"].Success)
	assert.Equal(t, 1, byName["ok"].IssueCount)
}

func TestCoordinator_CancelledContextSkipsDetectors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewCoordinator().Run(ctx, NewInput(nil))
	require.NoError(t, err)
	for _, dr := range res.DetectorResults {
		assert.True(t, dr.Skipped, dr.Name)
		assert.False(t, dr.Success, dr.Name)
	}
}

func TestCoordinator_ParallelMatchesSequential(t *testing.T) {
	components := realisticComponents(120)

	seq, err := NewCoordinator().Run(context.Background(), NewInput(components))
	require.NoError(t, err)
	par, err := NewCoordinator(WithParallelDetectors(true)).Run(context.Background(), NewInput(components))
	require.NoError(t, err)

	assert.Equal(t, seq.Issues, par.Issues)
	assert.Equal(t, seq.RawIssues, par.RawIssues)
}

func TestCoordinator_Deterministic(t *testing.T) {
	components := realisticComponents(50)
	first, err := NewCoordinator().Run(context.Background(), NewInput(components))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewCoordinator().Run(context.Background(), NewInput(components))
		require.NoError(t, err)
		assert.Equal(t, first.Issues, again.Issues)
	}
}

func TestCoordinator_LargeSnapshotIsFast(t *testing.T) {
	components := realisticComponents(500)
	start := time.Now()
	res, err := NewCoordinator().Run(context.Background(), NewInput(components))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Issues)
	assert.Less(t, time.Since(start), time.Second)
}

// realisticComponents builds n services with a few seeded defects: a
// mutual pair, a duplicate provider and a qualifier typo.
func realisticComponents(n int) []model.Component {
	out := make([]model.Component, 0, n+3)
	for i := 0; i < n; i++ {
		c := model.Component{ClassName: fmt.Sprintf("Service%03d", i), PackageName: "com.acme"}
		if i+1 < n {
			c.Dependencies = append(c.Dependencies, dep("next", fmt.Sprintf("Service%03d", i+1)))
		}
		c.Dependencies = append(c.Dependencies, named("db", "DatabaseService", "primary"))
		out = append(out, c)
	}
	out = append(out,
		consumer("Left", dep("r", "Right")),
		consumer("Right", dep("l", "Left")),
		model.Component{ClassName: "DbModule", PackageName: "com.acme", Providers: []model.Provider{
			provider("primaryDb", "DatabaseService", "primary"),
			provider("cache1", "Cache", ""),
			provider("cache2", "Cache", ""),
		}},
		consumer("Typo", named("db", "DatabaseService", "primery")),
	)
	return out
}
