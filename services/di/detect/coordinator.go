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
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Coordinator runs detectors and deduplicates their issues per component.
//
// # Description
//
// The coordinator runs the registry's priority groups in order. A
// detector that returns an error, panics or emits an issue of unknown
// type is recorded as failed and contributes nothing; the remaining
// detectors still run. After all groups finish, issues are deduplicated
// so each component keeps only its highest-priority issue.
//
// # Thread Safety
//
// Safe for concurrent use. Run holds no state between calls.
type Coordinator struct {
	registry *Registry
	logger   *slog.Logger
	parallel bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRegistry replaces the default detector registry.
func WithRegistry(r *Registry) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger sets the logger used for detector failures.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithParallelDetectors runs the detectors of one priority group
// concurrently. Output order is unchanged.
func WithParallelDetectors(enabled bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.parallel = enabled
	}
}

// NewCoordinator creates a coordinator over DefaultRegistry unless
// WithRegistry says otherwise.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		registry: DefaultRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the coordinator's detector registry.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Result is the outcome of one coordinator run.
type Result struct {
	// Issues are the deduplicated issues, in priority order.
	Issues []model.Issue `json:"issues"`

	// RawIssues are every issue from every successful detector.
	RawIssues []model.Issue `json:"rawIssues"`

	// DetectorResults records each detector's outcome.
	DetectorResults []DetectorResult `json:"detectorResults"`

	// Suppressed is the number of raw issues removed by deduplication.
	Suppressed int `json:"suppressed"`
}

// FailedDetectors returns the names of detectors that did not succeed.
func (r *Result) FailedDetectors() []string {
	out := make([]string, 0)
	for _, dr := range r.DetectorResults {
		if !dr.Success {
			out = append(out, dr.Name)
		}
	}
	return out
}

// Run executes every registered detector against the input.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	in - The analysis input. Must not be nil.
//
// Outputs:
//
//	*Result - Deduplicated and raw issues plus per-detector outcomes.
//	error - ErrNilContext or ErrNilInput. Detector failures are not errors.
func (c *Coordinator) Run(ctx context.Context, in *Input) (*Result, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if in == nil {
		return nil, ErrNilInput
	}

	result := &Result{
		Issues:          make([]model.Issue, 0),
		RawIssues:       make([]model.Issue, 0),
		DetectorResults: make([]DetectorResult, 0, c.registry.Len()),
	}

	priorities := c.registry.SortedPriorities()
	byPriority := c.registry.ByPriority()

	for gi, priority := range priorities {
		if err := ctx.Err(); err != nil {
			for _, p := range priorities[gi:] {
				for _, d := range byPriority[p] {
					result.DetectorResults = append(result.DetectorResults, DetectorResult{
						Name:       d.Name(),
						Skipped:    true,
						SkipReason: err.Error(),
					})
				}
			}
			break
		}

		outcomes := c.runPriorityGroup(ctx, in, byPriority[priority])
		for _, o := range outcomes {
			result.DetectorResults = append(result.DetectorResults, o.result)
			result.RawIssues = append(result.RawIssues, o.issues...)
		}
	}

	result.Issues = Deduplicate(result.RawIssues)
	result.Suppressed = len(result.RawIssues) - len(result.Issues)
	return result, nil
}

type detectorOutcome struct {
	result DetectorResult
	issues []model.Issue
}

// runPriorityGroup runs one group, in parallel when configured.
func (c *Coordinator) runPriorityGroup(ctx context.Context, in *Input, detectors []Detector) []detectorOutcome {
	outcomes := make([]detectorOutcome, len(detectors))
	if !c.parallel || len(detectors) < 2 {
		for i, d := range detectors {
			outcomes[i] = c.runDetector(ctx, in, d)
		}
		return outcomes
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i, d := range detectors {
		g.Go(func() error {
			outcomes[i] = c.runDetector(gCtx, in, d)
			return nil // detector errors are non-fatal
		})
	}
	_ = g.Wait()
	return outcomes
}

// runDetector runs a single detector with panic isolation.
func (c *Coordinator) runDetector(ctx context.Context, in *Input, d Detector) (out detectorOutcome) {
	start := time.Now()
	out.result.Name = d.Name()

	defer func() {
		if r := recover(); r != nil {
			out.issues = nil
			out.result.Success = false
			out.result.IssueCount = 0
			out.result.Error = fmt.Errorf("%w: %s: %v", ErrDetectorPanic, d.Name(), r).Error()
			out.result.DurationMs = time.Since(start).Milliseconds()
			c.logger.Error("detector panicked",
				slog.String("detector", d.Name()),
				slog.Any("panic", r),
			)
		}
	}()

	issues, err := d.Detect(ctx, in)
	if err == nil {
		for _, is := range issues {
			if !is.Type.Valid() {
				err = fmt.Errorf("%w: %q from %s", ErrUnexpectedIssue, is.Type, d.Name())
				break
			}
		}
	}
	out.result.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		out.result.Error = err.Error()
		c.logger.Warn("detector failed",
			slog.String("detector", d.Name()),
			slog.String("error", err.Error()),
		)
		return out
	}

	out.result.Success = true
	out.result.IssueCount = len(issues)
	out.issues = issues
	return out
}

// Deduplicate keeps the highest-priority issue per component.
//
// Description:
//
//	Issues are visited in issue-type priority order (stable within a
//	type). An issue is kept when at least one of its components has not
//	been claimed by an earlier issue; a kept issue then claims all of its
//	components. Issues naming no component are always kept.
//
// Inputs:
//
//	issues - Raw issues. Not modified.
//
// Outputs:
//
//	[]model.Issue - Kept issues in priority order. Never nil.
func Deduplicate(issues []model.Issue) []model.Issue {
	ordered := make([]model.Issue, len(issues))
	copy(ordered, issues)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].Type) < rank(ordered[j].Type)
	})

	claimed := make(map[string]bool)
	out := make([]model.Issue, 0, len(ordered))
	for _, is := range ordered {
		comps := is.Components()
		if len(comps) == 0 {
			out = append(out, is)
			continue
		}
		fresh := false
		for _, id := range comps {
			if !claimed[id] {
				fresh = true
				break
			}
		}
		if !fresh {
			continue
		}
		for _, id := range comps {
			claimed[id] = true
		}
		out = append(out, is)
	}
	return out
}

// rank orders unknown types after every known type.
func rank(t model.IssueType) int {
	p, err := t.Priority()
	if err != nil {
		return math.MaxInt
	}
	return p
}
