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
	"sort"

	"github.com/AleutianAI/AleutianDI/services/di/graph"
	"github.com/AleutianAI/AleutianDI/services/di/index"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Detector finds one kind of structural defect.
//
// # Description
//
// Detectors are independent passes over a read-only Input. They never
// deduplicate against each other; the Coordinator does that.
//
// # Priority Groups
//
// Detectors are grouped by Priority (lower = earlier). Groups run in
// order; detectors inside a group may run in parallel when the
// coordinator is configured with WithParallelDetectors.
//
// # Implementation Requirements
//
//   - Must be deterministic for a given Input
//   - Must not mutate the Input
//   - Should return ctx.Err() when the context is done
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Detector interface {
	// Name returns a short, lowercase identifier for logs and metrics.
	Name() string

	// IssueType is the type of every issue the detector emits.
	IssueType() model.IssueType

	// Priority is the execution group (1 = first).
	Priority() int

	// Detect returns the raw issues found in the input.
	Detect(ctx context.Context, in *Input) ([]model.Issue, error)
}

// Input is everything a detector may read during one run.
//
// # Thread Safety
//
// Read-only after construction. Safe for concurrent access.
type Input struct {
	// Components is the component snapshot.
	Components []model.Component

	// Graph is the dependency graph built from Components.
	Graph *graph.DependencyGraph

	// Index is the provider index built from Components.
	Index *index.ProviderIndex
}

// NewInput builds the graph and provider index for a component snapshot.
func NewInput(components []model.Component) *Input {
	return &Input{
		Components: components,
		Graph:      graph.BuildGraph(components),
		Index:      index.Build(components),
	}
}

// DetectorResult captures the outcome of running a detector.
//
// # Description
//
// Used by the Coordinator to report which detectors succeeded, failed
// or were skipped. A failed detector contributes no issues.
type DetectorResult struct {
	// Name is the detector's identifier.
	Name string `json:"name"`

	// Success indicates the detector completed without error.
	Success bool `json:"success"`

	// Error contains the error message if Success is false.
	Error string `json:"error,omitempty"`

	// DurationMs is how long the detector took in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// IssueCount is the number of raw issues the detector returned.
	IssueCount int `json:"issueCount"`

	// Skipped indicates the detector did not run (e.g. context cancelled).
	Skipped bool `json:"skipped,omitempty"`

	// SkipReason explains why the detector was skipped.
	SkipReason string `json:"skipReason,omitempty"`
}

// Registry manages a collection of detectors.
//
// # Thread Safety
//
// Safe for concurrent reads after construction. Registration during a
// run is not supported.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make([]Detector, 0, 8),
	}
}

// DefaultRegistry returns a registry holding every built-in detector.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewCircularDependencyDetector())
	r.Register(NewSingletonViolationDetector())
	r.Register(NewAmbiguousProviderDetector())
	r.Register(NewQualifierMismatchDetector())
	r.Register(NewUnresolvedDependencyDetector())
	r.Register(NewMissingAnnotationDetector())
	return r
}

// Register adds a detector to the registry.
//
// # Panics
//
// Panics if detector is nil.
func (r *Registry) Register(detector Detector) {
	if detector == nil {
		panic("detector must not be nil")
	}
	r.detectors = append(r.detectors, detector)
}

// All returns a copy of the registered detectors in registration order.
func (r *Registry) All() []Detector {
	out := make([]Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	return len(r.detectors)
}

// ByPriority groups detectors by priority, keeping registration order
// inside each group.
func (r *Registry) ByPriority() map[int][]Detector {
	out := make(map[int][]Detector)
	for _, d := range r.detectors {
		p := d.Priority()
		out[p] = append(out[p], d)
	}
	return out
}

// SortedPriorities returns the distinct priorities in ascending order.
func (r *Registry) SortedPriorities() []int {
	seen := make(map[int]bool)
	for _, d := range r.detectors {
		seen[d.Priority()] = true
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
