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
	"strings"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// maxErrorCycleLength is the longest cycle reported as ERROR. Direct
// mutual dependencies and self-loops always fail at construction time.
const maxErrorCycleLength = 2

// CircularDependencyDetector reports one issue per dependency cycle.
type CircularDependencyDetector struct{}

// NewCircularDependencyDetector creates the cycle detector.
func NewCircularDependencyDetector() *CircularDependencyDetector {
	return &CircularDependencyDetector{}
}

// Name implements Detector.
func (d *CircularDependencyDetector) Name() string { return "circular_dependency" }

// IssueType implements Detector.
func (d *CircularDependencyDetector) IssueType() model.IssueType {
	return model.IssueTypeCircularDependency
}

// Priority implements Detector. Graph detectors run first.
func (d *CircularDependencyDetector) Priority() int { return 1 }

// Detect emits one issue per cycle. The issue names every member of the
// strongly connected component so deduplication claims all of them, even
// members the reconstructed path does not pass through.
//
// Cycles arrive longest first, so when the coordinator deduplicates the
// most representative cycle of a component is the one kept.
func (d *CircularDependencyDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cycles := in.Graph.FindCycles()
	issues := make([]model.Issue, 0, len(cycles))
	for _, c := range cycles {
		severity := model.SeverityWarning
		if c.Length() <= maxErrorCycleLength {
			severity = model.SeverityError
		}

		var msg string
		if c.IsSelfLoop() {
			msg = fmt.Sprintf("Component '%s' depends on itself", c.Nodes[0])
		} else if c.SCCSize > c.Length() {
			msg = fmt.Sprintf("Circular dependency of %d components: %s (strongly connected with %s)",
				c.Length(), c.Path(), strings.Join(c.Members, ", "))
		} else {
			msg = fmt.Sprintf("Circular dependency of %d components: %s", c.Length(), c.Path())
		}

		members := c.Members
		if len(members) == 0 {
			members = c.Nodes
		}
		issue := model.NewIssue(d.IssueType(), severity, model.JoinComponents(members), msg)
		issue.SuggestedFix = "Extract an interface for one of the components or introduce a mediator " +
			"so that the dependency chain no longer closes on itself."
		issue.Metadata[model.MetaCycleLength] = c.Length()
		issue.Metadata[model.MetaCyclePath] = c.Path()
		issue.Metadata[model.MetaCycleNodes] = append([]string(nil), c.Nodes...)
		issue.Metadata[model.MetaSCCSize] = c.SCCSize
		issue.Metadata[model.MetaSCCMembers] = append([]string(nil), members...)
		issue.Metadata[model.MetaLazyEdges] = c.LazyEdges
		issues = append(issues, issue)
	}
	return issues, nil
}
