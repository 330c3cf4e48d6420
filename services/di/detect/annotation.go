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

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// MissingAnnotationDetector reports classes that declare dependencies but
// are known not to be registered as components.
type MissingAnnotationDetector struct{}

// NewMissingAnnotationDetector creates the annotation detector.
func NewMissingAnnotationDetector() *MissingAnnotationDetector {
	return &MissingAnnotationDetector{}
}

// Name implements Detector.
func (d *MissingAnnotationDetector) Name() string { return "missing_component_annotation" }

// IssueType implements Detector.
func (d *MissingAnnotationDetector) IssueType() model.IssueType {
	return model.IssueTypeMissingComponentAnnotation
}

// Priority implements Detector.
func (d *MissingAnnotationDetector) Priority() int { return 2 }

// Detect emits a WARNING for each class with dependencies whose component
// annotation is reported absent. Unreported annotations are skipped.
func (d *MissingAnnotationDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0)
	for _, c := range in.Components {
		if len(c.Dependencies) == 0 || c.HasComponentAnnotation == nil || *c.HasComponentAnnotation {
			continue
		}
		msg := fmt.Sprintf("'%s' declares %d injected dependencies but is not annotated as a component; they will never be injected",
			c.ID(), len(c.Dependencies))
		issue := model.NewIssue(d.IssueType(), model.SeverityWarning, c.ID(), msg)
		issue.SuggestedFix = fmt.Sprintf("Annotate '%s' with @Component or remove its injection annotations.", c.ClassName)
		issues = append(issues, issue)
	}
	return issues, nil
}
