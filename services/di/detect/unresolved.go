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

// UnresolvedDependencyDetector reports dependencies nothing can satisfy.
//
// A qualified dependency is unresolved when its type has no provider under
// any qualifier. An unqualified dependency is unresolved when there is no
// default-bucket provider and no component class of that type.
type UnresolvedDependencyDetector struct{}

// NewUnresolvedDependencyDetector creates the unresolved detector.
func NewUnresolvedDependencyDetector() *UnresolvedDependencyDetector {
	return &UnresolvedDependencyDetector{}
}

// Name implements Detector.
func (d *UnresolvedDependencyDetector) Name() string { return "unresolved_dependency" }

// IssueType implements Detector.
func (d *UnresolvedDependencyDetector) IssueType() model.IssueType {
	return model.IssueTypeUnresolvedDependency
}

// Priority implements Detector.
func (d *UnresolvedDependencyDetector) Priority() int { return 2 }

// Detect emits one ERROR per unresolved dependency.
func (d *UnresolvedDependencyDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0)
	for _, c := range in.Components {
		for _, dep := range c.Dependencies {
			anyProvider := len(in.Index.ForType(dep.TargetType)) > 0

			var available []string
			if dep.HasQualifier() {
				if anyProvider {
					continue
				}
			} else {
				if in.Index.HasUnqualified(dep.TargetType) || in.Index.HasComponent(dep.TargetType) {
					continue
				}
				if anyProvider {
					available = in.Index.Qualifiers(dep.TargetType)
				}
			}

			msg := fmt.Sprintf("Unresolved dependency '%s' of type '%s' in '%s'", dep.PropertyName, dep.TargetType, c.ID())
			fix := fmt.Sprintf("Add a provider for '%s' or register an implementation as a component.", dep.TargetType)
			if len(available) > 0 {
				msg += fmt.Sprintf("; only qualified providers exist (%d)", len(available))
				fix = fmt.Sprintf("Add a qualifier to '%s' matching one of the available providers or add an unqualified provider for '%s'.",
					dep.PropertyName, dep.TargetType)
			}

			issue := model.NewIssue(d.IssueType(), model.SeverityError, c.ID(), msg)
			issue.SuggestedFix = fix
			issue.Metadata[model.MetaTargetType] = dep.TargetType
			issue.Metadata[model.MetaPropertyName] = dep.PropertyName
			issue.Metadata[model.MetaQualifier] = dep.NamedQualifier
			issue.Metadata[model.MetaRequester] = c.ID()
			if len(available) > 0 {
				issue.Metadata[model.MetaAvailableQualifiers] = available
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}
