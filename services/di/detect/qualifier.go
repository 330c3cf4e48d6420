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

// QualifierMismatchDetector reports qualified dependencies with no exact
// provider while the type is provided under other qualifiers.
//
// A type with no providers at all is left to UnresolvedDependencyDetector.
type QualifierMismatchDetector struct{}

// NewQualifierMismatchDetector creates the qualifier detector.
func NewQualifierMismatchDetector() *QualifierMismatchDetector {
	return &QualifierMismatchDetector{}
}

// Name implements Detector.
func (d *QualifierMismatchDetector) Name() string { return "qualifier_mismatch" }

// IssueType implements Detector.
func (d *QualifierMismatchDetector) IssueType() model.IssueType {
	return model.IssueTypeNamedQualifierMismatch
}

// Priority implements Detector.
func (d *QualifierMismatchDetector) Priority() int { return 2 }

// Detect emits one ERROR per mismatched qualified dependency, with ranked
// suggestions drawn from the type's available qualifiers.
func (d *QualifierMismatchDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0)
	for _, c := range in.Components {
		for _, dep := range c.Dependencies {
			if !dep.HasQualifier() {
				continue
			}
			if len(in.Index.Lookup(dep.TargetType, dep.NamedQualifier)) > 0 {
				continue
			}
			if len(in.Index.ForType(dep.TargetType)) == 0 {
				continue
			}

			available := in.Index.Qualifiers(dep.TargetType)
			ranked := RankSuggestions(dep.NamedQualifier, available)
			suggestions := make([]string, 0, len(ranked))
			for _, s := range ranked {
				suggestions = append(suggestions, s.Value)
			}

			var msg, fix string
			best := 0.0
			if len(ranked) > 0 {
				best = ranked[0].Score
				msg = fmt.Sprintf("No provider for '%s' with qualifier '%s' in '%s'. Did you mean: '%s'?",
					dep.TargetType, dep.NamedQualifier, c.ID(), ranked[0].Value)
				fix = fmt.Sprintf("Change the qualifier of '%s' from '%s' to an available one. Did you mean: '%s'?",
					dep.PropertyName, dep.NamedQualifier, ranked[0].Value)
			} else {
				msg = fmt.Sprintf("No provider for '%s' with qualifier '%s' in '%s'; only unqualified providers exist",
					dep.TargetType, dep.NamedQualifier, c.ID())
				fix = fmt.Sprintf("Remove the qualifier '%s' from '%s' or add a provider qualified '%s'.",
					dep.NamedQualifier, dep.PropertyName, dep.NamedQualifier)
			}

			issue := model.NewIssue(d.IssueType(), model.SeverityError, c.ID(), msg)
			issue.SuggestedFix = fix
			issue.Metadata[model.MetaSuggestions] = suggestions
			issue.Metadata[model.MetaAvailableQualifiers] = available
			issue.Metadata[model.MetaRequestedQualifier] = dep.NamedQualifier
			issue.Metadata[model.MetaTargetType] = dep.TargetType
			issue.Metadata[model.MetaPropertyName] = dep.PropertyName
			issue.Metadata[model.MetaBestSimilarity] = best
			issues = append(issues, issue)
		}
	}
	return issues, nil
}
