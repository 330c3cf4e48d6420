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

	"github.com/AleutianAI/AleutianDI/services/di/index"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Violation kinds reported in the violationKind metadata.
const (
	ViolationConflictingSingletons = "conflicting_singletons"
	ViolationLifecycleMismatch     = "lifecycle_mismatch"
)

// SingletonViolationDetector reports conflicting singleton providers and
// singleton dependencies served by non-singleton providers.
type SingletonViolationDetector struct{}

// NewSingletonViolationDetector creates the singleton detector.
func NewSingletonViolationDetector() *SingletonViolationDetector {
	return &SingletonViolationDetector{}
}

// Name implements Detector.
func (d *SingletonViolationDetector) Name() string { return "singleton_violation" }

// IssueType implements Detector.
func (d *SingletonViolationDetector) IssueType() model.IssueType {
	return model.IssueTypeSingletonViolation
}

// Priority implements Detector.
func (d *SingletonViolationDetector) Priority() int { return 2 }

// Detect runs both singleton checks.
//
// Description:
//
//  1. Buckets with more than one singleton provider are ERRORs.
//  2. A singleton dependency resolving to exactly one provider that is not
//     a singleton is a WARNING. Dependencies resolving to no provider or to
//     several are left to the other detectors.
func (d *SingletonViolationDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0)

	groups := in.Index.Groups(func(r index.ProviderRef) bool {
		return r.Provider.IsSingleton && !r.Provider.IsMultiBinding()
	})
	for _, g := range groups {
		msg := fmt.Sprintf("Multiple singleton providers: %d singletons for type '%s'", len(g.Providers), g.Key.Type)
		if g.Key.Qualifier != "" {
			msg += fmt.Sprintf(" with qualifier '%s'", g.Key.Qualifier)
		}
		issue := model.NewIssue(d.IssueType(), model.SeverityError, owningComponents(g), msg)
		issue.SuggestedFix = fmt.Sprintf("Keep a single @Singleton provider for '%s' or qualify them distinctly.", g.Key.Type)
		issue.Metadata[model.MetaViolationKind] = ViolationConflictingSingletons
		issue.Metadata[model.MetaProviderCount] = len(g.Providers)
		issue.Metadata[model.MetaProviders] = g.References()
		issue.Metadata[model.MetaEffectiveType] = g.Key.Type
		issue.Metadata[model.MetaQualifier] = g.Key.Qualifier
		issues = append(issues, issue)
	}

	for _, c := range in.Components {
		for _, dep := range c.Dependencies {
			if !dep.IsSingleton {
				continue
			}
			matches := in.Index.Lookup(dep.TargetType, dep.NamedQualifier)
			if len(matches) != 1 || matches[0].Provider.IsSingleton {
				continue
			}
			provider := matches[0]

			msg := fmt.Sprintf("Singleton dependency '%s' of type '%s' in '%s' is provided by non-singleton '%s'",
				dep.PropertyName, dep.TargetType, c.ID(), provider.String())
			issue := model.NewIssue(d.IssueType(), model.SeverityWarning, c.ID(), msg)
			issue.SuggestedFix = fmt.Sprintf("Mark provider '%s' as @Singleton or drop the singleton requirement on '%s'.",
				provider.String(), dep.PropertyName)
			issue.Metadata[model.MetaViolationKind] = ViolationLifecycleMismatch
			issue.Metadata[model.MetaTargetType] = dep.TargetType
			issue.Metadata[model.MetaPropertyName] = dep.PropertyName
			issue.Metadata[model.MetaQualifier] = dep.NamedQualifier
			issue.Metadata[model.MetaRequester] = c.ID()
			issue.Metadata[model.MetaProviders] = []string{provider.String()}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}
