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
	"sort"

	"github.com/AleutianAI/AleutianDI/services/di/index"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// AmbiguousProviderDetector reports (type, qualifier) buckets served by
// more than one non-multibinding provider.
type AmbiguousProviderDetector struct{}

// NewAmbiguousProviderDetector creates the ambiguity detector.
func NewAmbiguousProviderDetector() *AmbiguousProviderDetector {
	return &AmbiguousProviderDetector{}
}

// Name implements Detector.
func (d *AmbiguousProviderDetector) Name() string { return "ambiguous_provider" }

// IssueType implements Detector.
func (d *AmbiguousProviderDetector) IssueType() model.IssueType {
	return model.IssueTypeAmbiguousProvider
}

// Priority implements Detector.
func (d *AmbiguousProviderDetector) Priority() int { return 2 }

// Detect emits one ERROR per ambiguous bucket.
func (d *AmbiguousProviderDetector) Detect(ctx context.Context, in *Input) ([]model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := in.Index.Groups(func(r index.ProviderRef) bool {
		return !r.Provider.IsMultiBinding()
	})

	issues := make([]model.Issue, 0, len(groups))
	for _, g := range groups {
		named := g.Key.Qualifier != ""

		msg := fmt.Sprintf("Ambiguous provider: %d providers for type '%s'", len(g.Providers), g.Key.Type)
		if named {
			msg += fmt.Sprintf(" with qualifier '%s'", g.Key.Qualifier)
		}

		issue := model.NewIssue(d.IssueType(), model.SeverityError, owningComponents(g), msg)
		if named {
			issue.SuggestedFix = fmt.Sprintf("Give each provider of '%s' a distinct qualifier instead of '%s', or remove the duplicates.",
				g.Key.Type, g.Key.Qualifier)
		} else {
			issue.SuggestedFix = fmt.Sprintf("Add distinct @Named qualifiers to the providers of '%s' or remove the duplicates.",
				g.Key.Type)
		}
		issue.Metadata[model.MetaProviderCount] = len(g.Providers)
		issue.Metadata[model.MetaIsNamedConflict] = named
		issue.Metadata[model.MetaProviders] = g.References()
		issue.Metadata[model.MetaEffectiveType] = g.Key.Type
		issue.Metadata[model.MetaQualifier] = g.Key.Qualifier
		issues = append(issues, issue)
	}
	return issues, nil
}

// owningComponents returns the distinct, sorted owners of a group joined
// for Issue.ComponentName.
func owningComponents(g index.Group) string {
	seen := make(map[string]bool, len(g.Providers))
	ids := make([]string, 0, len(g.Providers))
	for _, p := range g.Providers {
		if !seen[p.ComponentID] {
			seen[p.ComponentID] = true
			ids = append(ids, p.ComponentID)
		}
	}
	sort.Strings(ids)
	return model.JoinComponents(ids)
}
