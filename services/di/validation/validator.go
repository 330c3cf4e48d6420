// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"github.com/AleutianAI/AleutianDI/services/di/detect"
	"github.com/AleutianAI/AleutianDI/services/di/graph"
	"github.com/AleutianAI/AleutianDI/services/di/index"
	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// evidence is the re-derived view of the facts used for scoring.
type evidence struct {
	graph      *graph.DependencyGraph
	index      *index.ProviderIndex
	components map[string]model.Component
	weights    ConfidenceWeights
}

// ValidateIssues scores each issue and classifies it against the threshold.
//
// Description:
//
//	Each issue is re-checked against the component facts and assigned a
//	ConfidenceScore in [0,1] from the weights in settings. Issues scoring
//	at or above the clamped threshold become VALIDATED_TRUE_POSITIVE; the
//	rest become VALIDATED_FALSE_POSITIVE. With validation disabled every
//	issue is returned as NOT_VALIDATED.
//
// Inputs:
//
//	issues - Issues to validate. Never modified.
//	components - The component snapshot the issues were detected on.
//	settings - Threshold, weights and the enabled switch.
//
// Outputs:
//
//	[]model.Issue - Validated copies in input order. Never nil.
//
// Thread Safety: Pure function. Safe for concurrent use.
func ValidateIssues(issues []model.Issue, components []model.Component, settings Settings) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	if !settings.Enabled {
		for _, is := range issues {
			c := is.Clone()
			c.ValidationStatus = model.ValidationNotValidated
			out = append(out, c)
		}
		return out
	}

	ev := &evidence{
		graph:      graph.BuildGraph(components),
		index:      index.Build(components),
		components: make(map[string]model.Component, len(components)),
		weights:    settings.EffectiveWeights(),
	}
	for _, c := range components {
		if _, ok := ev.components[c.ID()]; !ok {
			ev.components[c.ID()] = c
		}
	}

	threshold := settings.Threshold()
	for _, is := range issues {
		c := is.Clone()
		c.ConfidenceScore = clamp01(ev.score(c))
		if c.ConfidenceScore >= threshold {
			c.ValidationStatus = model.ValidationTruePositive
		} else {
			c.ValidationStatus = model.ValidationFalsePositive
		}
		out = append(out, c)
	}
	return out
}

// score dispatches on the closed set of issue types.
func (ev *evidence) score(is model.Issue) float64 {
	switch is.Type {
	case model.IssueTypeCircularDependency:
		return ev.scoreCycle(is)
	case model.IssueTypeAmbiguousProvider:
		return ev.scoreAmbiguity(is)
	case model.IssueTypeSingletonViolation:
		return ev.scoreSingleton(is)
	case model.IssueTypeNamedQualifierMismatch:
		return ev.scoreQualifier(is)
	case model.IssueTypeUnresolvedDependency:
		return ev.scoreUnresolved(is)
	case model.IssueTypeMissingComponentAnnotation:
		return ev.weights.MissingAnnotation
	default:
		return 0
	}
}

// scoreCycle confirms every hop of the cycle by graph traversal.
func (ev *evidence) scoreCycle(is model.Issue) float64 {
	w := ev.weights
	nodes, ok := is.MetaStrings(model.MetaCycleNodes)
	if !ok || len(nodes) == 0 {
		nodes = is.Components()
	}
	if len(nodes) == 0 {
		return w.CycleUnconfirmed
	}

	for i, from := range nodes {
		if !ev.graph.HasEdge(from, nodes[(i+1)%len(nodes)]) {
			return w.CycleUnconfirmed
		}
	}

	score := w.CycleConfirmed
	if lazy, _ := is.MetaInt(model.MetaLazyEdges); lazy > 0 {
		score -= w.LazyCyclePenalty
	}
	return score
}

// scoreAmbiguity re-counts the bucket's non-multibinding providers.
func (ev *evidence) scoreAmbiguity(is model.Issue) float64 {
	w := ev.weights
	typ, _ := is.MetaString(model.MetaEffectiveType)
	qualifier, _ := is.MetaString(model.MetaQualifier)

	if ev.countProviders(typ, qualifier, func(r index.ProviderRef) bool {
		return !r.Provider.IsMultiBinding()
	}) < 2 {
		return w.AmbiguityUnconfirmed
	}
	score := w.AmbiguityConfirmed
	if qualifier != "" {
		score += w.NamedConflictBonus
	}
	return score
}

// scoreSingleton handles both singleton violation kinds.
func (ev *evidence) scoreSingleton(is model.Issue) float64 {
	w := ev.weights
	kind, _ := is.MetaString(model.MetaViolationKind)

	switch kind {
	case detect.ViolationConflictingSingletons:
		typ, _ := is.MetaString(model.MetaEffectiveType)
		qualifier, _ := is.MetaString(model.MetaQualifier)
		if ev.countProviders(typ, qualifier, func(r index.ProviderRef) bool {
			return r.Provider.IsSingleton && !r.Provider.IsMultiBinding()
		}) < 2 {
			return w.SingletonUnconfirmed
		}
		return w.SingletonConflict

	case detect.ViolationLifecycleMismatch:
		typ, _ := is.MetaString(model.MetaTargetType)
		qualifier, _ := is.MetaString(model.MetaQualifier)
		matches := ev.index.Lookup(typ, qualifier)
		if len(matches) != 1 || matches[0].Provider.IsSingleton {
			return w.SingletonUnconfirmed
		}
		return w.LifecycleMismatch

	default:
		return w.SingletonUnconfirmed
	}
}

// scoreQualifier scales with how close the best suggestion is.
func (ev *evidence) scoreQualifier(is model.Issue) float64 {
	w := ev.weights
	typ, _ := is.MetaString(model.MetaTargetType)
	requested, _ := is.MetaString(model.MetaRequestedQualifier)

	if len(ev.index.Lookup(typ, requested)) > 0 || len(ev.index.ForType(typ)) == 0 {
		return w.QualifierUnconfirmed
	}

	best, ok := is.MetaFloat(model.MetaBestSimilarity)
	if !ok {
		if ranked := detect.RankSuggestions(requested, ev.index.Qualifiers(typ)); len(ranked) > 0 {
			best = ranked[0].Score
		}
	}
	return w.QualifierBase + w.QualifierSimilarityWeight*clamp01(best)
}

// scoreUnresolved lowers confidence when the type probably exists under a
// package the front end did not resolve, or when injection is lazy.
func (ev *evidence) scoreUnresolved(is model.Issue) float64 {
	w := ev.weights
	typ, _ := is.MetaString(model.MetaTargetType)
	qualifier, _ := is.MetaString(model.MetaQualifier)

	if qualifier == "" {
		if ev.index.HasUnqualified(typ) || ev.index.HasComponent(typ) {
			return w.UnresolvedUnconfirmed
		}
	} else if len(ev.index.ForType(typ)) > 0 {
		return w.UnresolvedUnconfirmed
	}

	score := w.UnresolvedBase
	if ev.shadowedElsewhere(typ) {
		score = w.UnresolvedShadowed
	}
	if ev.isLazyDependency(is) {
		score -= w.LazyUnresolvedPenalty
	}
	return score
}

// shadowedElsewhere reports whether the simple name of typ exists as a
// component or provided type in a different package.
func (ev *evidence) shadowedElsewhere(typ string) bool {
	simple := model.SimpleTypeName(typ)
	pkg := model.PackageOf(typ)
	for _, id := range ev.index.ComponentsNamed(simple) {
		if model.PackageOf(id) != pkg {
			return true
		}
	}
	for _, t := range ev.index.TypesNamed(simple) {
		if t != typ {
			return true
		}
	}
	return false
}

// isLazyDependency finds the flagged dependency on its requester.
func (ev *evidence) isLazyDependency(is model.Issue) bool {
	requester, ok := is.MetaString(model.MetaRequester)
	if !ok {
		comps := is.Components()
		if len(comps) == 0 {
			return false
		}
		requester = comps[0]
	}
	prop, _ := is.MetaString(model.MetaPropertyName)
	c, ok := ev.components[requester]
	if !ok {
		return false
	}
	for _, d := range c.Dependencies {
		if d.PropertyName == prop {
			return d.IsLazy()
		}
	}
	return false
}

func (ev *evidence) countProviders(typ, qualifier string, keep func(index.ProviderRef) bool) int {
	n := 0
	for _, r := range ev.index.Lookup(typ, qualifier) {
		if keep(r) {
			n++
		}
	}
	return n
}
