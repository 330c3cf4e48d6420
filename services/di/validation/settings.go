// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation scores detected issues and classifies them as true or
// false positives.
//
// Scoring is a pure function of the issues and the component facts. Every
// weight lives in ConfidenceWeights so callers can tune the heuristics from
// configuration instead of code.
package validation

import (
	"github.com/go-playground/validator/v10"
)

// DefaultMinimumConfidenceThreshold is the default TP/FP boundary.
const DefaultMinimumConfidenceThreshold = 0.7

// settingsValidate is the validator instance for validation settings.
var settingsValidate = validator.New()

// ConfidenceWeights are the scores and adjustments used per issue type.
//
// # Description
//
// Base scores are assigned when an issue is re-confirmed against the
// component facts; "Unconfirmed" scores apply when re-checking does not
// reproduce the defect. Penalties are subtracted and bonuses added before
// the result is clamped to [0,1].
type ConfidenceWeights struct {
	CycleConfirmed   float64 `yaml:"cycle_confirmed" json:"cycleConfirmed" validate:"gte=0,lte=1"`
	CycleUnconfirmed float64 `yaml:"cycle_unconfirmed" json:"cycleUnconfirmed" validate:"gte=0,lte=1"`
	LazyCyclePenalty float64 `yaml:"lazy_cycle_penalty" json:"lazyCyclePenalty" validate:"gte=0,lte=1"`

	AmbiguityConfirmed   float64 `yaml:"ambiguity_confirmed" json:"ambiguityConfirmed" validate:"gte=0,lte=1"`
	NamedConflictBonus   float64 `yaml:"named_conflict_bonus" json:"namedConflictBonus" validate:"gte=0,lte=1"`
	AmbiguityUnconfirmed float64 `yaml:"ambiguity_unconfirmed" json:"ambiguityUnconfirmed" validate:"gte=0,lte=1"`

	SingletonConflict    float64 `yaml:"singleton_conflict" json:"singletonConflict" validate:"gte=0,lte=1"`
	LifecycleMismatch    float64 `yaml:"lifecycle_mismatch" json:"lifecycleMismatch" validate:"gte=0,lte=1"`
	SingletonUnconfirmed float64 `yaml:"singleton_unconfirmed" json:"singletonUnconfirmed" validate:"gte=0,lte=1"`

	QualifierBase             float64 `yaml:"qualifier_base" json:"qualifierBase" validate:"gte=0,lte=1"`
	QualifierSimilarityWeight float64 `yaml:"qualifier_similarity_weight" json:"qualifierSimilarityWeight" validate:"gte=0,lte=1"`
	QualifierUnconfirmed      float64 `yaml:"qualifier_unconfirmed" json:"qualifierUnconfirmed" validate:"gte=0,lte=1"`

	UnresolvedBase        float64 `yaml:"unresolved_base" json:"unresolvedBase" validate:"gte=0,lte=1"`
	UnresolvedShadowed    float64 `yaml:"unresolved_shadowed" json:"unresolvedShadowed" validate:"gte=0,lte=1"`
	UnresolvedUnconfirmed float64 `yaml:"unresolved_unconfirmed" json:"unresolvedUnconfirmed" validate:"gte=0,lte=1"`
	LazyUnresolvedPenalty float64 `yaml:"lazy_unresolved_penalty" json:"lazyUnresolvedPenalty" validate:"gte=0,lte=1"`

	MissingAnnotation float64 `yaml:"missing_annotation" json:"missingAnnotation" validate:"gte=0,lte=1"`
}

// DefaultConfidenceWeights returns the built-in weights.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		CycleConfirmed:   0.98,
		CycleUnconfirmed: 0.5,
		LazyCyclePenalty: 0.3,

		AmbiguityConfirmed:   0.9,
		NamedConflictBonus:   0.05,
		AmbiguityUnconfirmed: 0.3,

		SingletonConflict:    0.85,
		LifecycleMismatch:    0.75,
		SingletonUnconfirmed: 0.3,

		QualifierBase:             0.75,
		QualifierSimilarityWeight: 0.25,
		QualifierUnconfirmed:      0.3,

		UnresolvedBase:        0.8,
		UnresolvedShadowed:    0.35,
		UnresolvedUnconfirmed: 0.3,
		LazyUnresolvedPenalty: 0.2,

		MissingAnnotation: 0.75,
	}
}

// Validate checks every weight lies in [0,1].
func (w ConfidenceWeights) Validate() error {
	return settingsValidate.Struct(w)
}

// Settings controls issue validation.
type Settings struct {
	// Enabled turns scoring on. When false every issue is NOT_VALIDATED.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MinimumConfidenceThreshold is the TP/FP boundary. Values outside
	// [0,1] are clamped, never rejected.
	MinimumConfidenceThreshold float64 `yaml:"minimum_confidence_threshold" json:"minimumConfidenceThreshold"`

	// Weights are the scoring weights. Nil means DefaultConfidenceWeights.
	Weights *ConfidenceWeights `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// DefaultSettings returns enabled validation with the default threshold.
func DefaultSettings() Settings {
	return Settings{
		Enabled:                    true,
		MinimumConfidenceThreshold: DefaultMinimumConfidenceThreshold,
	}
}

// Threshold returns the threshold clamped to [0,1].
func (s Settings) Threshold() float64 {
	return clamp01(s.MinimumConfidenceThreshold)
}

// EffectiveWeights returns the configured weights or the defaults.
func (s Settings) EffectiveWeights() ConfidenceWeights {
	if s.Weights == nil {
		return DefaultConfidenceWeights()
	}
	return *s.Weights
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
