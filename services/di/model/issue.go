// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"fmt"
	"strings"
)

// IssueType identifies the kind of structural defect.
type IssueType string

const (
	IssueTypeCircularDependency         IssueType = "CIRCULAR_DEPENDENCY"
	IssueTypeAmbiguousProvider          IssueType = "AMBIGUOUS_PROVIDER"
	IssueTypeSingletonViolation         IssueType = "SINGLETON_VIOLATION"
	IssueTypeNamedQualifierMismatch     IssueType = "NAMED_QUALIFIER_MISMATCH"
	IssueTypeUnresolvedDependency       IssueType = "UNRESOLVED_DEPENDENCY"
	IssueTypeMissingComponentAnnotation IssueType = "MISSING_COMPONENT_ANNOTATION"
)

// issueTypePriority ranks issue types for per-component deduplication.
// Lower value wins.
var issueTypePriority = map[IssueType]int{
	IssueTypeCircularDependency:         1,
	IssueTypeSingletonViolation:         2,
	IssueTypeAmbiguousProvider:          3,
	IssueTypeNamedQualifierMismatch:     4,
	IssueTypeUnresolvedDependency:       5,
	IssueTypeMissingComponentAnnotation: 6,
}

// AllIssueTypes returns every issue type in priority order.
func AllIssueTypes() []IssueType {
	return []IssueType{
		IssueTypeCircularDependency,
		IssueTypeSingletonViolation,
		IssueTypeAmbiguousProvider,
		IssueTypeNamedQualifierMismatch,
		IssueTypeUnresolvedDependency,
		IssueTypeMissingComponentAnnotation,
	}
}

// String returns the string representation of the IssueType.
func (t IssueType) String() string {
	return string(t)
}

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	_, ok := issueTypePriority[t]
	return ok
}

// Priority returns the deduplication rank of the issue type (1 is highest).
//
// Returns ErrUnknownIssueType for values outside the closed set.
func (t IssueType) Priority() (int, error) {
	p, ok := issueTypePriority[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownIssueType, string(t))
	}
	return p, nil
}

// Severity is the urgency of an issue.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// ValidationStatus is the validator's verdict for an issue.
type ValidationStatus string

const (
	// ValidationNotValidated is the status before (or without) validation.
	ValidationNotValidated ValidationStatus = "NOT_VALIDATED"

	// ValidationTruePositive marks an issue judged to be a real defect.
	ValidationTruePositive ValidationStatus = "VALIDATED_TRUE_POSITIVE"

	// ValidationFalsePositive marks an issue judged to be a detector artifact.
	ValidationFalsePositive ValidationStatus = "VALIDATED_FALSE_POSITIVE"
)

// String returns the string representation of the ValidationStatus.
func (s ValidationStatus) String() string {
	return string(s)
}

// Metadata keys shared between detectors, the validator and reports.
const (
	MetaCycleLength         = "cycleLength"
	MetaCyclePath           = "cyclePath"
	MetaCycleNodes          = "cycleNodes"
	MetaSCCSize             = "sccSize"
	MetaSCCMembers          = "sccMembers"
	MetaLazyEdges           = "lazyEdges"
	MetaProviderCount       = "providerCount"
	MetaProviders           = "providers"
	MetaIsNamedConflict     = "isNamedConflict"
	MetaEffectiveType       = "effectiveType"
	MetaQualifier           = "qualifier"
	MetaViolationKind       = "violationKind"
	MetaTargetType          = "targetType"
	MetaPropertyName        = "propertyName"
	MetaRequestedQualifier  = "requestedQualifier"
	MetaSuggestions         = "suggestions"
	MetaAvailableQualifiers = "availableQualifiers"
	MetaBestSimilarity      = "bestSimilarity"
	MetaRequester           = "requester"
)

// Issue is a single structural defect reported by a detector.
type Issue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`

	// ComponentName is one or more comma-joined component IDs.
	ComponentName string `json:"componentName"`

	SuggestedFix string         `json:"suggestedFix,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	// ValidationStatus and ConfidenceScore are set by the validator.
	ValidationStatus ValidationStatus `json:"validationStatus"`
	ConfidenceScore  float64          `json:"confidenceScore"`
}

// NewIssue creates an unvalidated issue with an empty metadata map.
func NewIssue(issueType IssueType, severity Severity, componentName, message string) Issue {
	return Issue{
		Type:             issueType,
		Severity:         severity,
		Message:          message,
		ComponentName:    componentName,
		Metadata:         make(map[string]any),
		ValidationStatus: ValidationNotValidated,
	}
}

// Components splits ComponentName into its individual component IDs.
func (i Issue) Components() []string {
	if i.ComponentName == "" {
		return nil
	}
	parts := strings.Split(i.ComponentName, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a copy of the issue with its own metadata map.
//
// Slice values inside the metadata are shared; callers treat them as
// read-only.
func (i Issue) Clone() Issue {
	c := i
	if i.Metadata != nil {
		c.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// JoinComponents builds a ComponentName from component IDs.
func JoinComponents(ids []string) string {
	return strings.Join(ids, ",")
}

// MetaInt reads an integer metadata value, tolerating float64 values that
// come back from JSON decoding.
func (i Issue) MetaInt(key string) (int, bool) {
	switch v := i.Metadata[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// MetaFloat reads a float metadata value.
func (i Issue) MetaFloat(key string) (float64, bool) {
	switch v := i.Metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// MetaBool reads a boolean metadata value.
func (i Issue) MetaBool(key string) (bool, bool) {
	v, ok := i.Metadata[key].(bool)
	return v, ok
}

// MetaString reads a string metadata value.
func (i Issue) MetaString(key string) (string, bool) {
	v, ok := i.Metadata[key].(string)
	return v, ok
}

// MetaStrings reads a string-list metadata value, tolerating []any values
// that come back from JSON decoding.
func (i Issue) MetaStrings(key string) ([]string, bool) {
	switch v := i.Metadata[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
