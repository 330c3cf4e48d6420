// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

func withMode(t *testing.T, m Mode) {
	t.Helper()
	prev := GetMode()
	SetMode(m)
	t.Cleanup(func() { SetMode(prev) })
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"plain", ModePlain},
		{"Q", ModeMachine},
		{"machine", ModeMachine},
		{"rich", ModeRich},
		{"anything", ModeRich},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitMode_Env(t *testing.T) {
	withMode(t, ModeRich)
	t.Setenv("ALEUTIAN_OUTPUT", "plain")
	InitMode()
	if GetMode() != ModePlain {
		t.Errorf("mode = %q, want plain", GetMode())
	}
}

func TestRenderIssues_Machine(t *testing.T) {
	withMode(t, ModeMachine)
	is := model.NewIssue(model.IssueTypeCircularDependency, model.SeverityError, "A, B", "Circular dependency of 2 components: A -> B -> A")
	is.ValidationStatus = model.ValidationTruePositive
	is.ConfidenceScore = 0.98

	var buf bytes.Buffer
	RenderIssues(&buf, []model.Issue{is})
	want := "ERROR\tCIRCULAR_DEPENDENCY\tA, B\tVALIDATED_TRUE_POSITIVE\t0.98\tCircular dependency of 2 components: A -> B -> A\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderIssues_PlainAndEmpty(t *testing.T) {
	withMode(t, ModePlain)
	is := model.NewIssue(model.IssueTypeMissingComponentAnnotation, model.SeverityWarning, "Svc", "missing annotation")
	is.SuggestedFix = "Annotate Svc"

	var buf bytes.Buffer
	RenderIssues(&buf, []model.Issue{is})
	out := buf.String()
	if !strings.Contains(out, "⚠ MISSING_COMPONENT_ANNOTATION Svc") || !strings.Contains(out, "→ Annotate Svc") {
		t.Errorf("unexpected plain output %q", out)
	}

	buf.Reset()
	RenderIssues(&buf, nil)
	if !strings.Contains(buf.String(), "No DI issues found") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	withMode(t, ModeMachine)
	var buf bytes.Buffer
	RenderSummary(&buf, Summary{Source: "facts.json", Components: 4, Issues: 3, Precision: 1, Recall: 0.75, F1Score: 0.857})
	if !strings.HasPrefix(buf.String(), "SUMMARY source=facts.json components=4 issues=3") ||
		!strings.Contains(buf.String(), "trend=- run=-") {
		t.Errorf("unexpected machine summary %q", buf.String())
	}

	withMode(t, ModePlain)
	buf.Reset()
	RenderSummary(&buf, Summary{Source: "x", Issues: 0, Trend: "IMPROVING"})
	if !strings.Contains(buf.String(), "Trend: IMPROVING") {
		t.Errorf("unexpected plain summary %q", buf.String())
	}
}
