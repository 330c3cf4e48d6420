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
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Summary is the headline of one analysis.
type Summary struct {
	Source     string
	Components int
	Issues     int
	Suppressed int
	Precision  float64
	Recall     float64
	F1Score    float64
	Trend      string
	RunID      string
}

// RenderSummary writes the analysis headline.
func RenderSummary(w io.Writer, s Summary) {
	if GetMode() == ModeMachine {
		fmt.Fprintf(w, "SUMMARY source=%s components=%d issues=%d suppressed=%d precision=%.4f recall=%.4f f1=%.4f trend=%s run=%s\n",
			s.Source, s.Components, s.Issues, s.Suppressed, s.Precision, s.Recall, s.F1Score, orDash(s.Trend), orDash(s.RunID))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", title(s.Source))
	fmt.Fprintf(&sb, "Components: %d   Issues: %d   Suppressed: %d\n", s.Components, s.Issues, s.Suppressed)
	fmt.Fprintf(&sb, "Precision: %.2f%%   Recall: %.2f%%   F1: %.2f%%", s.Precision*100, s.Recall*100, s.F1Score*100)
	if s.Trend != "" {
		fmt.Fprintf(&sb, "\nTrend: %s", s.Trend)
	}
	if s.RunID != "" {
		fmt.Fprintf(&sb, "\nRun: %s", s.RunID)
	}

	if GetMode() == ModeRich {
		box := Styles.Box
		if s.Issues > 0 {
			box = Styles.ErrorBox
		}
		fmt.Fprintln(w, box.Render(sb.String()))
		return
	}
	fmt.Fprintln(w, sb.String())
}

// RenderIssues writes one block per issue.
func RenderIssues(w io.Writer, issues []model.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s %s\n", IconSuccess.Render(), paint(Styles.Success, "No DI issues found"))
		return
	}
	for _, is := range issues {
		if GetMode() == ModeMachine {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
				is.Severity, is.Type, is.ComponentName, is.ValidationStatus, is.ConfidenceScore, is.Message)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", severityIcon(is.Severity).Render(), paint(Styles.Bold, string(is.Type)), is.ComponentName)
		fmt.Fprintf(w, "    %s\n", is.Message)
		if is.ValidationStatus != model.ValidationNotValidated {
			fmt.Fprintf(w, "    %s\n", paint(Styles.Muted, fmt.Sprintf("%s (confidence %.2f)", is.ValidationStatus, is.ConfidenceScore)))
		}
		if is.SuggestedFix != "" {
			fmt.Fprintf(w, "    %s %s\n", IconArrow.Render(), is.SuggestedFix)
		}
	}
}

func severityIcon(s model.Severity) Icon {
	switch s {
	case model.SeverityError:
		return IconError
	case model.SeverityWarning:
		return IconWarning
	default:
		return IconInfo
	}
}

func title(source string) string {
	t := "DI Analysis"
	if source != "" {
		t += ": " + source
	}
	return paint(Styles.Title, t)
}

func paint(style interface{ Render(...string) string }, text string) string {
	if GetMode() != ModeRich {
		return text
	}
	return style.Render(text)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
