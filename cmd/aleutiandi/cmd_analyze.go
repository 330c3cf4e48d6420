// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDI/pkg/ux"
	"github.com/AleutianAI/AleutianDI/services/di"
	"github.com/AleutianAI/AleutianDI/services/di/facts"
	"github.com/AleutianAI/AleutianDI/services/di/model"
	"github.com/AleutianAI/AleutianDI/services/di/stats"
)

// fileResult pairs a facts file with its analysis.
type fileResult struct {
	Path       string             `json:"path"`
	Components int                `json:"components"`
	Result     *di.AnalysisResult `json:"result"`
}

// analyzeOptions are the per-invocation overrides from flags.
type analyzeOptions struct {
	format       string
	expected     int
	threshold    float64
	noValidate   bool
	label        string
	noHistory    bool
	showReport   bool
	failOnIssues bool
}

func analyzeOptionsFromFlags() analyzeOptions {
	return analyzeOptions{
		format:       analyzeFormat,
		expected:     analyzeExpected,
		threshold:    analyzeThreshold,
		noValidate:   analyzeNoValidate,
		label:        analyzeLabel,
		noHistory:    analyzeNoHistory,
		showReport:   analyzeShowReport,
		failOnIssues: analyzeFailOnIssues,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := analyzeOptionsFromFlags()
	rt, err := newRuntime(ctx, cfg, runtimeOptions{quietLogs: opts.format == "json"})
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	results, err := analyzeFiles(ctx, rt.svc, args, opts)
	if err != nil {
		return err
	}
	if err := writeResults(cmd.OutOrStdout(), results, opts); err != nil {
		return err
	}
	if opts.failOnIssues && hasActionableIssues(results) {
		return errIssuesFound
	}
	return nil
}

// analyzeFiles loads and analyzes each file concurrently, then records
// the runs to history one by one in argument order so trends do not
// depend on scheduling. Results keep the argument order; the first
// failure cancels the rest.
func analyzeFiles(ctx context.Context, svc *di.Service, paths []string, opts analyzeOptions) ([]fileResult, error) {
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		g.Go(func() error {
			doc, err := facts.Load(path)
			if err != nil {
				return err
			}
			req := buildRequest(doc, path, opts, svc)
			req.SkipHistory = true
			res, err := svc.Analyze(gctx, req, di.SourceCLI)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", path, err)
			}
			results[i] = fileResult{Path: path, Components: len(doc.Components), Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.noHistory || !svc.HistoryEnabled() {
		return results, nil
	}
	for _, fr := range results {
		if err := svc.Record(ctx, fr.Result, fr.Components); err != nil {
			return nil, fmt.Errorf("record %s: %w", fr.Path, err)
		}
	}
	return results, nil
}

func buildRequest(doc *facts.Document, path string, opts analyzeOptions, svc *di.Service) di.AnalyzeRequest {
	req := di.AnalyzeRequest{
		Components:     doc.Components,
		ExpectedIssues: doc.ExpectedIssues,
		Label:          opts.label,
		SkipHistory:    opts.noHistory,
	}
	if req.Label == "" {
		req.Label = doc.Project
	}
	if req.Label == "" {
		req.Label = path
	}
	if opts.expected >= 0 {
		expected := opts.expected
		req.ExpectedIssues = &expected
	}
	if opts.noValidate || opts.threshold >= 0 {
		settings := svc.ValidationSettings()
		if opts.noValidate {
			settings.Enabled = false
		}
		if opts.threshold >= 0 {
			settings.MinimumConfidenceThreshold = opts.threshold
		}
		req.Validation = &settings
	}
	return req
}

func writeResults(w io.Writer, results []fileResult, opts analyzeOptions) error {
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if opts.format != "text" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	for _, fr := range results {
		renderResult(w, fr, opts.showReport)
	}
	return nil
}

func renderResult(w io.Writer, fr fileResult, showReport bool) {
	res := fr.Result
	summary := ux.Summary{
		Source:     fr.Path,
		Components: fr.Components,
		Issues:     len(res.Issues),
		Suppressed: res.Suppressed,
		Precision:  res.Precision,
		Recall:     res.Recall,
		F1Score:    res.F1Score,
		RunID:      res.RunID,
	}
	if res.Trend != nil && res.Trend.HasComparison {
		summary.Trend = string(res.Trend.Trend)
	}
	ux.RenderSummary(w, summary)
	ux.RenderIssues(w, res.Issues)
	for _, dr := range res.DetectorResults {
		if !dr.Success && !dr.Skipped {
			fmt.Fprintf(w, "%s detector %s failed: %s\n", ux.IconWarning.Render(), dr.Name, dr.Error)
		}
	}
	if showReport {
		fmt.Fprintln(w)
		fmt.Fprint(w, res.Report)
		if len(res.Issues) > 0 {
			fmt.Fprintln(w)
			fmt.Fprint(w, stats.GenerateIssueListing(res.Issues))
		}
	}
}

// hasActionableIssues reports whether any issue was not rejected as a
// false positive.
func hasActionableIssues(results []fileResult) bool {
	for _, fr := range results {
		for _, is := range fr.Result.Issues {
			if is.ValidationStatus != model.ValidationFalsePositive {
				return true
			}
		}
	}
	return false
}
