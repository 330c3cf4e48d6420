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
	"errors"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDI/pkg/ux"
)

// errIssuesFound makes `analyze --fail-on-issues` exit non-zero without
// printing an extra error line.
var errIssuesFound = errors.New("issues found")

var (
	configPath string
	outputMode string
	logLevel   string

	analyzeFormat       string
	analyzeExpected     int
	analyzeThreshold    float64
	analyzeNoValidate   bool
	analyzeLabel        string
	analyzeNoHistory    bool
	analyzeShowReport   bool
	analyzeFailOnIssues bool

	watchDebounce string

	serveAddr string

	historyLimit int
	historyJSON  bool

	rootCmd = &cobra.Command{
		Use:   "aleutiandi",
		Short: "Static analyzer for dependency-injection graphs",
		Long: `aleutiandi reads component facts (classes, injected dependencies and
provider methods) and reports circular dependencies, ambiguous providers,
singleton violations, named-qualifier mismatches and unresolved dependencies,
with confidence scores and accuracy statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if outputMode != "" {
				ux.SetMode(ux.ParseMode(outputMode))
			} else {
				ux.InitMode()
			}
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [facts file...]",
		Short: "Analyze one or more facts files (JSON or YAML)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyze,
	}

	watchCmd = &cobra.Command{
		Use:   "watch [facts file]",
		Short: "Re-analyze a facts file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.aleutian/di-analyzer.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputMode, "output", "", "Output mode: rich, plain, machine")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "Result format: text or json")
	analyzeCmd.Flags().IntVar(&analyzeExpected, "expected", -1, "Ground-truth issue count (default: structural estimate)")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", -1, "Override the minimum confidence threshold")
	analyzeCmd.Flags().BoolVar(&analyzeNoValidate, "no-validate", false, "Skip confidence validation")
	analyzeCmd.Flags().StringVar(&analyzeLabel, "label", "", "Label recorded with the run")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "Do not compare with or record to run history")
	analyzeCmd.Flags().BoolVar(&analyzeShowReport, "report", false, "Print the full accuracy report")
	analyzeCmd.Flags().BoolVar(&analyzeFailOnIssues, "fail-on-issues", false, "Exit non-zero when true-positive or unvalidated issues remain")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", "200ms", "Quiet period before re-analyzing")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :<server.port>)")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print runs as JSON")
}
