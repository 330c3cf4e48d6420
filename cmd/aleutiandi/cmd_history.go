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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDI/pkg/ux"
	"github.com/AleutianAI/AleutianDI/services/di/history"
)

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{needHistory: true, quietLogs: historyJSON})
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	runs, err := rt.svc.History(ctx, historyLimit)
	if err != nil {
		return err
	}
	return writeHistory(cmd.OutOrStdout(), runs, historyJSON)
}

func writeHistory(w io.Writer, runs []history.RunRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs")
		return nil
	}

	if ux.GetMode() == ux.ModeRich {
		fmt.Fprintln(w, ux.Styles.Title.Render("Recorded DI analysis runs"))
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tLABEL\tCOMPONENTS\tTP\tFP\tFN\tPRECISION\tF1")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2f%%\t%.2f%%\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Label, r.ComponentCount,
			r.Metrics.TruePositives, r.Metrics.FalsePositives, r.Metrics.FalseNegatives,
			r.Metrics.Precision()*100, r.Metrics.F1Score()*100)
	}
	return tw.Flush()
}
