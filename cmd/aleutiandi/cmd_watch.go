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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDI/pkg/ux"
	"github.com/AleutianAI/AleutianDI/services/di"
	"github.com/AleutianAI/AleutianDI/services/di/facts"
)

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, err := time.ParseDuration(watchDebounce)
	if err != nil {
		return fmt.Errorf("invalid --debounce: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	path := args[0]
	out := cmd.OutOrStdout()
	opts := analyzeOptions{format: "text"}

	analyzeDoc := func(ctx context.Context, doc *facts.Document) {
		req := buildRequest(doc, path, opts, rt.svc)
		res, err := rt.svc.Analyze(ctx, req, di.SourceWatch)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", ux.IconError.Render(), err)
			return
		}
		renderResult(out, fileResult{Path: path, Components: len(doc.Components), Result: res}, false)
	}

	doc, err := facts.Load(path)
	if err != nil {
		return err
	}
	analyzeDoc(ctx, doc)

	watcher, err := facts.NewWatcher(path, debounce, func(ctx context.Context, doc *facts.Document, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s reload failed: %v\n", ux.IconWarning.Render(), err)
			return
		}
		analyzeDoc(ctx, doc)
	}, rt.logger.Slog())
	if err != nil {
		return err
	}

	rt.logger.Info("watching facts file", "path", path, "debounce", debounce.String())
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
