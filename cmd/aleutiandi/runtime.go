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

	"github.com/AleutianAI/AleutianDI/cmd/aleutiandi/config"
	"github.com/AleutianAI/AleutianDI/pkg/logging"
	"github.com/AleutianAI/AleutianDI/services/di"
	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/observability"
	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
)

// appRuntime owns the collaborators shared by every command.
type appRuntime struct {
	cfg       *config.AnalyzerConfig
	logger    *logging.Logger
	store     *history.Store
	svc       *di.Service
	telemetry func(context.Context) error
}

type runtimeOptions struct {
	needHistory bool
	metrics     bool
	quietLogs   bool
}

func newRuntime(ctx context.Context, cfg *config.AnalyzerConfig, opts runtimeOptions) (*appRuntime, error) {
	levelName := cfg.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "aleutiandi",
		JSON:    cfg.Logging.JSON,
		Quiet:   opts.quietLogs,
	})

	rt := &appRuntime{cfg: cfg, logger: logger}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	} else {
		rt.telemetry = shutdown
	}

	svcOpts := []di.ServiceOption{di.WithLogger(logger.Slog())}
	if cfg.History.Enabled || opts.needHistory {
		storeCfg := cfg.History.Store
		storeCfg.Logger = logger.Slog()
		store, err := history.Open(storeCfg)
		if err != nil {
			rt.close(ctx)
			return nil, fmt.Errorf("open run history: %w", err)
		}
		rt.store = store
		svcOpts = append(svcOpts, di.WithHistory(store))
	}
	if opts.metrics {
		svcOpts = append(svcOpts, di.WithMetrics(observability.NewAnalyzerMetrics(nil)))
	}

	rt.svc = di.NewService(di.ServiceConfig{
		Validation:        cfg.Validation,
		ParallelDetectors: cfg.Detectors.Parallel,
	}, svcOpts...)
	return rt, nil
}

func (rt *appRuntime) close(ctx context.Context) error {
	var errs []error
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	if rt.telemetry != nil {
		errs = append(errs, rt.telemetry(ctx))
	}
	errs = append(errs, rt.logger.Close())
	return errors.Join(errs...)
}

func loadConfig() (*config.AnalyzerConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
