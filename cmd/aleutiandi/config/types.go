// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the analyzer CLI configuration from
// ~/.aleutian/di-analyzer.yaml.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
	"github.com/AleutianAI/AleutianDI/services/di/validation"
)

// AnalyzerConfig is the root of the configuration file.
type AnalyzerConfig struct {
	Validation validation.Settings `yaml:"validation"`
	Detectors  DetectorsConfig     `yaml:"detectors"`
	History    HistoryConfig       `yaml:"history"`
	Telemetry  telemetry.Config    `yaml:"telemetry"`
	Server     ServerConfig        `yaml:"server"`
	Logging    LoggingConfig       `yaml:"logging"`
}

// DetectorsConfig tunes detector execution.
type DetectorsConfig struct {
	Parallel bool `yaml:"parallel"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	Enabled bool           `yaml:"enabled"`
	Store   history.Config `yaml:",inline"`
}

// ServerConfig configures `aleutiandi serve`.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig(home string) AnalyzerConfig {
	tel := telemetry.DefaultConfig()
	tel.TraceExporter = telemetry.ExporterNone

	return AnalyzerConfig{
		Validation: validation.DefaultSettings(),
		History: HistoryConfig{
			Enabled: true,
			Store:   history.DefaultConfig(filepath.Join(home, ".aleutian", "di-history")),
		},
		Telemetry: tel,
		Server: ServerConfig{
			Port:            12240,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(home, ".aleutian", "logs"),
		},
	}
}

var configValidate = validator.New()

// Validate checks field ranges and the confidence weights.
func (c *AnalyzerConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Validation.Weights != nil {
		if err := c.Validation.Weights.Validate(); err != nil {
			return fmt.Errorf("invalid confidence weights: %w", err)
		}
	}
	return nil
}
