// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDI/services/di/validation"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig("/home/test")
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Validation.Enabled)
	assert.Equal(t, validation.DefaultMinimumConfidenceThreshold, cfg.Validation.MinimumConfidenceThreshold)
	assert.Equal(t, "/home/test/.aleutian/di-history", cfg.History.Store.Path)
	assert.Equal(t, 12240, cfg.Server.Port)
}

func TestLoad_CreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.History.Enabled)

	_, err = os.Stat(filepath.Join(home, ".aleutian", "di-analyzer.yaml"))
	assert.NoError(t, err, "default config file should be written")

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.Port, again.Server.Port)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "di.yaml")
	data := `
validation:
  enabled: true
  minimum_confidence_threshold: 0.9
detectors:
  parallel: true
history:
  enabled: false
server:
  port: 9000
  shutdown_timeout: 3s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Validation.MinimumConfidenceThreshold)
	assert.True(t, cfg.Detectors.Parallel)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Telemetry.ServiceName, "unset sections keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name string
		data string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n"},
		{"bad weight", "validation:\n  weights:\n    cycle_confirmed: 1.5\n"},
		{"malformed", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "di.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
