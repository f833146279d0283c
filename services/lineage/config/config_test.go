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

	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "label_propagation", cfg.Engine.CommunityDetector)
	assert.Equal(t, "tag", cfg.Engine.EraPolicy)
	assert.Equal(t, 4096, cfg.Cache.CompareEntries)
	assert.Equal(t, "lineage", cfg.Telemetry.ServiceName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
  mode: debug
  rate_limit:
    rps: 5
    burst: 10
dataset:
  nodes: data/graph.yaml
  relationships: ""
  watch: true
  debounce: 2s
engine:
  community_detector: connected_components
  era_policy: period
  max_ego_depth: 3
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RPS)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, 2*time.Second, cfg.Dataset.Debounce)
	assert.Equal(t, "data/graph.yaml", cfg.Dataset.RelationshipsPath())
	assert.Equal(t, 3, cfg.Engine.MaxEgoDepth)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "lineage", cfg.Logging.Service)
	// untouched keys keep defaults
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, graph.DefaultLabelIterations, cfg.Engine.MaxLabelIterations)

	eng, err := graph.New(nil, nil, append(cfg.GraphOptions(), graph.WithLogger(nil))...)
	require.NoError(t, err)
	assert.Equal(t, "connected_components", eng.Stats().CommunityDetector)
	assert.Equal(t, graph.EraPolicyPeriod, eng.EraPolicy())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"unknown key", "server:\n  colour: blue\n", ErrReadConfig},
		{"bad yaml", "server: [\n", ErrReadConfig},
		{"bad port", "server:\n  port: 70000\n", ErrInvalidConfig},
		{"bad mode", "server:\n  mode: turbo\n", ErrInvalidConfig},
		{"bad detector", "engine:\n  community_detector: leiden\n", ErrInvalidConfig},
		{"bad era policy", "engine:\n  era_policy: carbon\n", ErrInvalidConfig},
		{"ego too deep", "engine:\n  max_ego_depth: 7\n", ErrInvalidConfig},
		{"missing nodes", "dataset:\n  nodes: \"\"\n", ErrInvalidConfig},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n", ErrInvalidConfig},
		{"bad log level", "logging:\n  level: loud\n", ErrInvalidConfig},
		{"bad log format", "logging:\n  format: xml\n", ErrInvalidConfig},
		{"sample ratio above one", "telemetry:\n  sample_ratio: 1.5\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrReadConfig)
	})
}

func TestLoad_Env(t *testing.T) {
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvNodes, "/srv/nodes.yaml")
	t.Setenv(EnvRelationships, "")
	t.Setenv(EnvEraPolicy, "period")
	t.Setenv(EnvMode, "test")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/srv/nodes.yaml", cfg.Dataset.RelationshipsPath())
	assert.Equal(t, "period", cfg.Engine.EraPolicy)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv(EnvPort, "eighty")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "lineage.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, "data/nodes.json", cfg.Dataset.Nodes)
	assert.Equal(t, "label_propagation", cfg.Engine.CommunityDetector)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRatio)
}
