// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads lineage service configuration from YAML with
// environment overrides and struct-tag validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/lineage/pkg/logging"
	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/AleutianAI/lineage/services/lineage/telemetry"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading.
var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrReadConfig wraps file and decode failures.
	ErrReadConfig = errors.New("cannot read configuration")
)

// Environment variable names.
const (
	EnvPort              = "LINEAGE_PORT"
	EnvMode              = "LINEAGE_MODE"
	EnvNodes             = "LINEAGE_NODES"
	EnvRelationships     = "LINEAGE_RELATIONSHIPS"
	EnvEraPolicy         = "LINEAGE_ERA_POLICY"
	EnvCommunityDetector = "LINEAGE_COMMUNITY_DETECTOR"
	EnvLogLevel          = "LINEAGE_LOG_LEVEL"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Dataset   DatasetConfig    `yaml:"dataset"`
	Engine    EngineConfig     `yaml:"engine"`
	Cache     CacheConfig      `yaml:"cache"`
	Logging   logging.Config   `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Port is the listen port.
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode" validate:"oneof=debug release test"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures the per-process token bucket. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" validate:"min=0"`
	Burst int     `yaml:"burst" validate:"min=0"`
}

// DatasetConfig locates the node and relationship files.
type DatasetConfig struct {
	// Nodes is the node file (.json, .yaml or .yml).
	Nodes string `yaml:"nodes" validate:"required"`

	// Relationships is the relationship file. Empty means Nodes holds a
	// combined document.
	Relationships string `yaml:"relationships"`

	// Watch reloads the engine when either file changes.
	Watch bool `yaml:"watch"`

	// Debounce collapses bursts of file events.
	Debounce time.Duration `yaml:"debounce" validate:"min=0"`
}

// EngineConfig maps onto graph.Option values.
type EngineConfig struct {
	CommunityDetector  string `yaml:"community_detector" validate:"detector"`
	MaxLabelIterations int    `yaml:"max_label_iterations" validate:"min=0,max=10000"`
	EraPolicy          string `yaml:"era_policy" validate:"erapolicy"`
	MaxEgoDepth        int    `yaml:"max_ego_depth" validate:"min=1,max=6"`
	MaxNodes           int    `yaml:"max_nodes" validate:"min=0"`
	MaxEdges           int    `yaml:"max_edges" validate:"min=0"`
}

// CacheConfig sizes the comparison cache. 0 disables caching.
type CacheConfig struct {
	CompareEntries int `yaml:"compare_entries" validate:"min=0"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8090,
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       RateLimitConfig{RPS: 200, Burst: 400},
		},
		Dataset: DatasetConfig{
			Nodes:         "data/nodes.json",
			Relationships: "data/relationships.json",
			Debounce:      500 * time.Millisecond,
		},
		Engine: EngineConfig{
			CommunityDetector:  "label_propagation",
			MaxLabelIterations: graph.DefaultLabelIterations,
			EraPolicy:          graph.EraPolicyTag.String(),
			MaxEgoDepth:        2,
			MaxNodes:           graph.DefaultMaxNodes,
			MaxEdges:           graph.DefaultMaxEdges,
		},
		Cache:     CacheConfig{CompareEntries: 4096},
		Logging:   logging.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Load reads path, applies environment overrides and validates.
//
// Description:
//
//	An empty path skips the file and starts from DefaultConfig. Fields
//	missing from the file keep their defaults; unknown keys are rejected.
//
// Outputs:
//
//	Config - The validated configuration.
//	error - ErrReadConfig or ErrInvalidConfig, wrapped with detail.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: decoding %s: %w", ErrReadConfig, path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from LINEAGE_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvMode); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv(EnvNodes); v != "" {
		cfg.Dataset.Nodes = v
	}
	if v, ok := os.LookupEnv(EnvRelationships); ok {
		cfg.Dataset.Relationships = v
	}
	if v := os.Getenv(EnvEraPolicy); v != "" {
		cfg.Engine.EraPolicy = v
	}
	if v := os.Getenv(EnvCommunityDetector); v != "" {
		cfg.Engine.CommunityDetector = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks every section against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GraphOptions converts the engine section into graph options.
// The configuration must already be valid.
func (c Config) GraphOptions() []graph.Option {
	detector, _ := graph.ParseCommunityDetector(c.Engine.CommunityDetector, c.Engine.MaxLabelIterations)
	policy, _ := graph.ParseEraPolicy(c.Engine.EraPolicy)
	return []graph.Option{
		graph.WithCommunityDetector(detector),
		graph.WithEraPolicy(policy),
		graph.WithMaxNodes(c.Engine.MaxNodes),
		graph.WithMaxEdges(c.Engine.MaxEdges),
	}
}

// RelationshipsPath returns the relationship file, falling back to the
// node file for combined documents.
func (d DatasetConfig) RelationshipsPath() string {
	if d.Relationships == "" {
		return d.Nodes
	}
	return d.Relationships
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("detector", validateDetector)
	_ = validate.RegisterValidation("erapolicy", validateEraPolicy)
}

// validateDetector accepts names graph.ParseCommunityDetector understands.
func validateDetector(fl validator.FieldLevel) bool {
	_, ok := graph.ParseCommunityDetector(fl.Field().String(), 0)
	return ok
}

// validateEraPolicy accepts names graph.ParseEraPolicy understands.
func validateEraPolicy(fl validator.FieldLevel) bool {
	_, ok := graph.ParseEraPolicy(fl.Field().String())
	return ok
}
