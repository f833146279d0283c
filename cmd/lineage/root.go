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
	"log/slog"
	"strings"

	"github.com/AleutianAI/lineage/pkg/logging"
	"github.com/AleutianAI/lineage/pkg/ux"
	"github.com/AleutianAI/lineage/services/lineage"
	"github.com/AleutianAI/lineage/services/lineage/config"
	"github.com/spf13/cobra"
)

// cli holds flag values shared by every subcommand.
type cli struct {
	configPath    string
	nodes         string
	relationships string
	jsonOutput    bool
	logLevel      string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lineage",
		Short: "Compare people and entities in a curated knowledge graph",
		Long: `lineage builds an in-memory graph of people, institutions, events and ideas
from a curated dataset and answers pairwise questions about them: shared
connections, Jaccard similarity, the shortest connecting path, shared tags,
era overlap and community membership.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLog != nil {
				return c.closeLog()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to the YAML configuration file")
	pf.StringVar(&c.nodes, "nodes", "", "Node file (overrides dataset.nodes)")
	pf.StringVar(&c.relationships, "relationships", "", "Relationship file (overrides dataset.relationships)")
	pf.BoolVar(&c.jsonOutput, "json", false, "Print JSON instead of formatted text")
	pf.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides logging.level)")

	root.AddCommand(
		newServeCmd(c),
		newCompareCmd(c),
		newPathCmd(c),
		newNeighborsCmd(c),
		newEgoCmd(c),
		newCommunitiesCmd(c),
		newStatsCmd(c),
		newValidateCmd(c),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.nodes != "" {
		cfg.Dataset.Nodes = c.nodes
		// A new node file without a relationship file is a combined document.
		if c.relationships == "" {
			cfg.Dataset.Relationships = ""
		}
	}
	if c.relationships != "" {
		cfg.Dataset.Relationships = c.relationships
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	cfg.Logging.Service = cfg.Telemetry.ServiceName

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger.Slog()
	c.closeLog = logger.Close
	slog.SetDefault(c.logger)

	c.cfg = cfg
	return nil
}

// loadService builds a service from the configuration and loads the dataset.
func (c *cli) loadService(ctx context.Context) (*lineage.Service, error) {
	svcCfg := lineage.ServiceConfigFrom(c.cfg)
	svcCfg.Logger = c.logger
	svc := lineage.NewService(svcCfg)
	if _, err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// printer returns the human output printer for cmd.
func (c *cli) printer(cmd *cobra.Command) *ux.Printer {
	return ux.NewPrinter(cmd.OutOrStdout())
}

// writeJSON prints v as indented JSON.
func (c *cli) writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listOrNone renders ids for human output.
func listOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
