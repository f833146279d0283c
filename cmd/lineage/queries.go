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
	"fmt"

	"github.com/AleutianAI/lineage/services/lineage"
	"github.com/AleutianAI/lineage/services/lineage/dataset"
	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned by validate --strict when anything was
// dropped or skipped.
var errValidationFailed = errors.New("dataset has dropped edges or skipped records")

func newCompareCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "compare A B",
		Short: "Show every pairwise metric for two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, res)
			}
			printComparison(c, cmd, res)
			return nil
		},
	}
}

func printComparison(c *cli, cmd *cobra.Command, res *graph.ComparisonResult) {
	p := c.printer(cmd)
	p.Title(fmt.Sprintf("%s ↔ %s", res.A, res.B))
	p.KeyValue("jaccard similarity", fmt.Sprintf("%.3f", res.JaccardSimilarity))
	p.KeyValue("shared connections", listOrNone(res.SharedConnections))
	p.KeyValue("shared tags", listOrNone(res.SharedTags))
	p.KeyValue("common community", res.CommonCommunity)
	p.KeyValue("era overlap", res.EraOverlap)

	p.Section("Shortest path")
	printPath(c, cmd, res.ShortestPath)

	p.Section("Direct relationships")
	if len(res.RelationshipsBetween) == 0 {
		p.Muted("  (none)")
	}
	for _, e := range res.RelationshipsBetween {
		p.Item(fmt.Sprintf("%s -[%s]-> %s", e.Source, e.Type, e.Target))
	}
}

func printPath(c *cli, cmd *cobra.Command, path *graph.PathResult) {
	p := c.printer(cmd)
	if path == nil {
		p.Muted("  not connected")
		return
	}
	labels := make([]string, len(path.Relationships))
	for i, e := range path.Relationships {
		labels[i] = string(e.Type)
	}
	p.Chain(path.Path, labels)
	p.KeyValue("hops", path.Length())
}

func newPathCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "path FROM TO",
		Short: "Find the shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			path, err := svc.ShortestPath(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, lineage.PathResponse{From: args[0], To: args[1], Found: path != nil, Path: path})
			}
			c.printer(cmd).Title(fmt.Sprintf("%s → %s", args[0], args[1]))
			printPath(c, cmd, path)
			return nil
		},
	}
}

func newNeighborsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors ID",
		Short: "List the direct neighbors of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Neighbors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, lineage.NeighborsResponse{ID: args[0], Neighbors: res.IDs, Edges: res.Edges})
			}
			p := c.printer(cmd)
			p.Title(fmt.Sprintf("%s (%d neighbors)", args[0], len(res.IDs)))
			for _, e := range res.Edges {
				p.Item(fmt.Sprintf("%s -[%s]-> %s", e.Source, e.Type, e.Target))
			}
			return nil
		},
	}
}

func newEgoCmd(c *cli) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "ego ID",
		Short: "Show the k-hop neighborhood of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("depth") {
				depth = c.cfg.Engine.MaxEgoDepth
			}
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.EgoNetwork(cmd.Context(), args[0], depth)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, res)
			}
			p := c.printer(cmd)
			p.Title(fmt.Sprintf("%s, %d hops", args[0], res.Depth))
			for _, layer := range res.Layers {
				p.KeyValue(fmt.Sprintf("hop %d", layer.Depth), listOrNone(layer.IDs))
			}
			p.KeyValue("edges", len(res.Network.Edges))
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 2, "Number of hops")
	return cmd
}

func newCommunitiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "communities",
		Short: "List detected communities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Communities()
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, res)
			}
			p := c.printer(cmd)
			p.Title(fmt.Sprintf("%d communities (%s, %d iterations)", len(res.Communities), res.Detector, res.Iterations))
			for _, community := range res.Communities {
				p.KeyValue(community.Label, listOrNone(community.Members))
			}
			return nil
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Stats()
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.writeJSON(cmd, res)
			}
			printStats(c, cmd, res)
			return nil
		},
	}
}

func printStats(c *cli, cmd *cobra.Command, res *lineage.StatsResponse) {
	p := c.printer(cmd)
	s := res.Engine
	p.Title("Dataset")
	p.KeyValue("nodes", s.Nodes)
	p.KeyValue("edges", s.Edges)
	p.KeyValue("dropped edges", s.DroppedEdges)
	p.KeyValue("skipped records", res.Skipped)
	p.KeyValue("isolated nodes", s.IsolatedNodes)
	p.KeyValue("communities", fmt.Sprintf("%d (%s)", s.Communities, s.CommunityDetector))
	p.KeyValue("era policy", s.EraPolicy)
}

func newValidateCmd(c *cli) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the dataset and report problems",
		Long: `validate loads the dataset and builds the engine exactly as serve would.
Invalid nodes fail the command. Dropped edges and skipped relationship records
are reported; with --strict they fail the command too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				if !c.jsonOutput {
					c.printer(cmd).Error("%v", err)
				}
				return err
			}
			warnings, err := svc.Warnings()
			if err != nil {
				return err
			}
			problems := len(warnings.Dropped) + len(warnings.Skipped)

			if c.jsonOutput {
				if err := c.writeJSON(cmd, warnings); err != nil {
					return err
				}
			} else {
				printWarnings(c, cmd, warnings.Dropped, warnings.Skipped)
			}

			if strict && problems > 0 {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on dropped edges or skipped records")
	return cmd
}

func printWarnings(c *cli, cmd *cobra.Command, dropped []graph.BuildWarning, skipped []dataset.Skipped) {
	p := c.printer(cmd)
	if len(dropped) == 0 && len(skipped) == 0 {
		p.Success("dataset is clean")
		return
	}
	for _, w := range dropped {
		p.Warning("%s", w)
	}
	for _, s := range skipped {
		p.Warning("%s", s)
	}
	p.Muted("%d dropped edges, %d skipped records", len(dropped), len(skipped))
}
