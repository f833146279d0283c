// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// adjacency is one undirected incidence: the node on the other side and the
// index of the edge in Engine.edges.
type adjacency struct {
	neighbor string
	edge     int
}

// Engine is the frozen, queryable lineage graph.
//
// Thread Safety:
//
//	Safe for concurrent use. All fields are written by New only.
type Engine struct {
	// nodes indexes nodes by ID.
	nodes map[string]*Node

	// order holds node IDs in input order.
	order []string

	// sortedIDs holds node IDs in ascending order.
	sortedIDs []string

	// edges holds only the indexed (valid) edges, in input order.
	edges []Edge

	// adj maps a node ID to its incidences. Both directions of every edge
	// are appended in input order.
	adj map[string][]adjacency

	labels      map[string]string
	communities []Community
	iterations  int

	detectorName string
	eraPolicy    EraPolicy

	warnings []BuildWarning
	stats    Stats
}

// New builds an Engine from nodes and edges.
//
// Description:
//
//	Validates and indexes every node, drops edges whose endpoints are
//	unknown or identical, builds the undirected adjacency index and runs
//	the configured CommunityDetector once. The inputs are copied; the
//	caller may reuse them afterwards.
//
// Inputs:
//
//	nodes - People and entities. IDs must be unique and non-empty.
//	edges - Directed relationships. Invalid edges become BuildWarnings.
//	opts - Functional options (WithLogger, WithCommunityDetector, ...).
//
// Outputs:
//
//	*Engine - The frozen engine. Never nil when err is nil.
//	error - ErrDuplicateNode (as *DuplicateNodeError), ErrInvalidNode,
//	        ErrMaxNodesExceeded or ErrMaxEdgesExceeded.
//
// Example:
//
//	eng, err := graph.New(nodes, edges, graph.WithEraPolicy(graph.EraPolicyPeriod))
//	if err != nil {
//	    return fmt.Errorf("building engine: %w", err)
//	}
//	for _, w := range eng.Warnings() {
//	    log.Println(w)
//	}
func New(nodes []Node, edges []Edge, opts ...Option) (*Engine, error) {
	start := time.Now()
	options := applyOptions(opts)
	logger := options.Logger

	if len(nodes) > options.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes, limit %d", ErrMaxNodesExceeded, len(nodes), options.MaxNodes)
	}
	if len(edges) > options.MaxEdges {
		return nil, fmt.Errorf("%w: %d edges, limit %d", ErrMaxEdgesExceeded, len(edges), options.MaxEdges)
	}

	e := &Engine{
		nodes:        make(map[string]*Node, len(nodes)),
		order:        make([]string, 0, len(nodes)),
		edges:        make([]Edge, 0, len(edges)),
		adj:          make(map[string][]adjacency, len(nodes)),
		detectorName: options.Detector.Name(),
		eraPolicy:    options.EraPolicy,
	}

	firstIndex := make(map[string]int, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node at index %d has an empty id", ErrInvalidNode, i)
		}
		if !n.Kind.Valid() {
			return nil, fmt.Errorf("%w: node %q has kind %q", ErrInvalidNode, n.ID, n.Kind)
		}
		if first, dup := firstIndex[n.ID]; dup {
			return nil, &DuplicateNodeError{ID: n.ID, FirstIndex: first, SecondIndex: i}
		}
		firstIndex[n.ID] = i
		c := n.clone()
		e.nodes[n.ID] = &c
		e.order = append(e.order, n.ID)
	}

	e.sortedIDs = slices.Clone(e.order)
	slices.Sort(e.sortedIDs)

	for i, edge := range edges {
		reason, ok := e.checkEdge(edge)
		if !ok {
			w := BuildWarning{Index: i, Edge: edge, Reason: reason}
			e.warnings = append(e.warnings, w)
			logger.Warn("dropping relationship",
				slog.Int("index", i),
				slog.String("source", edge.Source),
				slog.String("target", edge.Target),
				slog.String("type", string(edge.Type)),
				slog.String("reason", reason.String()),
			)
			continue
		}
		idx := len(e.edges)
		e.edges = append(e.edges, edge)
		e.adj[edge.Source] = append(e.adj[edge.Source], adjacency{neighbor: edge.Target, edge: idx})
		e.adj[edge.Target] = append(e.adj[edge.Target], adjacency{neighbor: edge.Source, edge: idx})
	}

	detection := options.Detector.Detect(e)
	e.labels = detection.Labels
	e.iterations = detection.Iterations
	e.communities = groupCommunities(e.sortedIDs, e.labels)

	isolated := 0
	for _, id := range e.order {
		if len(e.adj[id]) == 0 {
			isolated++
		}
	}

	e.stats = Stats{
		Nodes:               len(e.nodes),
		Edges:               len(e.edges),
		DroppedEdges:        len(e.warnings),
		IsolatedNodes:       isolated,
		Communities:         len(e.communities),
		CommunityDetector:   e.detectorName,
		CommunityIterations: e.iterations,
		EraPolicy:           e.eraPolicy.String(),
		DurationMicro:       time.Since(start).Microseconds(),
	}

	logger.Info("lineage engine built",
		slog.Int("nodes", e.stats.Nodes),
		slog.Int("edges", e.stats.Edges),
		slog.Int("dropped_edges", e.stats.DroppedEdges),
		slog.Int("communities", e.stats.Communities),
		slog.String("detector", e.detectorName),
		slog.Int("iterations", e.iterations),
	)

	return e, nil
}

// checkEdge reports whether edge can be indexed and, if not, why.
func (e *Engine) checkEdge(edge Edge) (DropReason, bool) {
	if _, ok := e.nodes[edge.Source]; !ok {
		return DropUnknownSource, false
	}
	if _, ok := e.nodes[edge.Target]; !ok {
		return DropUnknownTarget, false
	}
	if edge.Source == edge.Target {
		return DropSelfLoop, false
	}
	return 0, true
}

// HasNode reports whether id is indexed.
func (e *Engine) HasNode(id string) bool {
	_, ok := e.nodes[id]
	return ok
}

// Node returns a copy of the node with the given ID.
func (e *Engine) Node(id string) (Node, bool) {
	n, ok := e.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Nodes returns copies of every node in input order.
func (e *Engine) Nodes() []Node {
	out := make([]Node, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.nodes[id].clone())
	}
	return out
}

// NodeIDs returns all node IDs in ascending order.
func (e *Engine) NodeIDs() []string {
	return slices.Clone(e.sortedIDs)
}

// Edges returns the indexed edges in input order. Dropped edges are
// reported by Warnings instead.
func (e *Engine) Edges() []Edge {
	return slices.Clone(e.edges)
}

// NodeCount returns the number of indexed nodes.
func (e *Engine) NodeCount() int {
	return len(e.nodes)
}

// EdgeCount returns the number of indexed edges.
func (e *Engine) EdgeCount() int {
	return len(e.edges)
}

// Warnings returns the edges New dropped, in input order.
func (e *Engine) Warnings() []BuildWarning {
	return slices.Clone(e.warnings)
}

// Stats returns build statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// EraPolicy returns the era-overlap rule the engine was built with.
func (e *Engine) EraPolicy() EraPolicy {
	return e.eraPolicy
}

// validatePair rejects a == b and unknown IDs.
func (e *Engine) validatePair(a, b string) error {
	if a == b {
		return &InvalidPairError{A: a, B: b, Err: ErrSameNode}
	}
	if !e.HasNode(a) || !e.HasNode(b) {
		return &InvalidPairError{A: a, B: b, Err: ErrUnknownNode}
	}
	return nil
}
