// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lineage

import (
	"time"

	"github.com/AleutianAI/lineage/services/lineage/cache"
	"github.com/AleutianAI/lineage/services/lineage/dataset"
	"github.com/AleutianAI/lineage/services/lineage/graph"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a human-readable message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details carries the underlying error text when useful.
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is returned by GET /ready.
type ReadyResponse struct {
	Ready      bool      `json:"ready"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
}

// NodeResponse is returned by GET /nodes/:id.
type NodeResponse struct {
	Node      graph.Node `json:"node"`
	Community string     `json:"community,omitempty"`
	Degree    int        `json:"degree"`
}

// NeighborsResponse is returned by GET /nodes/:id/neighbors.
type NeighborsResponse struct {
	ID        string       `json:"id"`
	Neighbors []string     `json:"neighbors"`
	Edges     []graph.Edge `json:"edges"`
}

// EgoResponse is returned by GET /nodes/:id/ego.
type EgoResponse struct {
	Depth   int              `json:"depth"`
	Layers  []graph.HopLayer `json:"layers"`
	Network graph.EgoNetwork `json:"network"`
}

// PathResponse is returned by GET /path. Found is false when the nodes
// are disconnected.
type PathResponse struct {
	From  string            `json:"from"`
	To    string            `json:"to"`
	Found bool              `json:"found"`
	Path  *graph.PathResult `json:"path"`
}

// CommunitiesResponse is returned by GET /communities.
type CommunitiesResponse struct {
	Detector    string            `json:"detector"`
	Iterations  int               `json:"iterations"`
	Communities []graph.Community `json:"communities"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Generation uint64      `json:"generation"`
	LoadedAt   time.Time   `json:"loaded_at"`
	Engine     graph.Stats `json:"engine"`
	Skipped    int         `json:"skipped_relationships"`

	// Cache counters restart with every snapshot.
	Cache cache.Stats `json:"compare_cache"`
}

// WarningsResponse is returned by GET /warnings.
type WarningsResponse struct {
	Dropped []graph.BuildWarning `json:"dropped_edges"`
	Skipped []dataset.Skipped    `json:"skipped_relationships"`
}

// ReloadResponse is returned by POST /reload.
type ReloadResponse struct {
	Generation uint64      `json:"generation"`
	Engine     graph.Stats `json:"engine"`
}
