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

import "fmt"

// DropReason explains why an edge was left out of the index.
type DropReason int

const (
	// DropUnknownSource means the edge source is not a known node.
	DropUnknownSource DropReason = iota

	// DropUnknownTarget means the edge target is not a known node.
	DropUnknownTarget

	// DropSelfLoop means the edge source and target are the same node.
	DropSelfLoop
)

// String returns the string representation of the DropReason.
func (r DropReason) String() string {
	switch r {
	case DropUnknownSource:
		return "unknown_source"
	case DropUnknownTarget:
		return "unknown_target"
	case DropSelfLoop:
		return "self_loop"
	default:
		return "unknown"
	}
}

// MarshalText lets DropReason serialize as its string form.
func (r DropReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// BuildWarning records an edge that New dropped.
//
// Dropped edges are a recoverable condition: curated content is expected
// to be occasionally inconsistent, so the engine still builds.
type BuildWarning struct {
	// Index is the position of the edge in the input slice.
	Index int `json:"index"`

	// Edge is the dropped edge as supplied.
	Edge Edge `json:"edge"`

	// Reason explains the drop.
	Reason DropReason `json:"reason"`
}

// String renders the warning for logs and CLI output.
func (w BuildWarning) String() string {
	return fmt.Sprintf("edge #%d %s -[%s]-> %s dropped: %s",
		w.Index, w.Edge.Source, w.Edge.Type, w.Edge.Target, w.Reason)
}

// Stats summarizes a built engine.
type Stats struct {
	// Nodes is the number of indexed nodes.
	Nodes int `json:"nodes"`

	// Edges is the number of indexed edges.
	Edges int `json:"edges"`

	// DroppedEdges is the number of input edges that were not indexed.
	DroppedEdges int `json:"dropped_edges"`

	// IsolatedNodes is the number of nodes with no incident edges.
	IsolatedNodes int `json:"isolated_nodes"`

	// Communities is the number of distinct community labels.
	Communities int `json:"communities"`

	// CommunityDetector names the detector that produced the labels.
	CommunityDetector string `json:"community_detector"`

	// CommunityIterations is the number of passes the detector ran.
	CommunityIterations int `json:"community_iterations"`

	// EraPolicy names the era-overlap policy in effect.
	EraPolicy string `json:"era_policy"`

	// DurationMicro is the build time in microseconds.
	DurationMicro int64 `json:"duration_micro"`
}
