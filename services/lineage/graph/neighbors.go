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

// NeighborResult is the direct neighborhood of a node.
type NeighborResult struct {
	// IDs holds distinct neighbor IDs in first-seen adjacency order.
	IDs []string `json:"ids"`

	// Edges holds every incident edge in adjacency order.
	Edges []Edge `json:"edges"`
}

// Neighbors returns the direct neighbors of id and its incident edges.
//
// Description:
//
//	Edge direction is ignored. A neighbor connected by several edges
//	appears once in IDs, while every edge appears in Edges.
//
// Inputs:
//
//	id - The node ID. Unknown IDs are not an error.
//
// Outputs:
//
//	NeighborResult - Empty (non-nil slices) for unknown or isolated nodes.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (e *Engine) Neighbors(id string) NeighborResult {
	incident := e.adj[id]
	result := NeighborResult{
		IDs:   make([]string, 0, len(incident)),
		Edges: make([]Edge, 0, len(incident)),
	}
	seen := make(map[string]struct{}, len(incident))
	for _, a := range incident {
		result.Edges = append(result.Edges, e.edges[a.edge])
		if _, ok := seen[a.neighbor]; ok {
			continue
		}
		seen[a.neighbor] = struct{}{}
		result.IDs = append(result.IDs, a.neighbor)
	}
	return result
}

// NeighborIDs returns the distinct neighbor IDs of id in adjacency order.
func (e *Engine) NeighborIDs(id string) []string {
	return e.Neighbors(id).IDs
}

// Degree returns the number of edges incident to id.
func (e *Engine) Degree(id string) int {
	return len(e.adj[id])
}

// neighborSet returns the distinct neighbors of id, excluding the given IDs.
func (e *Engine) neighborSet(id string, exclude ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(e.adj[id]))
	for _, a := range e.adj[id] {
		set[a.neighbor] = struct{}{}
	}
	for _, x := range exclude {
		delete(set, x)
	}
	return set
}

// edgesBetween returns every edge joining a and b in a's adjacency order.
func (e *Engine) edgesBetween(a, b string) []Edge {
	var out []Edge
	for _, inc := range e.adj[a] {
		if inc.neighbor == b {
			out = append(out, e.edges[inc.edge])
		}
	}
	if out == nil {
		out = []Edge{}
	}
	return out
}
