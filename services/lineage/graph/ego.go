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

// HopLayer is the set of nodes first reached at a given distance.
type HopLayer struct {
	// Depth is the hop distance from the center (>= 1).
	Depth int `json:"depth"`

	// IDs holds node IDs in discovery order.
	IDs []string `json:"ids"`
}

// EgoNode is a member of an ego network with its hop distance.
type EgoNode struct {
	ID       string `json:"id"`
	Distance int    `json:"distance"`
}

// EgoNetwork is the induced neighborhood of a center node.
type EgoNetwork struct {
	// Center is the ID the network was expanded from.
	Center string `json:"center"`

	// Nodes starts with the center at distance 0, followed by each layer.
	Nodes []EgoNode `json:"nodes"`

	// Edges holds each edge whose endpoints are both in Nodes, once, in
	// order of first discovery.
	Edges []Edge `json:"edges"`
}

// clampDepth limits depth to [0, MaxEgoDepth].
func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxEgoDepth {
		return MaxEgoDepth
	}
	return depth
}

// KHopNeighbors returns the BFS layers around id up to depth hops.
//
// Description:
//
//	Layer k holds the nodes whose shortest distance from id is exactly k.
//	Layers are expanded by repeated Neighbors calls, so members appear in
//	adjacency order. Expansion stops early when a layer is empty.
//
// Inputs:
//
//	id - The center node ID. Unknown IDs yield no layers.
//	depth - Number of hops. depth <= 0 yields no layers; values above
//	        MaxEgoDepth are clamped.
//
// Outputs:
//
//	[]HopLayer - Non-empty layers in increasing depth.
func (e *Engine) KHopNeighbors(id string, depth int) []HopLayer {
	depth = clampDepth(depth)
	layers := make([]HopLayer, 0, depth)
	if !e.HasNode(id) || depth == 0 {
		return layers
	}

	visited := map[string]struct{}{id: {}}
	frontier := []string{id}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, current := range frontier {
			for _, n := range e.NeighborIDs(current) {
				if _, ok := visited[n]; ok {
					continue
				}
				visited[n] = struct{}{}
				next = append(next, n)
			}
		}
		if len(next) == 0 {
			break
		}
		layers = append(layers, HopLayer{Depth: d, IDs: next})
		frontier = next
	}
	return layers
}

// EgoNetwork returns the center, its k-hop neighbors and the edges among them.
// Unknown IDs and depth <= 0 yield an empty network with only Center set.
func (e *Engine) EgoNetwork(id string, depth int) EgoNetwork {
	ego := EgoNetwork{
		Center: id,
		Nodes:  []EgoNode{},
		Edges:  []Edge{},
	}
	if !e.HasNode(id) || clampDepth(depth) == 0 {
		return ego
	}

	members := map[string]struct{}{id: {}}
	ego.Nodes = append(ego.Nodes, EgoNode{ID: id, Distance: 0})
	for _, layer := range e.KHopNeighbors(id, depth) {
		for _, n := range layer.IDs {
			members[n] = struct{}{}
			ego.Nodes = append(ego.Nodes, EgoNode{ID: n, Distance: layer.Depth})
		}
	}

	seen := make(map[int]struct{})
	for _, member := range ego.Nodes {
		for _, inc := range e.adj[member.ID] {
			if _, ok := members[inc.neighbor]; !ok {
				continue
			}
			if _, ok := seen[inc.edge]; ok {
				continue
			}
			seen[inc.edge] = struct{}{}
			ego.Edges = append(ego.Edges, e.edges[inc.edge])
		}
	}
	return ego
}
