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

import "slices"

// PathResult is a shortest connecting path.
type PathResult struct {
	// Path holds node IDs from the start node to the end node inclusive.
	Path []string `json:"path"`

	// Relationships[i] is the edge used between Path[i] and Path[i+1].
	Relationships []Edge `json:"relationships"`
}

// Length returns the number of hops in the path.
func (p *PathResult) Length() int {
	if p == nil || len(p.Path) == 0 {
		return 0
	}
	return len(p.Path) - 1
}

// ShortestPath finds a minimum-hop path between a and b.
//
// Description:
//
//	Runs breadth-first search over the undirected adjacency index. Ties
//	between equally short paths are broken by adjacency order: neighbors
//	are explored in input order and the first discovery of a node fixes
//	its parent. The result is therefore stable across calls.
//
// Inputs:
//
//	a - Start node ID.
//	b - End node ID. Must differ from a.
//
// Outputs:
//
//	*PathResult - The path, or nil when b is unreachable from a.
//	error - *InvalidPairError wrapping ErrSameNode or ErrUnknownNode.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (e *Engine) ShortestPath(a, b string) (*PathResult, error) {
	if err := e.validatePair(a, b); err != nil {
		return nil, err
	}
	return e.shortestPath(a, b), nil
}

// shortestPath assumes a validated pair.
func (e *Engine) shortestPath(a, b string) *PathResult {
	type parentLink struct {
		from string
		edge int
	}

	parent := map[string]parentLink{a: {edge: -1}}
	queue := []string{a}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, inc := range e.adj[current] {
			if _, seen := parent[inc.neighbor]; seen {
				continue
			}
			parent[inc.neighbor] = parentLink{from: current, edge: inc.edge}

			if inc.neighbor == b {
				result := &PathResult{}
				for id := b; id != a; {
					link := parent[id]
					result.Path = append(result.Path, id)
					result.Relationships = append(result.Relationships, e.edges[link.edge])
					id = link.from
				}
				result.Path = append(result.Path, a)
				slices.Reverse(result.Path)
				slices.Reverse(result.Relationships)
				return result
			}

			queue = append(queue, inc.neighbor)
		}
	}

	return nil
}
