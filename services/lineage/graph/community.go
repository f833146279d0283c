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
	"cmp"
	"slices"
)

// =============================================================================
// Community Detection
// =============================================================================

const (
	// DefaultLabelIterations caps label propagation passes.
	DefaultLabelIterations = 50
)

// CommunityGraph is the read-only view a CommunityDetector works on.
// Engine implements it.
type CommunityGraph interface {
	// NodeIDs returns every node ID in ascending order.
	NodeIDs() []string

	// NeighborIDs returns the distinct undirected neighbors of id.
	NeighborIDs(id string) []string
}

// Detection is the output of a CommunityDetector.
type Detection struct {
	// Labels maps every node ID to its community label.
	Labels map[string]string

	// Iterations is the number of passes the detector ran.
	Iterations int
}

// CommunityDetector partitions a graph into communities.
//
// Implementations must be deterministic and must label every node. Two
// nodes that are not connected by any path must never share a label.
type CommunityDetector interface {
	// Name identifies the detector in stats and logs.
	Name() string

	// Detect labels every node of g.
	Detect(g CommunityGraph) Detection
}

// Community is one group of nodes sharing a label.
type Community struct {
	// Label is the community label (a member node ID for both built-in detectors).
	Label string `json:"label"`

	// Members holds member node IDs in ascending order.
	Members []string `json:"members"`
}

// LabelPropagation is the default CommunityDetector.
//
// Every node starts labeled with its own ID. Each pass visits nodes in
// ascending ID order and updates labels in place: a node takes the label
// most frequent among its neighbors, breaking ties toward the smallest
// label. Isolated nodes keep their own ID. Detection stops after a pass
// with no change or after MaxIterations passes.
//
// Labels only ever move along edges, so disconnected nodes never share a
// label.
type LabelPropagation struct {
	// MaxIterations caps the number of passes. Default: 50
	MaxIterations int
}

// NewLabelPropagation returns a LabelPropagation with the given cap.
// maxIterations <= 0 uses DefaultLabelIterations.
func NewLabelPropagation(maxIterations int) *LabelPropagation {
	lp := &LabelPropagation{MaxIterations: maxIterations}
	lp.Validate()
	return lp
}

// Validate applies defaults for invalid values.
func (lp *LabelPropagation) Validate() {
	if lp.MaxIterations <= 0 {
		lp.MaxIterations = DefaultLabelIterations
	}
}

// Name implements CommunityDetector.
func (lp *LabelPropagation) Name() string {
	return "label_propagation"
}

// Detect implements CommunityDetector.
func (lp *LabelPropagation) Detect(g CommunityGraph) Detection {
	maxIter := lp.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultLabelIterations
	}

	ids := g.NodeIDs()
	labels := make(map[string]string, len(ids))
	neighbors := make(map[string][]string, len(ids))
	for _, id := range ids {
		labels[id] = id
		neighbors[id] = g.NeighborIDs(id)
	}

	iterations := 0
	counts := make(map[string]int)
	for iterations < maxIter {
		iterations++
		changed := false

		for _, id := range ids {
			nbrs := neighbors[id]
			if len(nbrs) == 0 {
				continue
			}

			clear(counts)
			for _, n := range nbrs {
				counts[labels[n]]++
			}

			best, bestCount := "", 0
			for label, c := range counts {
				if c > bestCount || (c == bestCount && label < best) {
					best, bestCount = label, c
				}
			}

			if best != labels[id] {
				labels[id] = best
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return Detection{Labels: labels, Iterations: iterations}
}

// ConnectedComponents labels each node with the smallest node ID in its
// connected component. It is coarser than LabelPropagation but never
// splits a component.
type ConnectedComponents struct{}

// Name implements CommunityDetector.
func (ConnectedComponents) Name() string {
	return "connected_components"
}

// Detect implements CommunityDetector.
func (ConnectedComponents) Detect(g CommunityGraph) Detection {
	ids := g.NodeIDs()
	labels := make(map[string]string, len(ids))

	// ids is ascending, so the first unlabeled node of a component is its
	// smallest member.
	for _, root := range ids {
		if _, done := labels[root]; done {
			continue
		}
		labels[root] = root
		queue := []string{root}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, n := range g.NeighborIDs(current) {
				if _, done := labels[n]; done {
					continue
				}
				labels[n] = root
				queue = append(queue, n)
			}
		}
	}

	return Detection{Labels: labels, Iterations: 1}
}

// ParseCommunityDetector builds a detector from its configured name.
// Unknown names return nil and false.
func ParseCommunityDetector(name string, maxIterations int) (CommunityDetector, bool) {
	switch name {
	case "", "label_propagation":
		return NewLabelPropagation(maxIterations), true
	case "connected_components":
		return ConnectedComponents{}, true
	default:
		return nil, false
	}
}

// groupCommunities turns a labeling into communities sorted by size
// descending, then label ascending.
func groupCommunities(sortedIDs []string, labels map[string]string) []Community {
	byLabel := make(map[string]*Community)
	var out []*Community
	for _, id := range sortedIDs {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		c, ok := byLabel[label]
		if !ok {
			c = &Community{Label: label}
			byLabel[label] = c
			out = append(out, c)
		}
		c.Members = append(c.Members, id)
	}

	slices.SortFunc(out, func(x, y *Community) int {
		if n := cmp.Compare(len(y.Members), len(x.Members)); n != 0 {
			return n
		}
		return cmp.Compare(x.Label, y.Label)
	})

	result := make([]Community, 0, len(out))
	for _, c := range out {
		result = append(result, *c)
	}
	return result
}

// Community returns the community label of id.
func (e *Engine) Community(id string) (string, bool) {
	if !e.HasNode(id) {
		return "", false
	}
	if label, ok := e.labels[id]; ok {
		return label, true
	}
	return id, true
}

// Communities returns every community, largest first.
func (e *Engine) Communities() []Community {
	out := make([]Community, len(e.communities))
	for i, c := range e.communities {
		out[i] = Community{Label: c.Label, Members: slices.Clone(c.Members)}
	}
	return out
}

// CommunityIterations returns the number of passes the detector ran.
func (e *Engine) CommunityIterations() int {
	return e.iterations
}

// SameCommunity reports whether a and b carry the same community label.
func (e *Engine) SameCommunity(a, b string) (bool, error) {
	if err := e.validatePair(a, b); err != nil {
		return false, err
	}
	return e.sameCommunity(a, b), nil
}

func (e *Engine) sameCommunity(a, b string) bool {
	la, _ := e.Community(a)
	lb, _ := e.Community(b)
	return la == lb
}
