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

// SharedConnections returns the nodes adjacent to both a and b, excluding
// a and b themselves, in ascending ID order.
func (e *Engine) SharedConnections(a, b string) ([]string, error) {
	if err := e.validatePair(a, b); err != nil {
		return nil, err
	}
	return e.sharedConnections(a, b), nil
}

func (e *Engine) sharedConnections(a, b string) []string {
	na := e.neighborSet(a, a, b)
	nb := e.neighborSet(b, a, b)
	shared := make([]string, 0)
	for id := range na {
		if _, ok := nb[id]; ok {
			shared = append(shared, id)
		}
	}
	slices.Sort(shared)
	return shared
}

// JaccardSimilarity returns |N(a) ∩ N(b)| / |N(a) ∪ N(b)|, where both
// neighbor sets exclude a and b. The result is in [0, 1] and is exactly 0
// when the union is empty.
func (e *Engine) JaccardSimilarity(a, b string) (float64, error) {
	if err := e.validatePair(a, b); err != nil {
		return 0, err
	}
	return e.jaccard(a, b), nil
}

func (e *Engine) jaccard(a, b string) float64 {
	na := e.neighborSet(a, a, b)
	nb := e.neighborSet(b, a, b)

	intersection := 0
	for id := range na {
		if _, ok := nb[id]; ok {
			intersection++
		}
	}
	union := len(na) + len(nb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SharedTags returns the tags carried by both a and b, deduplicated and in
// ascending order.
func (e *Engine) SharedTags(a, b string) ([]string, error) {
	if err := e.validatePair(a, b); err != nil {
		return nil, err
	}
	return e.sharedTags(a, b), nil
}

func (e *Engine) sharedTags(a, b string) []string {
	tagsB := make(map[string]struct{}, len(e.nodes[b].Tags))
	for _, t := range e.nodes[b].Tags {
		tagsB[t] = struct{}{}
	}
	shared := make([]string, 0)
	for _, t := range e.nodes[a].Tags {
		if _, ok := tagsB[t]; ok {
			shared = append(shared, t)
			delete(tagsB, t)
		}
	}
	slices.Sort(shared)
	return shared
}

// EraOverlap reports whether a and b lived in the same era.
//
// With EraPolicyTag (the default) this is equality of the Era tags; two
// nodes with no era never overlap. With EraPolicyPeriod both nodes need a
// Period and the closed year ranges must intersect.
func (e *Engine) EraOverlap(a, b string) (bool, error) {
	if err := e.validatePair(a, b); err != nil {
		return false, err
	}
	return e.eraOverlap(a, b), nil
}

func (e *Engine) eraOverlap(a, b string) bool {
	na, nb := e.nodes[a], e.nodes[b]
	switch e.eraPolicy {
	case EraPolicyPeriod:
		if na.Period == nil || nb.Period == nil {
			return false
		}
		return na.Period.Overlaps(*nb.Period)
	default:
		return na.Era != "" && na.Era == nb.Era
	}
}
