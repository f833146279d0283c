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

// ComparisonResult bundles every pairwise metric for two nodes.
type ComparisonResult struct {
	// A is the first node ID.
	A string `json:"a"`

	// B is the second node ID.
	B string `json:"b"`

	// JaccardSimilarity is in [0, 1].
	JaccardSimilarity float64 `json:"jaccardSimilarity"`

	// SharedConnections holds common neighbors in ascending order.
	SharedConnections []string `json:"sharedConnections"`

	// ShortestPath is nil when B is unreachable from A.
	ShortestPath *PathResult `json:"shortestPath"`

	// CommonCommunity is true when both nodes carry the same community label.
	CommonCommunity bool `json:"commonCommunity"`

	// RelationshipsBetween holds every direct edge between A and B, in
	// either direction, in A's adjacency order.
	RelationshipsBetween []Edge `json:"relationshipsBetween"`

	// SharedTags holds common tags in ascending order.
	SharedTags []string `json:"sharedTags"`

	// EraOverlap follows the engine's EraPolicy.
	EraOverlap bool `json:"eraOverlap"`
}

// Compare computes every pairwise metric for a and b.
//
// Description:
//
//	Validates the pair once and then runs the similarity scorer, the path
//	finder and the community lookup. An invalid pair never yields a
//	zero-valued result.
//
// Inputs:
//
//	a, b - Distinct, known node IDs.
//
// Outputs:
//
//	*ComparisonResult - The metrics. Never nil when err is nil.
//	error - *InvalidPairError wrapping ErrSameNode or ErrUnknownNode.
//
// Example:
//
//	res, err := eng.Compare("plato", "aristotle")
//	if errors.Is(err, graph.ErrInvalidArgument) {
//	    return err
//	}
//	fmt.Printf("jaccard=%.2f hops=%d\n", res.JaccardSimilarity, res.ShortestPath.Length())
//
// Thread Safety:
//
//	Safe for concurrent use.
func (e *Engine) Compare(a, b string) (*ComparisonResult, error) {
	if err := e.validatePair(a, b); err != nil {
		return nil, err
	}

	return &ComparisonResult{
		A:                    a,
		B:                    b,
		JaccardSimilarity:    e.jaccard(a, b),
		SharedConnections:    e.sharedConnections(a, b),
		ShortestPath:         e.shortestPath(a, b),
		CommonCommunity:      e.sameCommunity(a, b),
		RelationshipsBetween: e.edgesBetween(a, b),
		SharedTags:           e.sharedTags(a, b),
		EraOverlap:           e.eraOverlap(a, b),
	}, nil
}

// RelationshipsBetween returns every direct edge joining a and b.
func (e *Engine) RelationshipsBetween(a, b string) ([]Edge, error) {
	if err := e.validatePair(a, b); err != nil {
		return nil, err
	}
	return e.edgesBetween(a, b), nil
}
