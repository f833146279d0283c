// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the lineage comparison engine.
//
// The engine ingests people and entities (events, ideologies, institutions,
// texts, concepts) plus typed, directed relationships between them, and
// answers pairwise questions: shared neighbors, Jaccard similarity, the
// shortest connecting path with its relationship labels, shared tags, era
// overlap and community membership.
//
// # Lifecycle
//
// An Engine is built exactly once by New and never changes afterwards:
//  1. New validates nodes, drops invalid edges (recording a BuildWarning)
//  2. New builds the undirected adjacency index
//  3. New runs the configured CommunityDetector and caches the labeling
//  4. Every query reads frozen state
//
// If the dataset changes, build a new Engine.
//
// # Thread Safety
//
// Engine has no mutable state after New returns. Any number of goroutines
// may query it concurrently without locking.
package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine construction and queries.
var (
	// ErrDuplicateNode is returned by New when two nodes share an ID.
	// Ambiguous identity cannot be resolved, so the engine refuses to build.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidNode is returned by New for a node with an empty ID or a
	// kind outside {person, entity}.
	ErrInvalidNode = errors.New("invalid node")

	// ErrMaxNodesExceeded is returned when the input has more nodes than
	// the configured limit.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the input has more edges than
	// the configured limit.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrInvalidArgument is the parent of every query-time argument error.
	// It is distinct from a valid query with an empty result.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSameNode is returned when a pairwise query names the same node twice.
	ErrSameNode = fmt.Errorf("%w: nodes must be distinct", ErrInvalidArgument)

	// ErrUnknownNode is returned when a pairwise query names a node that is
	// not in the graph.
	ErrUnknownNode = fmt.Errorf("%w: unknown node", ErrInvalidArgument)
)

// DuplicateNodeError reports the positions of a duplicated node ID.
type DuplicateNodeError struct {
	// ID is the duplicated node ID.
	ID string

	// FirstIndex is the input position of the first node with ID.
	FirstIndex int

	// SecondIndex is the input position of the conflicting node.
	SecondIndex int
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q at index %d duplicates index %d", e.ID, e.SecondIndex, e.FirstIndex)
}

// Unwrap returns ErrDuplicateNode for errors.Is support.
func (e *DuplicateNodeError) Unwrap() error {
	return ErrDuplicateNode
}

// InvalidPairError reports a rejected pairwise query.
type InvalidPairError struct {
	// A is the first node ID of the query.
	A string

	// B is the second node ID of the query.
	B string

	// Err is ErrSameNode or ErrUnknownNode.
	Err error
}

// Error implements the error interface.
func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("pair (%q, %q): %v", e.A, e.B, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InvalidPairError) Unwrap() error {
	return e.Err
}
