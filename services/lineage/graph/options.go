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
	"io"
	"log/slog"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes.
	DefaultMaxNodes = 100_000

	// DefaultMaxEdges is the default maximum number of edges.
	DefaultMaxEdges = 1_000_000

	// MaxEgoDepth is the deepest ego network KHopNeighbors will expand.
	MaxEgoDepth = 6
)

// EraPolicy selects how EraOverlap decides two nodes are contemporaries.
type EraPolicy int

const (
	// EraPolicyTag treats two nodes as overlapping iff their Era tags are equal.
	EraPolicyTag EraPolicy = iota

	// EraPolicyPeriod treats two nodes as overlapping iff both have a Period
	// and the year ranges intersect.
	EraPolicyPeriod
)

// String returns the string representation of the EraPolicy.
func (p EraPolicy) String() string {
	switch p {
	case EraPolicyTag:
		return "tag"
	case EraPolicyPeriod:
		return "period"
	default:
		return "unknown"
	}
}

// ParseEraPolicy converts a config string into an EraPolicy.
// Unknown values return EraPolicyTag and false.
func ParseEraPolicy(s string) (EraPolicy, bool) {
	switch s {
	case "", "tag":
		return EraPolicyTag, true
	case "period":
		return EraPolicyPeriod, true
	default:
		return EraPolicyTag, false
	}
}

// Options configures engine construction.
type Options struct {
	// MaxNodes is the maximum number of input nodes. Default: 100,000
	MaxNodes int

	// MaxEdges is the maximum number of input edges. Default: 1,000,000
	MaxEdges int

	// Detector partitions the graph into communities.
	// Default: LabelPropagation with DefaultLabelIterations.
	Detector CommunityDetector

	// EraPolicy selects the era-overlap rule. Default: EraPolicyTag
	EraPolicy EraPolicy

	// Logger receives dropped-edge warnings. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for engine construction.
func DefaultOptions() Options {
	return Options{
		MaxNodes:  DefaultMaxNodes,
		MaxEdges:  DefaultMaxEdges,
		Detector:  NewLabelPropagation(DefaultLabelIterations),
		EraPolicy: EraPolicyTag,
		Logger:    slog.Default(),
	}
}

// Option is a functional option for configuring New.
type Option func(*Options)

// WithMaxNodes sets the maximum number of nodes. n <= 0 keeps the default.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxNodes = n
		}
	}
}

// WithMaxEdges sets the maximum number of edges. n <= 0 keeps the default.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxEdges = n
		}
	}
}

// WithCommunityDetector replaces the community detection policy.
// A nil detector keeps the default.
func WithCommunityDetector(d CommunityDetector) Option {
	return func(o *Options) {
		if d != nil {
			o.Detector = d
		}
	}
}

// WithEraPolicy sets the era-overlap rule.
func WithEraPolicy(p EraPolicy) Option {
	return func(o *Options) {
		o.EraPolicy = p
	}
}

// WithLogger sets the logger for construction warnings.
// A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		o.Logger = l
	}
}

// applyOptions applies functional options and returns the configured options.
func applyOptions(opts []Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
