// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lineage serves the lineage comparison engine over HTTP.
//
// The Service owns an immutable engine snapshot built from a dataset on
// disk. Reload builds a new engine and swaps it in atomically; queries
// always run against one consistent snapshot and never block on a reload.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/lineage/services/lineage/cache"
	"github.com/AleutianAI/lineage/services/lineage/config"
	"github.com/AleutianAI/lineage/services/lineage/dataset"
	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/AleutianAI/lineage/services/lineage/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "lineage.service"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Source locates the dataset files.
	Source dataset.Source

	// GraphOptions are passed to graph.New on every load.
	GraphOptions []graph.Option

	// MaxEgoDepth bounds the depth accepted by EgoNetwork.
	MaxEgoDepth int

	// CompareCacheSize is the number of cached comparisons. 0 disables
	// the cache.
	CompareCacheSize int

	// Debounce is the quiet period used by Watch.
	Debounce time.Duration

	// Metrics receives OTel measurements. nil disables them.
	Metrics *telemetry.Metrics

	// Logger is the base logger. nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultServiceConfig returns a configuration built from config.DefaultConfig.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfigFrom(config.DefaultConfig())
}

// ServiceConfigFrom maps a validated configuration file onto a ServiceConfig.
func ServiceConfigFrom(cfg config.Config) ServiceConfig {
	return ServiceConfig{
		Source: dataset.Source{
			NodesPath:         cfg.Dataset.Nodes,
			RelationshipsPath: cfg.Dataset.RelationshipsPath(),
		},
		GraphOptions:     cfg.GraphOptions(),
		MaxEgoDepth:      cfg.Engine.MaxEgoDepth,
		CompareCacheSize: cfg.Cache.CompareEntries,
		Debounce:         cfg.Dataset.Debounce,
	}
}

// Snapshot is one loaded dataset and the engine built from it.
type Snapshot struct {
	// Engine is the frozen engine. Never nil.
	Engine *graph.Engine

	// Skipped lists relationship records rejected by the loader.
	Skipped []dataset.Skipped

	// Generation increases by one with every successful load.
	Generation uint64

	// LoadedAt is when the snapshot went live.
	LoadedAt time.Time
}

// compareKey scopes cached comparisons to one snapshot, so a reload never
// serves results from the previous engine.
type compareKey struct {
	gen  uint64
	a, b string
}

// Service answers lineage queries against the live snapshot.
//
// Thread Safety: All methods are safe for concurrent use.
type Service struct {
	config  ServiceConfig
	logger  *slog.Logger
	metrics *telemetry.Metrics

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	reloads    singleflight.Group

	compareCache *cache.LRU[compareKey, *graph.ComparisonResult]

	mu      sync.Mutex
	watcher *dataset.Watcher
	closed  bool
}

// NewService creates a Service. Call Load before serving queries.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxEgoDepth <= 0 || cfg.MaxEgoDepth > graph.MaxEgoDepth {
		cfg.MaxEgoDepth = graph.MaxEgoDepth
	}

	s := &Service{
		config:  cfg,
		logger:  cfg.Logger.With(slog.String("component", "lineage.service")),
		metrics: cfg.Metrics,
	}
	if cfg.CompareCacheSize > 0 {
		s.compareCache = cache.New[compareKey, *graph.ComparisonResult](cfg.CompareCacheSize,
			cache.WithEvictCallback(func(compareKey, *graph.ComparisonResult) {
				compareCacheEvictions.Inc()
			}),
		)
	}
	return s
}

// Load reads the dataset and makes the resulting engine live.
//
// Description:
//
//	Concurrent calls share one load. The shared load runs detached from
//	the caller's cancellation, since other callers may be waiting on it;
//	trace context still flows through. On failure the previous snapshot,
//	if any, stays live and the error is returned.
//
// Outputs:
//
//	*Snapshot - The snapshot that is live when Load returns.
//	error - A dataset or engine construction error.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.reloads.Do("load", func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Reload is Load under the name used by the HTTP and watch paths.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	return s.Load(ctx)
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Load",
		trace.WithAttributes(attribute.StringSlice("lineage.files", s.config.Source.Paths())),
	)
	defer span.End()
	logger := telemetry.LoggerWithTrace(ctx, s.logger)

	start := time.Now()
	snap, err := s.build(ctx, logger)
	elapsed := time.Since(start)

	if err != nil {
		reloadsTotal.WithLabelValues("error").Inc()
		s.metrics.RecordBuild(ctx, elapsed.Seconds(), 0, err)
		s.metrics.RecordError(ctx, "service", "load")
		telemetry.RecordError(span, err)
		logger.Error("dataset load failed",
			slog.String("error", err.Error()),
			slog.Bool("previous_snapshot_live", s.current.Load() != nil),
		)
		return nil, err
	}

	s.current.Store(snap)
	if s.compareCache != nil {
		// Entries are keyed by generation, so everything cached so far is dead.
		s.compareCache.Purge()
	}
	reloadsTotal.WithLabelValues("ok").Inc()
	snapshotNodes.Set(float64(snap.Engine.NodeCount()))
	snapshotEdges.Set(float64(snap.Engine.EdgeCount()))
	snapshotGeneration.Set(float64(snap.Generation))
	skippedRelationshipsTotal.Add(float64(len(snap.Skipped)))
	s.metrics.RecordBuild(ctx, elapsed.Seconds(), len(snap.Engine.Warnings()), nil)

	span.SetAttributes(
		attribute.Int64("lineage.generation", int64(snap.Generation)),
		attribute.Int("lineage.nodes", snap.Engine.NodeCount()),
		attribute.Int("lineage.edges", snap.Engine.EdgeCount()),
	)
	telemetry.SetSpanOK(span)

	logger.Info("snapshot live",
		slog.Uint64("generation", snap.Generation),
		slog.Int("nodes", snap.Engine.NodeCount()),
		slog.Int("edges", snap.Engine.EdgeCount()),
		slog.Int("dropped_edges", len(snap.Engine.Warnings())),
		slog.Int("skipped_relationships", len(snap.Skipped)),
		slog.Duration("duration", elapsed),
	)
	return snap, nil
}

func (s *Service) build(ctx context.Context, logger *slog.Logger) (*Snapshot, error) {
	ds, err := dataset.Load(ctx, s.config.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	opts := append([]graph.Option{graph.WithLogger(logger)}, s.config.GraphOptions...)
	eng, err := graph.New(ds.Nodes, ds.Edges, opts...)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	return &Snapshot{
		Engine:     eng,
		Skipped:    ds.Skipped,
		Generation: s.generation.Add(1),
		LoadedAt:   time.Now().UTC(),
	}, nil
}

// Snapshot returns the live snapshot or ErrNotReady.
func (s *Service) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Ready reports whether a snapshot is live.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Compare returns every pairwise metric for a and b.
//
// Description:
//
//	Results are cached per snapshot generation. Argument errors are
//	returned unwrapped from the engine, so errors.Is against
//	graph.ErrInvalidArgument, graph.ErrSameNode and graph.ErrUnknownNode
//	works.
//
// Outputs:
//
//	*graph.ComparisonResult - Shared with the cache; callers must not modify it.
//	error - ErrNotReady or a graph argument error.
func (s *Service) Compare(ctx context.Context, a, b string) (*graph.ComparisonResult, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Compare",
		trace.WithAttributes(attribute.String("lineage.a", a), attribute.String("lineage.b", b)),
	)
	defer span.End()
	start := time.Now()

	res, err := s.compare(a, b)
	s.finishQuery(ctx, span, "compare", start, err)
	return res, err
}

func (s *Service) compare(a, b string) (*graph.ComparisonResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if s.compareCache == nil {
		return snap.Engine.Compare(a, b)
	}

	res, hit, err := s.compareCache.GetOrLoad(compareKey{gen: snap.Generation, a: a, b: b}, func() (*graph.ComparisonResult, error) {
		return snap.Engine.Compare(a, b)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		compareCacheLookups.WithLabelValues("hit").Inc()
	} else {
		compareCacheLookups.WithLabelValues("miss").Inc()
	}
	return res, nil
}

// ShortestPath returns the shortest path from a to b, or nil when none exists.
func (s *Service) ShortestPath(ctx context.Context, a, b string) (*graph.PathResult, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.ShortestPath",
		trace.WithAttributes(attribute.String("lineage.from", a), attribute.String("lineage.to", b)),
	)
	defer span.End()
	start := time.Now()

	var path *graph.PathResult
	snap, err := s.Snapshot()
	if err == nil {
		path, err = snap.Engine.ShortestPath(a, b)
	}
	if path != nil {
		span.SetAttributes(attribute.Int("lineage.path_length", path.Length()))
	}
	s.finishQuery(ctx, span, "shortest_path", start, err)
	return path, err
}

// Neighbors returns the direct neighbors of id. An unknown id yields an
// empty result, not an error.
func (s *Service) Neighbors(ctx context.Context, id string) (graph.NeighborResult, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Neighbors",
		trace.WithAttributes(attribute.String("lineage.id", id)),
	)
	defer span.End()
	start := time.Now()

	var res graph.NeighborResult
	snap, err := s.Snapshot()
	if err == nil {
		res = snap.Engine.Neighbors(id)
		span.SetAttributes(attribute.Bool("lineage.known", snap.Engine.HasNode(id)))
	}
	s.finishQuery(ctx, span, "neighbors", start, err)
	return res, err
}

// EgoNetwork returns the k-hop layers and the induced ego network of id.
// An unknown id yields empty layers and an ego network with no members.
func (s *Service) EgoNetwork(ctx context.Context, id string, depth int) (*EgoResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.EgoNetwork",
		trace.WithAttributes(attribute.String("lineage.id", id), attribute.Int("lineage.depth", depth)),
	)
	defer span.End()
	start := time.Now()

	var res *EgoResponse
	var err error
	if depth < 1 || depth > s.config.MaxEgoDepth {
		err = fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidDepth, depth, s.config.MaxEgoDepth)
	} else {
		var snap *Snapshot
		snap, err = s.Snapshot()
		if err == nil {
			span.SetAttributes(attribute.Bool("lineage.known", snap.Engine.HasNode(id)))
			res = &EgoResponse{
				Depth:   depth,
				Layers:  snap.Engine.KHopNeighbors(id, depth),
				Network: snap.Engine.EgoNetwork(id, depth),
			}
		}
	}
	s.finishQuery(ctx, span, "ego_network", start, err)
	return res, err
}

// Node returns the node with id together with its community and degree.
func (s *Service) Node(ctx context.Context, id string) (*NodeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Node",
		trace.WithAttributes(attribute.String("lineage.id", id)),
	)
	defer span.End()
	start := time.Now()

	var res *NodeResponse
	snap, err := s.knownNode(id)
	if err == nil {
		node, _ := snap.Engine.Node(id)
		community, _ := snap.Engine.Community(id)
		res = &NodeResponse{Node: node, Community: community, Degree: snap.Engine.Degree(id)}
	}
	s.finishQuery(ctx, span, "node", start, err)
	return res, err
}

// Communities returns the live community partition.
func (s *Service) Communities() (*CommunitiesResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	stats := snap.Engine.Stats()
	return &CommunitiesResponse{
		Detector:    stats.CommunityDetector,
		Iterations:  snap.Engine.CommunityIterations(),
		Communities: snap.Engine.Communities(),
	}, nil
}

// Stats summarizes the live snapshot and the comparison cache.
func (s *Service) Stats() (*StatsResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	res := &StatsResponse{
		Generation: snap.Generation,
		LoadedAt:   snap.LoadedAt,
		Engine:     snap.Engine.Stats(),
		Skipped:    len(snap.Skipped),
	}
	if s.compareCache != nil {
		res.Cache = s.compareCache.Stats()
	}
	return res, nil
}

// Warnings returns the edges dropped by the engine and the relationship
// records skipped by the loader.
func (s *Service) Warnings() (*WarningsResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	res := &WarningsResponse{
		Dropped: snap.Engine.Warnings(),
		Skipped: snap.Skipped,
	}
	if res.Dropped == nil {
		res.Dropped = []graph.BuildWarning{}
	}
	if res.Skipped == nil {
		res.Skipped = []dataset.Skipped{}
	}
	return res, nil
}

// Watch reloads the snapshot whenever a dataset file changes.
//
// Description:
//
//	Returns once the watcher is running. Reload failures are logged and
//	leave the previous snapshot live. Watching stops when ctx is canceled
//	or Close is called.
//
// Outputs:
//
//	error - ErrServiceClosed, or a watcher setup error.
func (s *Service) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}
	if s.watcher != nil {
		return nil
	}

	w, err := dataset.NewWatcher(s.config.Source, s.config.Debounce, func(paths []string) {
		s.logger.Info("dataset changed, reloading", slog.Any("paths", paths))
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Warn("reload after change failed", slog.String("error", err.Error()))
		}
	}, s.logger)
	if err != nil {
		return fmt.Errorf("creating dataset watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("starting dataset watcher: %w", err)
	}
	s.watcher = w
	return nil
}

// Close stops the dataset watcher, if any. Queries keep working against
// the last snapshot.
func (s *Service) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.closed = true
	s.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// knownNode returns the live snapshot if it contains id.
func (s *Service) knownNode(id string) (*Snapshot, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if !snap.Engine.HasNode(id) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return snap, nil
}

// finishQuery records metrics and span status for one query.
func (s *Service) finishQuery(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	s.metrics.RecordQuery(ctx, op, time.Since(start).Seconds(), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordError(ctx, "service", errorKind(err))
		return
	}
	telemetry.SetSpanOK(span)
}

// errorKind maps an error to a low-cardinality metric label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrNodeNotFound):
		return "node_not_found"
	case errors.Is(err, ErrInvalidDepth):
		return "invalid_depth"
	case errors.Is(err, graph.ErrSameNode):
		return "same_node"
	case errors.Is(err, graph.ErrUnknownNode):
		return "unknown_node"
	default:
		return "internal"
	}
}
