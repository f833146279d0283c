// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lineage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide service counters. These sit beside the OTel instruments in
// telemetry and are served from the same /metrics endpoint.
var (
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_reloads_total",
		Help: "Dataset loads by outcome",
	}, []string{"status"})

	snapshotNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_snapshot_nodes",
		Help: "Nodes in the live engine snapshot",
	})

	snapshotEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_snapshot_edges",
		Help: "Edges in the live engine snapshot",
	})

	snapshotGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_snapshot_generation",
		Help: "Generation number of the live engine snapshot",
	})

	skippedRelationshipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_skipped_relationships_total",
		Help: "Relationship records rejected by dataset validation",
	})

	compareCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_compare_cache_lookups_total",
		Help: "Comparison cache lookups by result",
	}, []string{"result"})

	compareCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_compare_cache_evictions_total",
		Help: "Comparisons evicted from the cache for capacity",
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)
