// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the OTel instruments of the lineage service.
//
// All metrics use the "lineage_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks in-flight HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// --- Engine Metrics ---

	// EngineBuildsTotal counts engine builds by status.
	EngineBuildsTotal metric.Int64Counter

	// EngineBuildDuration records dataset load plus engine build time in seconds.
	EngineBuildDuration metric.Float64Histogram

	// QueriesTotal counts engine queries by operation and status.
	QueriesTotal metric.Int64Counter

	// QueryDuration records engine query duration in seconds.
	QueryDuration metric.Float64Histogram

	// DroppedEdgesTotal counts relationships dropped while building.
	DroppedEdgesTotal metric.Int64Counter

	// --- Error Metrics ---

	// ErrorsTotal counts errors by component and kind.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers every lineage instrument on meter.
//
// Example:
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("lineage"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
//	metrics.RecordQuery(ctx, "compare", time.Since(start), err)
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"lineage_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"lineage_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"lineage_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	m.EngineBuildsTotal, err = meter.Int64Counter(
		"lineage_engine_builds_total",
		metric.WithDescription("Total engine build operations"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine_builds_total: %w", err)
	}

	m.EngineBuildDuration, err = meter.Float64Histogram(
		"lineage_engine_build_duration_seconds",
		metric.WithDescription("Dataset load and engine build duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine_build_duration: %w", err)
	}

	m.QueriesTotal, err = meter.Int64Counter(
		"lineage_queries_total",
		metric.WithDescription("Total engine queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create queries_total: %w", err)
	}

	m.QueryDuration, err = meter.Float64Histogram(
		"lineage_query_duration_seconds",
		metric.WithDescription("Engine query duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1),
	)
	if err != nil {
		return nil, fmt.Errorf("create query_duration: %w", err)
	}

	m.DroppedEdgesTotal, err = meter.Int64Counter(
		"lineage_dropped_edges_total",
		metric.WithDescription("Relationships dropped while building the engine"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create dropped_edges_total: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"lineage_errors_total",
		metric.WithDescription("Total errors by component and kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RecordQuery records one engine query. A nil receiver is a no-op.
func (m *Metrics) RecordQuery(ctx context.Context, op string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	)
	m.QueriesTotal.Add(ctx, 1, attrs)
	m.QueryDuration.Record(ctx, seconds, attrs)
}

// RecordBuild records one engine build. A nil receiver is a no-op.
func (m *Metrics) RecordBuild(ctx context.Context, seconds float64, dropped int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.EngineBuildsTotal.Add(ctx, 1, attrs)
	m.EngineBuildDuration.Record(ctx, seconds, attrs)
	if dropped > 0 {
		m.DroppedEdgesTotal.Add(ctx, int64(dropped))
	}
}

// RecordError counts an error for component. A nil receiver is a no-op.
func (m *Metrics) RecordError(ctx context.Context, component, kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("kind", kind),
	))
}
