// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for the
// lineage service.
//
// # Setup
//
//	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("lineage"))
//
// # Exporters
//
// Traces go to an OTLP gRPC collector ("otlp"), to stdout ("stdout") or
// nowhere ("none"). Metrics are exposed through a Prometheus registry
// ("prometheus", served by MetricsHandler), printed periodically
// ("stdout") or disabled ("none").
//
// # Logging
//
// LoggerWithTrace attaches trace_id and span_id to an slog.Logger so log
// lines can be joined with spans.
package telemetry
