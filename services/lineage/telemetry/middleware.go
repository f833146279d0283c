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
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that matched no registered route, so
// arbitrary paths cannot blow up metric cardinality.
const unmatchedRoute = "unmatched"

// GinMetrics creates gin middleware that records request metrics.
//
// Description:
//
//	Records request count, duration and the in-flight gauge. The path
//	attribute is the route template (for example
//	"/v1/lineage/nodes/:id"), never the raw URL.
//
// Inputs:
//
//	metrics - Pre-configured Metrics instance. Must not be nil.
//
// Outputs:
//
//	gin.HandlerFunc - The middleware.
//	error - ErrNilMetrics if metrics is nil.
//
// Example:
//
//	mw, err := telemetry.GinMetrics(metrics)
//	if err != nil {
//	    return err
//	}
//	router.Use(otelgin.Middleware("lineage"), mw)
//
// Thread Safety: Safe for concurrent use.
func GinMetrics(metrics *Metrics) (gin.HandlerFunc, error) {
	if metrics == nil {
		return nil, ErrNilMetrics
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.HTTPActiveRequests.Add(ctx, 1)
		defer metrics.HTTPActiveRequests.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", route),
			attribute.Int("status", c.Writer.Status()),
		)
		metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}, nil
}
