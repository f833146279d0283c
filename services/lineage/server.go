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
	"fmt"

	"github.com/AleutianAI/lineage/services/lineage/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig controls the middleware stack of NewRouter.
type RouterConfig struct {
	// ServiceName is the otelgin server name.
	ServiceName string

	// RateLimitRPS is the per-client request rate. 0 disables limiting.
	RateLimitRPS float64

	// RateLimitBurst is the per-client burst.
	RateLimitBurst int

	// DefaultEgoDepth is used when /ego omits depth.
	DefaultEgoDepth int

	// Metrics enables request metrics. nil disables them.
	Metrics *telemetry.Metrics

	// AccessLog enables gin's request logger.
	AccessLog bool
}

// NewRouter builds the full HTTP handler for svc.
//
// Description:
//
//	Installs recovery, OTel tracing, request metrics and rate limiting in
//	that order, registers /v1/lineage/* and, when the Prometheus exporter
//	is enabled, GET /metrics. /metrics is not rate limited.
//
// Outputs:
//
//	*gin.Engine - Ready to serve.
//	error - Non-nil only if the metrics middleware cannot be created.
func NewRouter(svc *Service, cfg RouterConfig) (*gin.Engine, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "lineage"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(otelgin.Middleware(cfg.ServiceName))

	if cfg.Metrics != nil {
		mw, err := telemetry.GinMetrics(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("creating metrics middleware: %w", err)
		}
		router.Use(mw)
	}

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	v1 := router.Group("/v1")
	if cfg.RateLimitRPS > 0 {
		v1.Use(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}
	RegisterRoutes(v1, NewHandlers(svc).WithDefaultDepth(cfg.DefaultEgoDepth))

	return router, nil
}
