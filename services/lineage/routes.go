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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all lineage routes with the router.
//
// Description:
//
//	Registers all /v1/lineage/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Query Endpoints:
//
//	GET  /v1/lineage/compare?a=&b= - Every pairwise metric
//	GET  /v1/lineage/path?from=&to= - Shortest path with relationship labels
//	GET  /v1/lineage/nodes/:id - Node with community and degree
//	GET  /v1/lineage/nodes/:id/neighbors - Direct neighbors and incident edges
//	GET  /v1/lineage/nodes/:id/ego?depth=N - k-hop layers and ego network
//	GET  /v1/lineage/communities - Community partition
//
// Dataset Endpoints:
//
//	GET  /v1/lineage/stats - Snapshot and cache statistics
//	GET  /v1/lineage/warnings - Dropped edges and skipped records
//	POST /v1/lineage/reload - Reload the dataset from disk
//
// Health Endpoints:
//
//	GET  /v1/lineage/health - Health check
//	GET  /v1/lineage/ready - Readiness check
//
// Example:
//
//	service := lineage.NewService(lineage.DefaultServiceConfig())
//	handlers := lineage.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	lineage.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	lg := rg.Group("/lineage")
	{
		lg.GET("/health", handlers.HandleHealth)
		lg.GET("/ready", handlers.HandleReady)

		lg.GET("/compare", handlers.HandleCompare)
		lg.GET("/path", handlers.HandlePath)
		lg.GET("/communities", handlers.HandleCommunities)

		lg.GET("/nodes/:id", handlers.HandleNode)
		lg.GET("/nodes/:id/neighbors", handlers.HandleNeighbors)
		lg.GET("/nodes/:id/ego", handlers.HandleEgo)

		lg.GET("/stats", handlers.HandleStats)
		lg.GET("/warnings", handlers.HandleWarnings)
		lg.POST("/reload", handlers.HandleReload)
	}
}
