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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers contains the HTTP handlers for the lineage service.
type Handlers struct {
	svc          *Service
	defaultDepth int
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, defaultDepth: 2}
}

// WithDefaultDepth sets the ego depth used when the request omits one.
func (h *Handlers) WithDefaultDepth(depth int) *Handlers {
	if depth > 0 {
		h.defaultDepth = depth
	}
	return h
}

// pairQuery binds the two-node query strings of /compare.
type pairQuery struct {
	A string `form:"a" binding:"required"`
	B string `form:"b" binding:"required"`
}

// pathQuery binds /path.
type pathQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// HandleHealth handles GET /v1/lineage/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// HandleReady handles GET /v1/lineage/ready.
//
// Returns 503 until the first dataset load succeeds.
func (h *Handlers) HandleReady(c *gin.Context) {
	snap, err := h.svc.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{Ready: false})
		return
	}
	c.JSON(http.StatusOK, ReadyResponse{Ready: true, Generation: snap.Generation, LoadedAt: snap.LoadedAt})
}

// HandleCompare handles GET /v1/lineage/compare?a=&b=.
//
// Description:
//
//	Returns every pairwise metric for a and b. The path, when present,
//	runs from a to b.
//
// Responses:
//
//	200 - graph.ComparisonResult
//	400 - Missing parameters, a == b, or an unknown node (INVALID_PAIR)
//	503 - No dataset loaded yet
func (h *Handlers) HandleCompare(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCompare")

	var q pairQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "query parameters a and b are required",
			Code:    CodeInvalidRequest,
			Details: err.Error(),
		})
		return
	}

	res, err := h.svc.Compare(c.Request.Context(), q.A, q.B)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandlePath handles GET /v1/lineage/path?from=&to=.
//
// A disconnected pair is a 200 with found=false and a null path.
func (h *Handlers) HandlePath(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePath")

	var q pathQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "query parameters from and to are required",
			Code:    CodeInvalidRequest,
			Details: err.Error(),
		})
		return
	}

	path, err := h.svc.ShortestPath(c.Request.Context(), q.From, q.To)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, PathResponse{From: q.From, To: q.To, Found: path != nil, Path: path})
}

// HandleNode handles GET /v1/lineage/nodes/:id.
func (h *Handlers) HandleNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNode")

	res, err := h.svc.Node(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleNeighbors handles GET /v1/lineage/nodes/:id/neighbors.
func (h *Handlers) HandleNeighbors(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNeighbors")

	id := c.Param("id")
	res, err := h.svc.Neighbors(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, NeighborsResponse{ID: id, Neighbors: res.IDs, Edges: res.Edges})
}

// HandleEgo handles GET /v1/lineage/nodes/:id/ego?depth=N.
//
// depth defaults to the configured default and must be in [1, max_ego_depth].
func (h *Handlers) HandleEgo(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleEgo")

	depth := h.defaultDepth
	if raw := c.Query("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "depth must be an integer",
				Code:    CodeInvalidRequest,
				Details: err.Error(),
			})
			return
		}
		depth = d
	}

	res, err := h.svc.EgoNetwork(c.Request.Context(), c.Param("id"), depth)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleCommunities handles GET /v1/lineage/communities.
func (h *Handlers) HandleCommunities(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCommunities")

	res, err := h.svc.Communities()
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleStats handles GET /v1/lineage/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleStats")

	res, err := h.svc.Stats()
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleWarnings handles GET /v1/lineage/warnings.
func (h *Handlers) HandleWarnings(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleWarnings")

	res, err := h.svc.Warnings()
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleReload handles POST /v1/lineage/reload.
//
// Description:
//
//	Reloads the dataset and swaps in a new engine. On failure the previous
//	engine keeps serving and the response is 500 RELOAD_FAILED.
func (h *Handlers) HandleReload(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReload")

	snap, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		logger.Error("reload failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Reload failed; previous dataset still live",
			Code:    CodeReloadFailed,
			Details: err.Error(),
		})
		return
	}

	logger.Info("reload complete", "generation", snap.Generation)
	c.JSON(http.StatusOK, ReloadResponse{Generation: snap.Generation, Engine: snap.Engine.Stats()})
}

// writeError maps service and engine errors onto status codes.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Dataset not loaded",
			Code:  CodeNotReady,
		})
	case errors.Is(err, ErrNodeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Node not found",
			Code:    CodeNodeNotFound,
			Details: err.Error(),
		})
	case errors.Is(err, graph.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid node pair",
			Code:    CodeInvalidPair,
			Details: err.Error(),
		})
	case errors.Is(err, ErrInvalidDepth):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid depth",
			Code:    CodeInvalidRequest,
			Details: err.Error(),
		})
	default:
		logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Code:  CodeInternal,
		})
	}
}

// getOrCreateRequestID returns the caller's X-Request-ID or a new one,
// and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
