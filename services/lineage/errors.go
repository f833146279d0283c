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

import "errors"

// Sentinel errors for the lineage service.
var (
	// ErrNotReady is returned by queries issued before the first
	// successful Load.
	ErrNotReady = errors.New("lineage engine not loaded")

	// ErrNodeNotFound is returned by the node detail lookup for an unknown ID.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidDepth is returned when an ego depth is outside
	// [1, MaxEgoDepth].
	ErrInvalidDepth = errors.New("invalid ego depth")

	// ErrServiceClosed is returned by Watch after Close.
	ErrServiceClosed = errors.New("lineage service closed")
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidPair    = "INVALID_PAIR"
	CodeNodeNotFound   = "NODE_NOT_FOUND"
	CodeNotReady       = "NOT_READY"
	CodeReloadFailed   = "RELOAD_FAILED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)
