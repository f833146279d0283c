// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command lineage compares people and entities in a curated knowledge graph.
//
// Usage:
//
//	lineage serve --config lineage.yaml
//	lineage compare plato aristotle
//	lineage path socrates lyceum --json
//	lineage ego socrates --depth 2
//	lineage validate --strict
//
// Example requests against a running server:
//
//	# Compare two nodes
//	curl 'http://localhost:8090/v1/lineage/compare?a=plato&b=aristotle' | jq
//
//	# Shortest path with relationship labels
//	curl 'http://localhost:8090/v1/lineage/path?from=socrates&to=lyceum' | jq
//
//	# Reload the dataset after editing it
//	curl -X POST http://localhost:8090/v1/lineage/reload
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
