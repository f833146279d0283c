// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset reads curated node and relationship files into the
// inputs of graph.New.
//
// Files may be JSON (.json) or YAML (.yaml, .yml). A node file holds either
// a bare list of nodes or a document with a "nodes" key; a relationship
// file holds a bare list or a document with a "relationships" key. When
// both paths name the same file it must be a combined document with both
// keys.
//
// Invalid nodes fail the load. Invalid relationships are skipped and
// reported, the same way the engine reports dropped edges.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/lineage/services/lineage/graph"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for dataset loading.
var (
	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrInvalidNode is returned when a node record fails validation.
	ErrInvalidNode = errors.New("invalid node record")

	// ErrMalformed is returned when a file cannot be decoded.
	ErrMalformed = errors.New("malformed dataset file")
)

// Source locates a dataset on disk.
type Source struct {
	// NodesPath is the node file.
	NodesPath string

	// RelationshipsPath is the relationship file. Empty or equal to
	// NodesPath means a combined document.
	RelationshipsPath string
}

// Combined reports whether both collections live in one file.
func (s Source) Combined() bool {
	return s.RelationshipsPath == "" || filepath.Clean(s.RelationshipsPath) == filepath.Clean(s.NodesPath)
}

// Paths returns the distinct files of the source.
func (s Source) Paths() []string {
	if s.Combined() {
		return []string{s.NodesPath}
	}
	return []string{s.NodesPath, s.RelationshipsPath}
}

// Dataset is a decoded, validated dataset ready for graph.New.
type Dataset struct {
	Nodes   []graph.Node
	Edges   []graph.Edge
	Skipped []Skipped
}

// document is the keyed file shape.
type document struct {
	Nodes         []NodeRecord         `json:"nodes" yaml:"nodes"`
	Relationships []RelationshipRecord `json:"relationships" yaml:"relationships"`
}

// Load reads and validates the dataset described by src.
//
// Description:
//
//	Reads the node and relationship files concurrently, decodes them by
//	extension, validates every record and converts them to engine types.
//
// Inputs:
//
//	ctx - Cancels the load between files.
//	src - File locations.
//	logger - Receives one warning per skipped relationship. nil uses slog.Default().
//
// Outputs:
//
//	*Dataset - Nodes, edges and skipped relationships.
//	error - ErrUnsupportedFormat, ErrMalformed, ErrInvalidNode or a read error.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if src.Combined() {
		doc, err := readDocument(ctx, src.NodesPath, "")
		if err != nil {
			return nil, err
		}
		return build(doc.Nodes, doc.Relationships, src.NodesPath, logger)
	}

	var nodesDoc, relsDoc document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodesDoc, err = readDocument(gctx, src.NodesPath, "nodes")
		return err
	})
	g.Go(func() error {
		var err error
		relsDoc, err = readDocument(gctx, src.RelationshipsPath, "relationships")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return build(nodesDoc.Nodes, relsDoc.Relationships, src.RelationshipsPath, logger)
}

// build validates records and converts them to engine types.
func build(nodes []NodeRecord, rels []RelationshipRecord, relPath string, logger *slog.Logger) (*Dataset, error) {
	ds := &Dataset{
		Nodes: make([]graph.Node, 0, len(nodes)),
		Edges: make([]graph.Edge, 0, len(rels)),
	}

	for i, rec := range nodes {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: #%d %q: %s", ErrInvalidNode, i, rec.ID, describe(err))
		}
		ds.Nodes = append(ds.Nodes, rec.ToNode())
	}

	for i, rec := range rels {
		if err := validate.Struct(rec); err != nil {
			s := Skipped{Index: i, Record: rec, Reason: describe(err)}
			ds.Skipped = append(ds.Skipped, s)
			logger.Warn("skipping relationship",
				slog.String("file", relPath),
				slog.Int("index", i),
				slog.String("reason", s.Reason),
			)
			continue
		}
		ds.Edges = append(ds.Edges, rec.ToEdge())
	}

	return ds, nil
}

// readDocument reads path and decodes it into a document. key names the
// collection a bare list belongs to; "" requires a keyed document.
func readDocument(ctx context.Context, path, key string) (document, error) {
	if err := ctx.Err(); err != nil {
		return document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = decodeJSON(data, key, &doc)
	case ".yaml", ".yml":
		err = decodeYAML(data, key, &doc)
	default:
		return document{}, fmt.Errorf("%w: %s (%q)", ErrUnsupportedFormat, path, ext)
	}
	if err != nil {
		return document{}, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	return doc, nil
}

func decodeJSON(data []byte, key string, doc *document) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeList(key, doc, func(v any) error { return json.Unmarshal(trimmed, v) })
	}
	return json.Unmarshal(trimmed, doc)
}

func decodeYAML(data []byte, key string, doc *document) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind == yaml.SequenceNode {
		return decodeList(key, doc, top.Decode)
	}
	return top.Decode(doc)
}

// decodeList decodes a bare list into the collection named by key.
func decodeList(key string, doc *document, decode func(any) error) error {
	switch key {
	case "nodes":
		return decode(&doc.Nodes)
	case "relationships":
		return decode(&doc.Relationships)
	default:
		return errors.New("combined dataset must be a document with nodes and relationships keys")
	}
}
