// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/lineage/services/lineage"
	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combinedDataset = `
nodes:
  - {id: socrates, nodeType: person, name: Socrates, era: ancient, tags: [ethics]}
  - {id: plato, nodeType: person, name: Plato, era: ancient, tags: [ethics, metaphysics]}
  - {id: aristotle, nodeType: person, name: Aristotle, era: ancient, tags: [logic, metaphysics]}
  - {id: academy, nodeType: entity, name: Academy, era: ancient}
  - {id: kant, nodeType: person, name: Kant, era: modern}
relationships:
  - {source: plato, target: socrates, type: teacher_student}
  - {source: aristotle, target: plato, type: teacher_student}
  - {source: plato, target: academy, type: founded}
  - {source: aristotle, target: academy, type: studied_at}
`

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompare_JSON(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	out, err := run(t, "--nodes", data, "--json", "compare", "socrates", "aristotle")
	require.NoError(t, err)

	var res graph.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, []string{"plato"}, res.SharedConnections)
	assert.InDelta(t, 0.5, res.JaccardSimilarity, 1e-9)
	require.NotNil(t, res.ShortestPath)
	assert.Equal(t, []string{"socrates", "plato", "aristotle"}, res.ShortestPath.Path)
	assert.Empty(t, res.SharedTags)
	assert.True(t, res.EraOverlap)
}

func TestCompare_Text(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	out, err := run(t, "--nodes", data, "compare", "plato", "aristotle")
	require.NoError(t, err)
	assert.Contains(t, out, "plato ↔ aristotle")
	assert.Contains(t, out, "shared connections: academy")
	assert.Contains(t, out, "shared tags: metaphysics")
	assert.Contains(t, out, "aristotle -[teacher_student]-> plato")
}

func TestCompare_InvalidPair(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	_, err := run(t, "--nodes", data, "compare", "plato", "plato")
	assert.ErrorIs(t, err, graph.ErrSameNode)

	_, err = run(t, "--nodes", data, "compare", "plato", "ghost")
	assert.ErrorIs(t, err, graph.ErrUnknownNode)

	_, err = run(t, "--nodes", data, "compare", "plato")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	out, err := run(t, "--nodes", data, "path", "socrates", "academy")
	require.NoError(t, err)
	assert.Contains(t, out, "socrates -[teacher_student]→ plato -[founded]→ academy")
	assert.Contains(t, out, "hops: 2")

	out, err = run(t, "--nodes", data, "--json", "path", "socrates", "kant")
	require.NoError(t, err)
	var res lineage.PathResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Found)
	assert.Nil(t, res.Path)
}

func TestNeighborsAndEgo(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	out, err := run(t, "--nodes", data, "--json", "neighbors", "plato")
	require.NoError(t, err)
	var neighbors lineage.NeighborsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &neighbors))
	assert.Equal(t, []string{"socrates", "aristotle", "academy"}, neighbors.Neighbors)

	out, err = run(t, "--nodes", data, "--json", "ego", "socrates", "--depth", "1")
	require.NoError(t, err)
	var ego lineage.EgoResponse
	require.NoError(t, json.Unmarshal([]byte(out), &ego))
	require.Len(t, ego.Layers, 1)
	assert.Equal(t, []string{"plato"}, ego.Layers[0].IDs)

	out, err = run(t, "--nodes", data, "--json", "neighbors", "ghost")
	require.NoError(t, err)
	var none lineage.NeighborsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &none))
	assert.Empty(t, none.Neighbors)
	assert.NotNil(t, none.Edges)

	_, err = run(t, "--nodes", data, "ego", "socrates", "--depth", "0")
	assert.ErrorIs(t, err, lineage.ErrInvalidDepth)
}

func TestCommunitiesAndStats(t *testing.T) {
	data := writeDataset(t, combinedDataset)

	out, err := run(t, "--nodes", data, "--json", "communities")
	require.NoError(t, err)
	var communities lineage.CommunitiesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &communities))
	require.Len(t, communities.Communities, 2)
	assert.Len(t, communities.Communities[0].Members, 4)
	assert.Equal(t, []string{"kant"}, communities.Communities[1].Members)

	out, err = run(t, "--nodes", data, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes: 5")
	assert.Contains(t, out, "isolated nodes: 1")
}

func TestValidate(t *testing.T) {
	clean := writeDataset(t, combinedDataset)
	out, err := run(t, "--nodes", clean, "validate", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "dataset is clean")

	dirty := writeDataset(t, combinedDataset+"  - {source: ghost, target: plato, type: influenced}\n  - {source: plato, target: kant}\n")
	out, err = run(t, "--nodes", dirty, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "1 dropped edges, 1 skipped records")

	_, err = run(t, "--nodes", dirty, "validate", "--strict")
	assert.ErrorIs(t, err, errValidationFailed)

	broken := writeDataset(t, "nodes:\n  - {id: x, nodeType: robot, name: X}\n")
	_, err = run(t, "--nodes", broken, "validate")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	data := writeDataset(t, combinedDataset)
	cfgPath := filepath.Join(t.TempDir(), "lineage.yaml")
	cfg := "dataset:\n  nodes: " + data + "\n  relationships: \"\"\nengine:\n  community_detector: connected_components\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := run(t, "--config", cfgPath, "--json", "communities")
	require.NoError(t, err)
	var communities lineage.CommunitiesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &communities))
	assert.Equal(t, "connected_components", communities.Detector)
	assert.Equal(t, "academy", communities.Communities[0].Label)

	_, err = run(t, "--log-level", "loud", "stats")
	assert.Error(t, err)
}

func TestLogFile(t *testing.T) {
	data := writeDataset(t, combinedDataset)
	logDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "lineage.yaml")
	cfg := "dataset:\n  nodes: " + data + "\n  relationships: \"\"\nlogging:\n  level: warn\n  log_dir: " + logDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := run(t, "--config", cfgPath, "--log-level", "info", "stats")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(logDir, "lineage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"msg":"snapshot live"`)
}
