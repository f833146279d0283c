// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortestPath(t *testing.T) {
	eng := newFixtureEngine(t)
	edges := fixtureEdges()

	tests := []struct {
		name     string
		from, to string
		wantPath []string
		wantRels []Edge
	}{
		{
			name:     "teacher chain",
			from:     "socrates",
			to:       "aristotle",
			wantPath: []string{"socrates", "plato", "aristotle"},
			wantRels: []Edge{edges[ePlatoSocrates], edges[eAristotlePlato]},
		},
		{
			name:     "direct edge",
			from:     "plato",
			to:       "aristotle",
			wantPath: []string{"plato", "aristotle"},
			wantRels: []Edge{edges[eAristotlePlato]},
		},
		{
			name:     "three hops",
			from:     "socrates",
			to:       "lyceum",
			wantPath: []string{"socrates", "plato", "aristotle", "lyceum"},
			wantRels: []Edge{edges[ePlatoSocrates], edges[eAristotlePlato], edges[eAristotleLyceum]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.ShortestPath(tt.from, tt.to)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantPath, res.Path)
			assert.Equal(t, tt.wantRels, res.Relationships)
			assert.Equal(t, len(tt.wantPath)-1, res.Length())
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		res, err := eng.ShortestPath("socrates", "kant")
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, 0, res.Length())
	})

	t.Run("same node", func(t *testing.T) {
		_, err := eng.ShortestPath("plato", "plato")
		assert.ErrorIs(t, err, ErrSameNode)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := eng.ShortestPath("plato", "ghost")
		assert.ErrorIs(t, err, ErrUnknownNode)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestShortestPath_EqualLengthTieBreak(t *testing.T) {
	// Two shortest routes a-b-d and a-c-d. a-c is listed before a-b, so c
	// is discovered first and its route wins.
	nodes := []Node{
		person("a", EraAncient, 0, 1),
		person("b", EraAncient, 0, 1),
		person("c", EraAncient, 0, 1),
		person("d", EraAncient, 0, 1),
	}
	edges := []Edge{
		{Source: "a", Target: "c", Type: RelationInfluenced},
		{Source: "a", Target: "b", Type: RelationInfluenced},
		{Source: "b", Target: "d", Type: RelationOpposed},
		{Source: "c", Target: "d", Type: RelationTeacherStudent},
	}
	eng, err := New(nodes, edges)
	require.NoError(t, err)

	res, err := eng.ShortestPath("a", "d")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"a", "c", "d"}, res.Path)
	assert.Equal(t, []Edge{edges[0], edges[3]}, res.Relationships)

	for i := 0; i < 5; i++ {
		again, err := eng.ShortestPath("a", "d")
		require.NoError(t, err)
		assert.Equal(t, res, again)
	}

	// From d the adjacency order is b-d before c-d, so the route through b wins.
	back, err := eng.ShortestPath("d", "a")
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, []string{"d", "b", "a"}, back.Path)
	assert.Equal(t, []Edge{edges[2], edges[1]}, back.Relationships)
}

func TestShortestPath_Valid(t *testing.T) {
	eng := newFixtureEngine(t)
	ids := eng.NodeIDs()

	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			res, err := eng.ShortestPath(a, b)
			require.NoError(t, err)
			if res == nil {
				continue
			}
			require.Equal(t, a, res.Path[0])
			require.Equal(t, b, res.Path[len(res.Path)-1])
			require.Len(t, res.Relationships, len(res.Path)-1)
			for i, rel := range res.Relationships {
				assert.True(t, rel.Connects(res.Path[i], res.Path[i+1]),
					"relationship %d of %s->%s does not join consecutive nodes", i, a, b)
			}

			back, err := eng.ShortestPath(b, a)
			require.NoError(t, err)
			require.NotNil(t, back)
			assert.Equal(t, res.Length(), back.Length())
		}
	}
}

func TestSimilarity(t *testing.T) {
	eng := newFixtureEngine(t)

	t.Run("shared connections", func(t *testing.T) {
		shared, err := eng.SharedConnections("plato", "aristotle")
		require.NoError(t, err)
		assert.Equal(t, []string{"academy"}, shared)

		shared, err = eng.SharedConnections("socrates", "aristotle")
		require.NoError(t, err)
		assert.Equal(t, []string{"plato"}, shared)
	})

	t.Run("jaccard", func(t *testing.T) {
		j, err := eng.JaccardSimilarity("plato", "aristotle")
		require.NoError(t, err)
		assert.InDelta(t, 1.0/3.0, j, 1e-9)

		j, err = eng.JaccardSimilarity("socrates", "kant")
		require.NoError(t, err)
		assert.Equal(t, 0.0, j)

		j, err = eng.JaccardSimilarity("academy", "lyceum")
		require.NoError(t, err)
		assert.InDelta(t, 1.0/2.0, j, 1e-9)
	})

	t.Run("shared tags", func(t *testing.T) {
		tags, err := eng.SharedTags("plato", "aristotle")
		require.NoError(t, err)
		assert.Equal(t, []string{"metaphysics", "philosophy"}, tags)

		tags, err = eng.SharedTags("academy", "kant")
		require.NoError(t, err)
		assert.NotNil(t, tags)
		assert.Empty(t, tags)
	})

	t.Run("era overlap by tag", func(t *testing.T) {
		ok, err := eng.EraOverlap("socrates", "aristotle")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = eng.EraOverlap("plato", "kant")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid pair", func(t *testing.T) {
		_, err := eng.SharedConnections("kant", "kant")
		assert.ErrorIs(t, err, ErrSameNode)
		_, err = eng.JaccardSimilarity("ghost", "kant")
		assert.ErrorIs(t, err, ErrUnknownNode)
		_, err = eng.SharedTags("ghost", "kant")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = eng.EraOverlap("kant", "ghost")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestEraOverlap_PeriodPolicy(t *testing.T) {
	eng := newFixtureEngine(t, WithEraPolicy(EraPolicyPeriod))
	assert.Equal(t, EraPolicyPeriod, eng.EraPolicy())

	ok, err := eng.EraOverlap("socrates", "aristotle")
	require.NoError(t, err)
	assert.False(t, ok, "socrates died before aristotle was born")

	ok, err = eng.EraOverlap("plato", "aristotle")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eng.EraOverlap("plato", "academy")
	require.NoError(t, err)
	assert.False(t, ok, "academy has no period")
}

func TestEraOverlap_EmptyEra(t *testing.T) {
	eng, err := New([]Node{entity("a", ""), entity("b", "")}, nil, WithLogger(nil))
	require.NoError(t, err)

	ok, err := eng.EraOverlap("a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSimilarity_Symmetric(t *testing.T) {
	eng := newFixtureEngine(t)
	ids := eng.NodeIDs()

	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			jab, err := eng.JaccardSimilarity(a, b)
			require.NoError(t, err)
			jba, err := eng.JaccardSimilarity(b, a)
			require.NoError(t, err)
			assert.Equal(t, jab, jba)
			assert.GreaterOrEqual(t, jab, 0.0)
			assert.LessOrEqual(t, jab, 1.0)

			sab, _ := eng.SharedConnections(a, b)
			sba, _ := eng.SharedConnections(b, a)
			assert.Equal(t, sab, sba)
			assert.NotContains(t, sab, a)
			assert.NotContains(t, sab, b)
			for _, s := range sab {
				assert.Contains(t, eng.NeighborIDs(a), s)
				assert.Contains(t, eng.NeighborIDs(b), s)
			}

			tab, _ := eng.SharedTags(a, b)
			tba, _ := eng.SharedTags(b, a)
			assert.Equal(t, tab, tba)

			eab, _ := eng.EraOverlap(a, b)
			eba, _ := eng.EraOverlap(b, a)
			assert.Equal(t, eab, eba)
		}
	}
}

func TestLabelPropagation(t *testing.T) {
	eng := newFixtureEngine(t)

	communities := eng.Communities()
	require.Len(t, communities, 2)
	assert.Equal(t, Community{
		Label:   "aristotle",
		Members: []string{"academy", "aristotle", "lyceum", "plato", "socrates"},
	}, communities[0])
	assert.Equal(t, Community{
		Label:   "kant",
		Members: []string{"hegel", "kant"},
	}, communities[1])
	assert.Equal(t, 2, eng.CommunityIterations())

	label, ok := eng.Community("socrates")
	require.True(t, ok)
	assert.Equal(t, "aristotle", label)

	_, ok = eng.Community("ghost")
	assert.False(t, ok)

	same, err := eng.SameCommunity("plato", "lyceum")
	require.NoError(t, err)
	assert.True(t, same)
}

func TestLabelPropagation_IsolatedKeepOwnLabel(t *testing.T) {
	eng, err := New([]Node{entity("b", ""), entity("a", "")}, nil, WithLogger(nil))
	require.NoError(t, err)

	la, _ := eng.Community("a")
	lb, _ := eng.Community("b")
	assert.Equal(t, "a", la)
	assert.Equal(t, "b", lb)
	assert.Equal(t, 1, eng.CommunityIterations())
	assert.Equal(t, []Community{
		{Label: "a", Members: []string{"a"}},
		{Label: "b", Members: []string{"b"}},
	}, eng.Communities())
}

func TestLabelPropagation_IterationCap(t *testing.T) {
	eng := newFixtureEngine(t, WithCommunityDetector(NewLabelPropagation(1)))
	assert.Equal(t, 1, eng.CommunityIterations())

	lp := NewLabelPropagation(0)
	assert.Equal(t, DefaultLabelIterations, lp.MaxIterations)
}

func TestConnectedComponents(t *testing.T) {
	eng := newFixtureEngine(t, WithCommunityDetector(ConnectedComponents{}))

	assert.Equal(t, "connected_components", eng.Stats().CommunityDetector)
	assert.Equal(t, []Community{
		{Label: "academy", Members: []string{"academy", "aristotle", "lyceum", "plato", "socrates"}},
		{Label: "hegel", Members: []string{"hegel", "kant"}},
	}, eng.Communities())
}

func TestParseCommunityDetector(t *testing.T) {
	d, ok := ParseCommunityDetector("", 10)
	require.True(t, ok)
	assert.Equal(t, "label_propagation", d.Name())

	d, ok = ParseCommunityDetector("connected_components", 0)
	require.True(t, ok)
	assert.Equal(t, "connected_components", d.Name())

	_, ok = ParseCommunityDetector("leiden", 0)
	assert.False(t, ok)
}

func TestCommunities_UnreachableNeverShare(t *testing.T) {
	for _, det := range []CommunityDetector{NewLabelPropagation(0), ConnectedComponents{}} {
		eng := newFixtureEngine(t, WithCommunityDetector(det))
		ids := eng.NodeIDs()
		for _, a := range ids {
			for _, b := range ids {
				if a == b {
					continue
				}
				path, err := eng.ShortestPath(a, b)
				require.NoError(t, err)
				if path != nil {
					continue
				}
				same, err := eng.SameCommunity(a, b)
				require.NoError(t, err)
				assert.False(t, same, "%s: %s and %s are unreachable", det.Name(), a, b)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	eng := newFixtureEngine(t)
	edges := fixtureEdges()

	res, err := eng.Compare("plato", "aristotle")
	require.NoError(t, err)

	assert.Equal(t, "plato", res.A)
	assert.Equal(t, "aristotle", res.B)
	assert.InDelta(t, 1.0/3.0, res.JaccardSimilarity, 1e-9)
	assert.Equal(t, []string{"academy"}, res.SharedConnections)
	require.NotNil(t, res.ShortestPath)
	assert.Equal(t, []string{"plato", "aristotle"}, res.ShortestPath.Path)
	assert.True(t, res.CommonCommunity)
	assert.Equal(t, []Edge{edges[eAristotlePlato]}, res.RelationshipsBetween)
	assert.Equal(t, []string{"metaphysics", "philosophy"}, res.SharedTags)
	assert.True(t, res.EraOverlap)
}

func TestCompare_Unreachable(t *testing.T) {
	eng := newFixtureEngine(t)

	res, err := eng.Compare("socrates", "kant")
	require.NoError(t, err)
	assert.Nil(t, res.ShortestPath)
	assert.False(t, res.CommonCommunity)
	assert.Empty(t, res.RelationshipsBetween)
	assert.Equal(t, []string{"ethics", "philosophy"}, res.SharedTags)
	assert.False(t, res.EraOverlap)
}

func TestCompare_InvalidPair(t *testing.T) {
	eng := newFixtureEngine(t)

	res, err := eng.Compare("kant", "kant")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrSameNode)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var pairErr *InvalidPairError
	require.True(t, errors.As(err, &pairErr))
	assert.Equal(t, "kant", pairErr.A)

	res, err = eng.Compare("plato", "ghost")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestCompare_Deterministic(t *testing.T) {
	first := newFixtureEngine(t)
	second := newFixtureEngine(t)

	for _, a := range first.NodeIDs() {
		for _, b := range first.NodeIDs() {
			if a == b {
				continue
			}
			r1, err := first.Compare(a, b)
			require.NoError(t, err)
			r2, err := second.Compare(a, b)
			require.NoError(t, err)
			r3, err := first.Compare(a, b)
			require.NoError(t, err)
			assert.Equal(t, r1, r2)
			assert.Equal(t, r1, r3)
		}
	}
}

func TestCompare_DirectEdgeMeansLengthOne(t *testing.T) {
	eng := newFixtureEngine(t)

	for _, edge := range eng.Edges() {
		res, err := eng.Compare(edge.Source, edge.Target)
		require.NoError(t, err)
		require.NotNil(t, res.ShortestPath)
		assert.Len(t, res.ShortestPath.Path, 2)
		assert.True(t, res.CommonCommunity)
		assert.NotEmpty(t, res.RelationshipsBetween)
	}
}

func TestScenarios(t *testing.T) {
	t.Run("teacher lineage", func(t *testing.T) {
		eng, err := New(
			[]Node{
				person("socrates", EraAncient, -470, -399),
				person("plato", EraAncient, -428, -348),
				person("aristotle", EraAncient, -384, -322),
			},
			[]Edge{
				{Source: "plato", Target: "socrates", Type: RelationTeacherStudent},
				{Source: "aristotle", Target: "plato", Type: RelationTeacherStudent},
			},
			WithLogger(nil),
		)
		require.NoError(t, err)

		res, err := eng.ShortestPath("socrates", "aristotle")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, []string{"socrates", "plato", "aristotle"}, res.Path)
		assert.Equal(t, 2, res.Length())
	})

	t.Run("isolated pair", func(t *testing.T) {
		eng, err := New([]Node{entity("x", EraModern), entity("y", EraModern)}, nil, WithLogger(nil))
		require.NoError(t, err)

		res, err := eng.Compare("x", "y")
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.JaccardSimilarity)
		assert.Equal(t, []string{}, res.SharedConnections)
		assert.Nil(t, res.ShortestPath)
		assert.False(t, res.CommonCommunity)
	})

	t.Run("self comparison", func(t *testing.T) {
		eng, err := New([]Node{person("kant", EraModern, 1724, 1804)}, nil, WithLogger(nil))
		require.NoError(t, err)

		_, err = eng.Compare("kant", "kant")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("ghost source", func(t *testing.T) {
		eng, err := New(
			[]Node{person("plato", EraAncient, -428, -348)},
			[]Edge{{Source: "ghost-id", Target: "plato", Type: RelationInfluenced}},
			WithLogger(nil),
		)
		require.NoError(t, err)

		assert.Empty(t, eng.Neighbors("ghost-id").IDs)
		assert.Empty(t, eng.Neighbors("plato").IDs)
		assert.Len(t, eng.Warnings(), 1)
	})
}

func TestKHopNeighbors(t *testing.T) {
	eng := newFixtureEngine(t)

	layers := eng.KHopNeighbors("socrates", 2)
	assert.Equal(t, []HopLayer{
		{Depth: 1, IDs: []string{"plato"}},
		{Depth: 2, IDs: []string{"aristotle", "academy"}},
	}, layers)

	layers = eng.KHopNeighbors("socrates", 100)
	require.Len(t, layers, 3)
	assert.Equal(t, []string{"lyceum"}, layers[2].IDs)

	assert.Empty(t, eng.KHopNeighbors("socrates", 0))
	assert.Empty(t, eng.KHopNeighbors("socrates", -1))
	assert.Empty(t, eng.KHopNeighbors("ghost", 2))
}

func TestKHopNeighbors_ClampsDepth(t *testing.T) {
	nodes := make([]Node, 0, 10)
	edges := make([]Edge, 0, 9)
	for i := 0; i < 10; i++ {
		nodes = append(nodes, entity(string(rune('a'+i)), ""))
		if i > 0 {
			edges = append(edges, Edge{Source: nodes[i-1].ID, Target: nodes[i].ID, Type: RelationInfluenced})
		}
	}
	eng, err := New(nodes, edges, WithLogger(nil))
	require.NoError(t, err)

	layers := eng.KHopNeighbors("a", 9)
	assert.Len(t, layers, MaxEgoDepth)
}

func TestEgoNetwork(t *testing.T) {
	eng := newFixtureEngine(t)
	edges := fixtureEdges()

	ego := eng.EgoNetwork("socrates", 1)
	assert.Equal(t, "socrates", ego.Center)
	assert.Equal(t, []EgoNode{{ID: "socrates", Distance: 0}, {ID: "plato", Distance: 1}}, ego.Nodes)
	assert.Equal(t, []Edge{edges[ePlatoSocrates]}, ego.Edges)

	ego = eng.EgoNetwork("socrates", 2)
	assert.Equal(t, []EgoNode{
		{ID: "socrates", Distance: 0},
		{ID: "plato", Distance: 1},
		{ID: "aristotle", Distance: 2},
		{ID: "academy", Distance: 2},
	}, ego.Nodes)
	assert.Equal(t, []Edge{
		edges[ePlatoSocrates],
		edges[eAristotlePlato],
		edges[ePlatoAcademy],
		edges[eAristotleAcademy],
	}, ego.Edges)

	empty := eng.EgoNetwork("ghost", 2)
	assert.Empty(t, empty.Nodes)
	assert.Empty(t, empty.Edges)

	members := make([]string, 0)
	for _, n := range eng.EgoNetwork("kant", 3).Nodes {
		members = append(members, n.ID)
	}
	assert.True(t, slices.Equal([]string{"kant", "hegel"}, members))
}
