package datastructure

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/roadflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 -> 2 -> 3 -> 1 is one scc, 3 -> 4 -> 5, 6 is isolated
func buildTestGraph(t *testing.T) *RoadGraph {
	t.Helper()
	b := NewGraphBuilder()
	for _, id := range []int64{1, 2, 3, 4, 5, 6} {
		require.NoError(t, b.AddRoad(id, 0.2))
	}
	edges := [][2]int64{{1, 2}, {2, 3}, {3, 1}, {3, 4}, {4, 5}}
	for _, e := range edges {
		require.NoError(t, b.AddEdge(e[0], e[1], 0.2))
	}
	return b.Build()
}

func TestGraphBuilder(t *testing.T) {
	g := buildTestGraph(t)

	assert.Equal(t, 6, g.NumberOfRoads())
	assert.Equal(t, 5, g.NumberOfEdges())
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, g.RoadIDs())

	u, ok := g.VertexOf(3)
	require.True(t, ok)
	assert.Equal(t, int64(3), g.RoadIDOf(u))
	assert.Equal(t, Index(2), g.GetOutDegree(u))
	assert.Equal(t, Index(1), g.GetInDegree(u))

	_, err := g.MustVertexOf(99)
	assert.True(t, errors.Is(err, util.ErrUnknownRoad))
}

func TestGraphBuilderRejects(t *testing.T) {
	testCases := []struct {
		name  string
		build func(b *GraphBuilder) error
	}{
		{
			name: "self loop",
			build: func(b *GraphBuilder) error {
				return b.AddEdge(1, 1, 0.1)
			},
		},
		{
			name: "negative weight",
			build: func(b *GraphBuilder) error {
				return b.AddEdge(1, 2, -0.1)
			},
		},
		{
			name: "unknown head",
			build: func(b *GraphBuilder) error {
				return b.AddEdge(1, 42, 0.1)
			},
		},
		{
			name: "duplicate road",
			build: func(b *GraphBuilder) error {
				return b.AddRoad(2, 0.3)
			},
		},
		{
			name: "zero length",
			build: func(b *GraphBuilder) error {
				return b.AddRoad(7, 0)
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			b := NewGraphBuilder()
			require.NoError(t, b.AddRoad(1, 0.1))
			require.NoError(t, b.AddRoad(2, 0.1))
			assert.Error(t, tt.build(b))
		})
	}
}

func TestGraphBuilderParallelEdgeKeepsMinimum(t *testing.T) {
	b := NewGraphBuilder()
	require.NoError(t, b.AddRoad(1, 0.1))
	require.NoError(t, b.AddRoad(2, 0.1))
	require.NoError(t, b.AddEdge(1, 2, 0.5))
	require.NoError(t, b.AddEdge(1, 2, 0.3))
	require.NoError(t, b.AddEdge(1, 2, 0.9))
	g := b.Build()

	require.Equal(t, 1, g.NumberOfEdges())
	u, _ := g.VertexOf(1)
	g.ForOutEdgesOf(u, func(e *OutEdge) {
		assert.Equal(t, 0.3, e.GetWeight())
	})
}

func TestReachable(t *testing.T) {
	g := buildTestGraph(t)

	testCases := []struct {
		from, to int64
		want     bool
	}{
		{1, 3, true},
		{3, 1, true},
		{2, 5, true},
		{5, 1, false},
		{4, 3, false},
		{1, 6, false},
		{6, 6, true},
		{5, 4, false},
	}

	for _, tt := range testCases {
		u, _ := g.VertexOf(tt.from)
		v, _ := g.VertexOf(tt.to)
		assert.Equal(t, tt.want, g.Reachable(u, v), "reachable(%d, %d)", tt.from, tt.to)
	}

	s1, _ := g.VertexOf(1)
	s2, _ := g.VertexOf(2)
	s4, _ := g.VertexOf(4)
	assert.Equal(t, g.GetSCCOf(s1), g.GetSCCOf(s2))
	assert.NotEqual(t, g.GetSCCOf(s1), g.GetSCCOf(s4))
	assert.Less(t, g.GetSCCOf(s1), g.GetSCCOf(s4))
}

func TestIsAdjacent(t *testing.T) {
	g := buildTestGraph(t)
	u, _ := g.VertexOf(1)
	v, _ := g.VertexOf(2)
	w, _ := g.VertexOf(3)
	assert.True(t, g.IsAdjacent(u, v))
	assert.False(t, g.IsAdjacent(v, u))
	assert.False(t, g.IsAdjacent(u, w))
}

func TestGraphReadWrite(t *testing.T) {
	g := buildTestGraph(t)

	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	got, err := ReadRoadGraph(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.RoadIDs(), got.RoadIDs())
	assert.Equal(t, g.NumberOfEdges(), got.NumberOfEdges())
	for u := Index(0); u < Index(g.NumberOfRoads()); u++ {
		for v := Index(0); v < Index(g.NumberOfRoads()); v++ {
			assert.Equal(t, g.IsAdjacent(u, v), got.IsAdjacent(u, v))
		}
	}

	filename := filepath.Join(t.TempDir(), "road_graph.graph")
	require.NoError(t, g.WriteGraph(filename))
	fromFile, err := ReadGraph(filename)
	require.NoError(t, err)
	assert.Equal(t, g.RoadIDs(), fromFile.RoadIDs())
}
