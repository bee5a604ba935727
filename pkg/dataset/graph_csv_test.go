package dataset

import (
	"errors"
	"strings"
	"testing"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadGraphCSV(t *testing.T) {
	nodes := "road_id,length,name\n10,0.5,a\n20,1.0,b\n30,0.25,c\n"
	edges := "from,to,weight\n10,20,0.75\n20,30,0.6\n20,20,0.1\n10,20,0.5\n"

	g, skipped, err := ReadGraphCSV(strings.NewReader(nodes), strings.NewReader(edges), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 3, g.NumberOfRoads())
	assert.Equal(t, 2, g.NumberOfEdges())
	assert.Equal(t, []int64{10, 20, 30}, g.RoadIDs())

	u, _ := g.VertexOf(10)
	v, _ := g.VertexOf(20)
	assert.True(t, g.IsAdjacent(u, v))

	// parallel arcs keep the smallest weight
	weights := make([]float64, 0)
	g.ForOutEdgesOf(u, func(e *da.OutEdge) {
		weights = append(weights, e.GetWeight())
	})
	assert.Equal(t, []float64{0.5}, weights)
}

func TestReadGraphCSVErrors(t *testing.T) {
	testCases := []struct {
		name  string
		nodes string
		edges string
		want  error
	}{
		{"missing length column", "road_id\n10\n", "from,to,weight\n", util.ErrMalformedRow},
		{"bad length", "road_id,length\n10,abc\n", "from,to,weight\n", util.ErrMalformedRow},
		{"zero length", "road_id,length\n10,0\n", "from,to,weight\n", util.ErrMalformedRow},
		{"duplicate road", "road_id,length\n10,1\n10,2\n", "from,to,weight\n", util.ErrMalformedRow},
		{"edge to unknown road", "road_id,length\n10,1\n", "from,to,weight\n10,99,1\n", util.ErrUnknownRoad},
		{"bad weight", "road_id,length\n10,1\n20,1\n", "from,to,weight\n10,20,x\n", util.ErrMalformedRow},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadGraphCSV(strings.NewReader(tt.nodes), strings.NewReader(tt.edges), zap.NewNop())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
