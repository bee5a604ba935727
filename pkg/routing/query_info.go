package routing

import (
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
)

// vertexInfo is the dijkstra label of one settled or queued road.
type vertexInfo struct {
	dist     float64
	parent   da.Index
	heapNode *da.PriorityQueueNode[da.Index]
	settled  bool
}

func newVertexInfo(dist float64, parent da.Index, heapNode *da.PriorityQueueNode[da.Index]) *vertexInfo {
	return &vertexInfo{dist: dist, parent: parent, heapNode: heapNode}
}

func (vi *vertexInfo) update(dist float64, parent da.Index) {
	vi.dist = dist
	vi.parent = parent
}

type routeKey struct {
	origin      da.Index
	destination da.Index
}

// route is a memoized query answer. path is nil when destination is unreachable.
type route struct {
	path []da.Index
	cost float64
}
