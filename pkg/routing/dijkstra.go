package routing

import (
	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
)

// Dijkstra is a one-to-one search with early exit once the target is settled.
// labels live in a map so a query only touches the roads it explores.
type Dijkstra struct {
	graph *da.RoadGraph
	info  map[da.Index]*vertexInfo
	pq    *da.MinHeap[da.Index]

	numSettledNodes int
}

func NewDijkstra(graph *da.RoadGraph) *Dijkstra {
	return &Dijkstra{
		graph: graph,
		info:  make(map[da.Index]*vertexInfo),
		pq:    da.NewFourAryHeap[da.Index](),
	}
}

func (d *Dijkstra) reset() {
	clear(d.info)
	d.pq.Clear()
	d.numSettledNodes = 0
}

// ShortestPath returns the vertices s..t of a shortest path and its cost. found is false when t is unreachable.
func (d *Dijkstra) ShortestPath(s, t da.Index) (path []da.Index, cost float64, found bool) {
	d.reset()

	sNode := da.NewPriorityQueueNode(0, s)
	d.pq.Insert(sNode)
	d.info[s] = newVertexInfo(0, da.INVALID_INDEX, sNode)

	for !d.pq.IsEmpty() {
		if d.graphSearchUni(t) {
			break
		}
	}

	tInfo, ok := d.info[t]
	if !ok || !tInfo.settled {
		return nil, pkg.INF_WEIGHT, false
	}

	path = make([]da.Index, 0, 8)
	for v := t; v != da.INVALID_INDEX; v = d.info[v].parent {
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, tInfo.dist, true
}

// graphSearchUni settles the queue minimum and relaxes its outedges. returns true once target is settled.
func (d *Dijkstra) graphSearchUni(target da.Index) bool {
	minNode, _ := d.pq.ExtractMin()
	u := minNode.GetItem()
	uInfo := d.info[u]
	uInfo.settled = true
	d.numSettledNodes++

	if u == target {
		return true
	}

	d.graph.ForOutEdgesOf(u, func(e *da.OutEdge) {
		v := e.GetHead()
		newDist := uInfo.dist + e.GetWeight()
		if newDist >= pkg.INF_WEIGHT {
			return
		}

		vInfo, labelled := d.info[v]
		if !labelled {
			vNode := da.NewPriorityQueueNode(newDist, v)
			d.pq.Insert(vNode)
			d.info[v] = newVertexInfo(newDist, u, vNode)
			return
		}
		if vInfo.settled || newDist >= vInfo.dist {
			return
		}

		vInfo.update(newDist, u)
		d.pq.DecreaseKey(vInfo.heapNode, newDist)
	})
	return false
}
