package datastructure

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/roadflow/pkg/util"
)

type Index uint32

const INVALID_INDEX = Index(math.MaxUint32)

// RoadSegment is a vertex of the road graph. the road network is modelled edge-based:
// every physical road segment is a vertex, and an arc u->v means a vehicle can drive from segment u onto segment v.
type RoadSegment struct {
	id       int64
	length   float64 // km
	firstOut Index   // index of the first outEdge of this road in the flattened graph.outEdges array
	firstIn  Index   // index of the first inEdge of this road in the flattened graph.inEdges array
}

func NewRoadSegment(id int64, length float64) *RoadSegment {
	return &RoadSegment{id: id, length: length}
}

func (r *RoadSegment) GetID() int64 {
	return r.id
}

func (r *RoadSegment) GetLength() float64 {
	return r.length
}

// outedge enters road head
type OutEdge struct {
	head   Index
	weight float64 // km
}

// inedge leaves road tail
type InEdge struct {
	tail   Index
	weight float64 // km
}

func NewOutEdge(head Index, weight float64) *OutEdge {
	return &OutEdge{head: head, weight: weight}
}

func NewInEdge(tail Index, weight float64) *InEdge {
	return &InEdge{tail: tail, weight: weight}
}

func (e *OutEdge) GetHead() Index {
	return e.head
}

func (e *OutEdge) GetWeight() float64 {
	return e.weight
}

func (e *InEdge) GetTail() Index {
	return e.tail
}

func (e *InEdge) GetWeight() float64 {
	return e.weight
}

// RoadGraph. static directed graph over road segments, read-only after Build.
type RoadGraph struct {
	roads     []*RoadSegment // len = numberOfRoads + 1, last one is a sentinel for degree computation
	outEdges  []*OutEdge
	inEdges   []*InEdge
	idToIndex map[int64]Index

	// strongly connected components
	sccs               []Index   // vertexId -> sccId, scc ids are in topological order of the condensation
	sccCondensationAdj [][]Index // condensation connection of scc of u -> scc of v
}

func (g *RoadGraph) NumberOfRoads() int {
	return len(g.roads) - 1
}

func (g *RoadGraph) NumberOfEdges() int {
	return len(g.outEdges)
}

func (g *RoadGraph) GetOutDegree(u Index) Index {
	return g.roads[u+1].firstOut - g.roads[u].firstOut
}

func (g *RoadGraph) GetInDegree(u Index) Index {
	return g.roads[u+1].firstIn - g.roads[u].firstIn
}

// VertexOf returns the graph vertex of a road id.
func (g *RoadGraph) VertexOf(roadID int64) (Index, bool) {
	v, ok := g.idToIndex[roadID]
	return v, ok
}

func (g *RoadGraph) MustVertexOf(roadID int64) (Index, error) {
	v, ok := g.idToIndex[roadID]
	if !ok {
		return INVALID_INDEX, util.WrapErrorf(nil, util.ErrUnknownRoad, "road %d", roadID)
	}
	return v, nil
}

func (g *RoadGraph) RoadIDOf(u Index) int64 {
	return g.roads[u].id
}

func (g *RoadGraph) GetLength(u Index) float64 {
	return g.roads[u].length
}

// RoadIDs returns road ids in vertex order.
func (g *RoadGraph) RoadIDs() []int64 {
	ids := make([]int64, g.NumberOfRoads())
	for i := 0; i < g.NumberOfRoads(); i++ {
		ids[i] = g.roads[i].id
	}
	return ids
}

func (g *RoadGraph) ForOutEdgesOf(u Index, handle func(e *OutEdge)) {
	for e := g.roads[u].firstOut; e < g.roads[u+1].firstOut; e++ {
		handle(g.outEdges[e])
	}
}

func (g *RoadGraph) ForInEdgesOf(u Index, handle func(e *InEdge)) {
	for e := g.roads[u].firstIn; e < g.roads[u+1].firstIn; e++ {
		handle(g.inEdges[e])
	}
}

// IsAdjacent reports whether there is a direct arc u->v.
func (g *RoadGraph) IsAdjacent(u, v Index) bool {
	for e := g.roads[u].firstOut; e < g.roads[u+1].firstOut; e++ {
		if g.outEdges[e].head == v {
			return true
		}
	}
	return false
}

func (g *RoadGraph) GetSCCOf(u Index) Index {
	return g.sccs[u]
}

func (g *RoadGraph) setSCCs(sccs []Index) {
	g.sccs = sccs
}

func (g *RoadGraph) setSCCCondensationAdj(adj [][]Index) {
	g.sccCondensationAdj = adj
}

// Reachable reports whether any path u->v exists. same scc answers immediately, otherwise
// a dfs over the condensation dag; scc ids are topologically ordered so sccs with smaller id than the source are never reachable.
func (g *RoadGraph) Reachable(u, v Index) bool {
	su, sv := g.sccs[u], g.sccs[v]
	if su == sv {
		return true
	}
	if su > sv {
		return false
	}

	visited := make(map[Index]struct{})
	stack := []Index{su}
	visited[su] = struct{}{}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.sccCondensationAdj[c] {
			if next == sv {
				return true
			}
			if next > sv {
				continue
			}
			if _, ok := visited[next]; !ok {
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}
	return false
}

type edgeKey struct {
	from, to Index
}

// GraphBuilder collects roads and arcs, Build flattens them into the compressed RoadGraph.
type GraphBuilder struct {
	roads     []*RoadSegment
	idToIndex map[int64]Index
	weights   map[edgeKey]float64
	order     []edgeKey
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		roads:     make([]*RoadSegment, 0),
		idToIndex: make(map[int64]Index),
		weights:   make(map[edgeKey]float64),
		order:     make([]edgeKey, 0),
	}
}

func (b *GraphBuilder) AddRoad(id int64, length float64) error {
	if _, ok := b.idToIndex[id]; ok {
		return fmt.Errorf("duplicate road %d", id)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return fmt.Errorf("road %d: length must be positive, got %v", id, length)
	}
	b.idToIndex[id] = Index(len(b.roads))
	b.roads = append(b.roads, NewRoadSegment(id, length))
	return nil
}

// AddEdge adds arc from->to. parallel arcs keep the smallest weight.
func (b *GraphBuilder) AddEdge(from, to int64, weight float64) error {
	if from == to {
		return fmt.Errorf("self-loop on road %d is not allowed", from)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("edge %d->%d: weight must be non-negative, got %v", from, to, weight)
	}
	u, ok := b.idToIndex[from]
	if !ok {
		return util.WrapErrorf(nil, util.ErrUnknownRoad, "edge tail %d", from)
	}
	v, ok := b.idToIndex[to]
	if !ok {
		return util.WrapErrorf(nil, util.ErrUnknownRoad, "edge head %d", to)
	}

	key := edgeKey{u, v}
	if old, ok := b.weights[key]; ok {
		if weight < old {
			b.weights[key] = weight
		}
		return nil
	}
	b.weights[key] = weight
	b.order = append(b.order, key)
	return nil
}

func (b *GraphBuilder) Build() *RoadGraph {
	n := len(b.roads)
	outDegree := make([]Index, n)
	inDegree := make([]Index, n)
	for _, key := range b.order {
		outDegree[key.from]++
		inDegree[key.to]++
	}

	roads := make([]*RoadSegment, n+1)
	var firstOut, firstIn Index
	for i := 0; i < n; i++ {
		r := *b.roads[i]
		r.firstOut = firstOut
		r.firstIn = firstIn
		roads[i] = &r
		firstOut += outDegree[i]
		firstIn += inDegree[i]
	}
	roads[n] = &RoadSegment{id: -1, firstOut: firstOut, firstIn: firstIn}

	outEdges := make([]*OutEdge, len(b.order))
	inEdges := make([]*InEdge, len(b.order))
	outPos := make([]Index, n)
	inPos := make([]Index, n)
	for _, key := range b.order {
		w := b.weights[key]
		outEdges[roads[key.from].firstOut+outPos[key.from]] = NewOutEdge(key.to, w)
		outPos[key.from]++
		inEdges[roads[key.to].firstIn+inPos[key.to]] = NewInEdge(key.from, w)
		inPos[key.to]++
	}

	idToIndex := make(map[int64]Index, n)
	for id, idx := range b.idToIndex {
		idToIndex[id] = idx
	}

	g := &RoadGraph{
		roads:     roads,
		outEdges:  outEdges,
		inEdges:   inEdges,
		idToIndex: idToIndex,
	}
	g.RunKosaraju()
	return g
}
