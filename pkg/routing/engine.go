package routing

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"go.uber.org/zap"
)

// Router answers road-to-road queries over an immutable RoadGraph. safe for concurrent use.
type Router struct {
	graph      *da.RoadGraph
	logger     *zap.Logger
	routeCache *lru.Cache[routeKey, route]
	searchPool sync.Pool
}

func NewRouter(graph *da.RoadGraph, logger *zap.Logger, cacheSize int) (*Router, error) {
	if cacheSize <= 0 {
		cacheSize = pkg.DEFAULT_ROUTE_CACHE_SIZE
	}
	routeCache, err := lru.New[routeKey, route](cacheSize)
	if err != nil {
		return nil, err
	}
	r := &Router{
		graph:      graph,
		logger:     logger,
		routeCache: routeCache,
	}
	r.searchPool = sync.Pool{
		New: func() any {
			return NewDijkstra(graph)
		},
	}
	return r, nil
}

func (r *Router) vertices(origin, destination int64) (da.Index, da.Index, error) {
	u, err := r.graph.MustVertexOf(origin)
	if err != nil {
		return da.INVALID_INDEX, da.INVALID_INDEX, err
	}
	v, err := r.graph.MustVertexOf(destination)
	if err != nil {
		return da.INVALID_INDEX, da.INVALID_INDEX, err
	}
	return u, v, nil
}

func (r *Router) search(u, v da.Index) route {
	key := routeKey{u, v}
	if cached, ok := r.routeCache.Get(key); ok {
		return cached
	}

	// reachability is answered from the scc condensation, so unreachable pairs never run a search
	var res route
	if u == v {
		res = route{path: []da.Index{u}, cost: 0}
	} else if r.graph.Reachable(u, v) {
		d := r.searchPool.Get().(*Dijkstra)
		path, cost, found := d.ShortestPath(u, v)
		r.logger.Debug("shortest path search",
			zap.Int64("origin", r.graph.RoadIDOf(u)),
			zap.Int64("destination", r.graph.RoadIDOf(v)),
			zap.Int("settled", d.numSettledNodes))
		r.searchPool.Put(d)
		if found {
			res = route{path: path, cost: cost}
		}
	}

	r.routeCache.Add(key, res)
	return res
}

// ShortestPath returns the road ids of a minimum weight path origin..destination, both included.
func (r *Router) ShortestPath(origin, destination int64) ([]int64, error) {
	u, v, err := r.vertices(origin, destination)
	if err != nil {
		return nil, err
	}
	res := r.search(u, v)
	if res.path == nil {
		return nil, &NoPathError{Origin: origin, Destination: destination}
	}

	roads := make([]int64, len(res.path))
	for i, w := range res.path {
		roads[i] = r.graph.RoadIDOf(w)
	}
	return roads, nil
}

// HasPath reports whether destination is reachable from origin. unknown roads are unreachable.
func (r *Router) HasPath(origin, destination int64) bool {
	u, v, err := r.vertices(origin, destination)
	if err != nil {
		return false
	}
	return r.graph.Reachable(u, v)
}

// PathLength is the distance between the centers of origin and destination:
// shortest path cost minus half of each end segment's length. zero for the same road.
func (r *Router) PathLength(origin, destination int64) (float64, error) {
	u, v, err := r.vertices(origin, destination)
	if err != nil {
		return 0, err
	}
	if u == v {
		return 0, nil
	}
	res := r.search(u, v)
	if res.path == nil {
		return 0, &NoPathError{Origin: origin, Destination: destination}
	}
	return res.cost - r.graph.GetLength(u)/2 - r.graph.GetLength(v)/2, nil
}

// IsAdjacent reports whether there is a direct arc origin->destination.
func (r *Router) IsAdjacent(origin, destination int64) bool {
	u, v, err := r.vertices(origin, destination)
	if err != nil {
		return false
	}
	return r.graph.IsAdjacent(u, v)
}

func (r *Router) HasRoad(roadID int64) bool {
	_, ok := r.graph.VertexOf(roadID)
	return ok
}
