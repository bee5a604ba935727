package trajectory

// RoadNetwork is the graph queries trajectory reconstruction needs. *routing.Router implements it.
type RoadNetwork interface {
	HasRoad(roadID int64) bool
	HasPath(origin, destination int64) bool
	PathLength(origin, destination int64) (float64, error)
	ShortestPath(origin, destination int64) ([]int64, error)
}
