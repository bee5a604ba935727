package usecases

import (
	"go.uber.org/zap"
)

type RoutingService struct {
	log     *zap.Logger
	network RoadNetwork
}

func NewRoutingService(log *zap.Logger, network RoadNetwork) *RoutingService {
	return &RoutingService{
		log:     log,
		network: network,
	}
}

// ShortestPath returns the road sequence from origin to destination, both included,
// and its length in km measured between the road centers.
func (rs *RoutingService) ShortestPath(origin, destination int64) ([]int64, float64, error) {
	path, err := rs.network.ShortestPath(origin, destination)
	if err != nil {
		return nil, 0, err
	}
	length, err := rs.network.PathLength(origin, destination)
	if err != nil {
		return nil, 0, err
	}
	return path, length, nil
}
