package usecases

import (
	"context"

	"github.com/lintang-b-s/roadflow/pkg/aggregator"
)

type RoadNetwork interface {
	ShortestPath(origin, destination int64) ([]int64, error)
	PathLength(origin, destination int64) (float64, error)
}

type TensorSource interface {
	RangeTensor(ctx context.Context, startDate, endDate string) (*aggregator.Tensor, error)
}

// FlowPaths names the flow table of a date range. *util.Config implements it.
type FlowPaths interface {
	FlowPath(startDate, endDate string) string
}
