package controllers

import (
	"context"
	"time"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
)

type RoutingService interface {
	ShortestPath(origin, destination int64) ([]int64, float64, error)
}

type TrajectoryService interface {
	Reconstruct(vehicleID string, readings []da.Reading) ([]da.TrajectoryPoint, trajectory.ReconstructStats, error)
}

type FlowService interface {
	RoadFlow(date string, roadID int64) ([]time.Time, []int64, error)
}

type TransitionService interface {
	Transitions(ctx context.Context, startDate, endDate string, origin int64) ([]da.RoadTransition, error)
}
