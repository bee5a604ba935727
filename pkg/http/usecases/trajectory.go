package usecases

import (
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

// TrajectoryService reconstructs a single vehicle on demand with the interactive stay threshold.
type TrajectoryService struct {
	log           *zap.Logger
	reconstructor *trajectory.Reconstructor
}

func NewTrajectoryService(log *zap.Logger, network trajectory.RoadNetwork, thresholds trajectory.Thresholds) *TrajectoryService {
	return &TrajectoryService{
		log:           log,
		reconstructor: trajectory.NewReconstructor(network, thresholds, log),
	}
}

func (ts *TrajectoryService) Reconstruct(vehicleID string, readings []da.Reading) ([]da.TrajectoryPoint,
	trajectory.ReconstructStats, error) {
	for i := range readings {
		if readings[i].VehicleID != vehicleID {
			return nil, trajectory.ReconstructStats{}, util.WrapErrorf(nil, util.ErrBadParamInput,
				"reading %d belongs to vehicle %s, not %s", i, readings[i].VehicleID, vehicleID)
		}
	}
	return ts.reconstructor.Reconstruct(readings)
}
