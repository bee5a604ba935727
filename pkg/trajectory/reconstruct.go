package trajectory

import (
	"errors"

	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/metrics"
	"go.uber.org/zap"
)

type ReconstructStats struct {
	SegmentStats
	Singletons int // points removed by the cleaner
	Inserted   int // intermediate points added by recovery
}

// Reconstructor runs segment -> clean -> recover for one vehicle at a time.
type Reconstructor struct {
	segmenter *Segmenter
	recoverer *Recoverer
	logger    *zap.Logger
}

func NewReconstructor(network RoadNetwork, thresholds Thresholds, logger *zap.Logger) *Reconstructor {
	return &Reconstructor{
		segmenter: NewSegmenter(network, thresholds, logger),
		recoverer: NewRecoverer(network),
		logger:    logger,
	}
}

// Reconstruct returns the recovered trajectory stream of one vehicle.
func (rc *Reconstructor) Reconstruct(readings []da.Reading) ([]da.TrajectoryPoint, ReconstructStats, error) {
	var stats ReconstructStats

	points, segStats, err := rc.segmenter.Segment(readings)
	stats.SegmentStats = segStats
	if err != nil {
		return nil, stats, err
	}

	cleaned, removed := Clean(points)
	stats.Singletons = removed

	recovered, inserted, err := rc.recoverer.Recover(cleaned)
	stats.Inserted = inserted
	if err != nil {
		var recErr *RecoveryError
		if errors.As(err, &recErr) {
			metrics.ObserveRecoveryFailure()
			rc.logger.Error("recovery found no path between segmented points",
				zap.String("vehicle_id", recErr.VehicleID),
				zap.Int64("origin", recErr.Origin),
				zap.Int64("destination", recErr.Destination))
		}
		return nil, stats, err
	}

	observe(stats, recovered)
	return recovered, stats, nil
}

func observe(stats ReconstructStats, recovered []da.TrajectoryPoint) {
	metrics.ObserveVehicle()
	metrics.ObserveReadings(stats.Readings)
	metrics.ObserveSkipped(metrics.SKIP_DUPLICATE, stats.Duplicates)
	metrics.ObserveSkipped(metrics.SKIP_UNKNOWN_ROAD, stats.UnknownRoads)
	metrics.ObserveSkipped(metrics.SKIP_LONG_STAY, stats.StayDeleted)
	metrics.ObserveSkipped(metrics.SKIP_SINGLETON, stats.Singletons)
	for scenario, n := range stats.Scenarios {
		metrics.ObserveScenario(scenario, n)
	}

	n := 0
	for _, p := range recovered {
		if p.Scenario == pkg.SCENARIO_RECOVERED {
			n++
		}
	}
	metrics.ObserveScenario(pkg.SCENARIO_RECOVERED, n)
}
