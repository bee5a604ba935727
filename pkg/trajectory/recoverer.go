package trajectory

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
)

// RecoveryError means two points that survived segmentation have no path between them,
// so the graph used for segmentation and the one used for recovery disagree.
type RecoveryError struct {
	VehicleID   string
	Origin      int64
	Destination int64
	Err         error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recover trajectory of vehicle %s from road %d to road %d: %v",
		e.VehicleID, e.Origin, e.Destination, e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

type Recoverer struct {
	network RoadNetwork
}

func NewRecoverer(network RoadNetwork) *Recoverer {
	return &Recoverer{network: network}
}

// Recover fills every non adjacent consecutive pair of a trajectory with the shortest path between them.
// inserted points, destination included, copy the destination point and are tagged recovered.
func (rc *Recoverer) Recover(points []da.TrajectoryPoint) ([]da.TrajectoryPoint, int, error) {
	recovered := make([]da.TrajectoryPoint, 0, len(points))
	inserted := 0

	for i, cur := range points {
		if i == 0 || !cur.SameTrajectory(points[i-1]) {
			recovered = append(recovered, cur)
			continue
		}

		prev := points[i-1]
		if prev.RoadID == cur.RoadID {
			recovered = append(recovered, cur)
			continue
		}

		path, err := rc.network.ShortestPath(prev.RoadID, cur.RoadID)
		if err != nil {
			if errors.Is(err, util.ErrNoPath) {
				return nil, inserted, &RecoveryError{
					VehicleID:   cur.VehicleID,
					Origin:      prev.RoadID,
					Destination: cur.RoadID,
					Err:         err,
				}
			}
			return nil, inserted, err
		}

		for _, roadID := range path[1:] {
			recovered = append(recovered, cur.WithRoad(roadID, pkg.SCENARIO_RECOVERED))
		}
		inserted += len(path) - 2
	}

	return recovered, inserted, nil
}
