package trajectory

import (
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
)

// Clean removes singleton trajectories: points whose trajectory is shared with neither neighbour.
// the first and last point are checked against their only neighbour, a one-point stream is dropped.
func Clean(points []da.TrajectoryPoint) ([]da.TrajectoryPoint, int) {
	cleaned := make([]da.TrajectoryPoint, 0, len(points))
	for i, p := range points {
		withPrev := i > 0 && p.SameTrajectory(points[i-1])
		withNext := i < len(points)-1 && p.SameTrajectory(points[i+1])
		if withPrev || withNext {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned, len(points) - len(cleaned)
}
