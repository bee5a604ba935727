package datastructure

import (
	"time"

	"github.com/lintang-b-s/roadflow/pkg"
)

// Reading is one map-matched gps ping. RoadID is the road segment the matcher snapped it to.
type Reading struct {
	VehicleID string
	Time      time.Time
	RoadID    int64
}

func NewReading(vehicleID string, t time.Time, roadID int64) Reading {
	return Reading{VehicleID: vehicleID, Time: t, RoadID: roadID}
}

// TrajectoryPoint is a reading assigned to a trajectory. recovered points share the same shape.
type TrajectoryPoint struct {
	VehicleID    string
	TrajectoryID int
	Time         time.Time
	RoadID       int64
	Scenario     pkg.Scenario
}

func NewTrajectoryPoint(r Reading, trajectoryID int, scenario pkg.Scenario) TrajectoryPoint {
	return TrajectoryPoint{
		VehicleID:    r.VehicleID,
		TrajectoryID: trajectoryID,
		Time:         r.Time,
		RoadID:       r.RoadID,
		Scenario:     scenario,
	}
}

// SameTrajectory reports whether p and q belong to the same (vehicle, trajectory) group.
func (p TrajectoryPoint) SameTrajectory(q TrajectoryPoint) bool {
	return p.VehicleID == q.VehicleID && p.TrajectoryID == q.TrajectoryID
}

// WithRoad copies p onto another road segment.
func (p TrajectoryPoint) WithRoad(roadID int64, scenario pkg.Scenario) TrajectoryPoint {
	p.RoadID = roadID
	p.Scenario = scenario
	return p
}
