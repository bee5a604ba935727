package controllers

import (
	"time"

	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
)

type shortestPathRequest struct {
	Origin      string `json:"origin" validate:"required,numeric"`
	Destination string `json:"destination" validate:"required,numeric"`
}

type shortestPathResponse struct {
	Path   []int64 `json:"path"`
	Length float64 `json:"length"` // km between the centers of origin and destination
}

func NewShortestPathResponse(path []int64, length float64) shortestPathResponse {
	return shortestPathResponse{
		Path:   path,
		Length: length,
	}
}

type readingRequest struct {
	Time   string `json:"time" validate:"required"`
	RoadID int64  `json:"road_id"`
}

type trajectoryRequest struct {
	VehicleID string           `json:"vehicle_id" validate:"required"`
	Readings  []readingRequest `json:"readings" validate:"required,min=1,dive"`
}

type trajectoryPoint struct {
	TrajectoryID int          `json:"trajectory_id"`
	Time         string       `json:"time"`
	RoadID       int64        `json:"road_id"`
	Scenario     pkg.Scenario `json:"scenario"`
}

type trajectoryResponse struct {
	VehicleID  string            `json:"vehicle_id"`
	Points     []trajectoryPoint `json:"points"`
	Duplicates int               `json:"duplicates"`
	Unknown    int               `json:"unknown_roads"`
	Singletons int               `json:"singletons"`
	Inserted   int               `json:"inserted"`
}

func NewTrajectoryResponse(vehicleID string, points []da.TrajectoryPoint, stats trajectory.ReconstructStats) trajectoryResponse {
	resp := trajectoryResponse{
		VehicleID:  vehicleID,
		Points:     make([]trajectoryPoint, len(points)),
		Duplicates: stats.Duplicates,
		Unknown:    stats.UnknownRoads,
		Singletons: stats.Singletons,
		Inserted:   stats.Inserted,
	}
	for i, p := range points {
		resp.Points[i] = trajectoryPoint{
			TrajectoryID: p.TrajectoryID,
			Time:         da.FormatTimestamp(p.Time),
			RoadID:       p.RoadID,
			Scenario:     p.Scenario,
		}
	}
	return resp
}

type flowRequest struct {
	Date   string `validate:"required,len=8,numeric"`
	RoadID string `validate:"required,numeric"`
}

type flowInterval struct {
	Start string `json:"start"`
	Count int64  `json:"count"`
}

type flowResponse struct {
	Date   string         `json:"date"`
	RoadID int64          `json:"road_id"`
	Flow   []flowInterval `json:"flow"`
}

func NewFlowResponse(date string, roadID int64, intervals []time.Time, counts []int64) flowResponse {
	resp := flowResponse{Date: date, RoadID: roadID, Flow: make([]flowInterval, len(intervals))}
	for i, t := range intervals {
		resp.Flow[i] = flowInterval{Start: da.FormatTimestamp(t), Count: counts[i]}
	}
	return resp
}

type transitionRequest struct {
	Start  string `validate:"required,len=8,numeric"`
	End    string `validate:"required,len=8,numeric"`
	Origin string `validate:"required,numeric"`
}

type transition struct {
	Bucket      int   `json:"bucket"`
	Destination int64 `json:"destination"`
	Count       int64 `json:"count"`
}

type transitionResponse struct {
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Origin      int64        `json:"origin"`
	Transitions []transition `json:"transitions"`
}

func NewTransitionResponse(start, end string, origin int64, transitions []da.RoadTransition) transitionResponse {
	resp := transitionResponse{Start: start, End: end, Origin: origin, Transitions: make([]transition, len(transitions))}
	for i, t := range transitions {
		resp.Transitions[i] = transition{Bucket: t.Bucket, Destination: t.Destination, Count: t.Count}
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
