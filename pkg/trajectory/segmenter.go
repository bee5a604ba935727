package trajectory

import (
	"fmt"
	"slices"
	"time"

	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

// Thresholds of the trajectory break rules.
type Thresholds struct {
	TimeGap      time.Duration
	StayDuration time.Duration
	SpeedLimit   float64 // km/h
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		TimeGap:      pkg.DEFAULT_TIME_GAP_MINUTES * time.Minute,
		StayDuration: pkg.DEFAULT_STAY_DURATION_MINUTES * time.Minute,
		SpeedLimit:   pkg.DEFAULT_SPEED_LIMIT_KMH,
	}
}

// ThresholdsFromConfig builds the batch thresholds, or the interactive ones with the shorter dwell.
func ThresholdsFromConfig(cfg util.SegmenterConfig, interactive bool) Thresholds {
	stay := cfg.StayDuration
	if interactive {
		stay = cfg.InteractiveStayDuration
	}
	return Thresholds{
		TimeGap:      time.Duration(cfg.TimeGap) * time.Minute,
		StayDuration: time.Duration(stay) * time.Minute,
		SpeedLimit:   cfg.SpeedLimit,
	}
}

type SegmentStats struct {
	Readings     int
	Duplicates   int
	UnknownRoads int
	StayDeleted  int
	Scenarios    map[pkg.Scenario]int
}

// Segmenter splits one vehicle's readings into trajectories.
type Segmenter struct {
	network    RoadNetwork
	thresholds Thresholds
	logger     *zap.Logger
}

func NewSegmenter(network RoadNetwork, thresholds Thresholds, logger *zap.Logger) *Segmenter {
	return &Segmenter{
		network:    network,
		thresholds: thresholds,
		logger:     logger,
	}
}

func (s *Segmenter) GetThresholds() Thresholds {
	return s.thresholds
}

/*
segmentState is the memory of the segmentation fold.

retained points are split in two buffers: finalized points are never touched again, window holds the
points of the current stay, i.e. every retained point since the vehicle entered its current road.
window[0] is the entry point, its time is stayStart. the window is flushed into finalized when the road changes.
a long stay collapses the window to its entry point, which removes exactly the points strictly between
stayStart and the current reading.
*/
type segmentState struct {
	started      bool
	prev         da.TrajectoryPoint
	trajectoryID int
	stayStart    time.Time

	finalized []da.TrajectoryPoint
	window    []da.TrajectoryPoint
}

func (st *segmentState) flush() {
	st.finalized = append(st.finalized, st.window...)
	st.window = st.window[:0]
}

func (st *segmentState) retain(p da.TrajectoryPoint) {
	st.window = append(st.window, p)
	st.prev = p
}

func (st *segmentState) points() []da.TrajectoryPoint {
	st.flush()
	return st.finalized
}

// Segment assigns trajectory ids to the readings of one vehicle.
// readings are stably sorted by time first; readings on roads outside the network are skipped.
func (s *Segmenter) Segment(readings []da.Reading) ([]da.TrajectoryPoint, SegmentStats, error) {
	stats := SegmentStats{
		Readings:  len(readings),
		Scenarios: make(map[pkg.Scenario]int),
	}
	if len(readings) == 0 {
		return []da.TrajectoryPoint{}, stats, nil
	}

	vehicleID := readings[0].VehicleID
	sorted := make([]da.Reading, 0, len(readings))
	for _, r := range readings {
		if r.VehicleID != vehicleID {
			return nil, stats, util.WrapErrorf(nil, util.ErrBadParamInput,
				"segment: readings of vehicles %s and %s mixed", vehicleID, r.VehicleID)
		}
		if !s.network.HasRoad(r.RoadID) {
			stats.UnknownRoads++
			continue
		}
		sorted = append(sorted, r)
	}
	slices.SortStableFunc(sorted, func(a, b da.Reading) int {
		return a.Time.Compare(b.Time)
	})

	st := &segmentState{
		finalized: make([]da.TrajectoryPoint, 0, len(sorted)),
		window:    make([]da.TrajectoryPoint, 0, 16),
	}
	for _, r := range sorted {
		if err := s.step(st, r, &stats); err != nil {
			return nil, stats, err
		}
	}

	points := st.points()
	for _, p := range points {
		stats.Scenarios[p.Scenario]++
	}
	return points, stats, nil
}

func (s *Segmenter) step(st *segmentState, r da.Reading, stats *SegmentStats) error {
	if !st.started {
		st.started = true
		st.trajectoryID = 0
		st.stayStart = r.Time
		st.retain(da.NewTrajectoryPoint(r, st.trajectoryID, pkg.SCENARIO_NEW_FIRST))
		return nil
	}

	if r.Time.Equal(st.prev.Time) {
		stats.Duplicates++
		s.logger.Debug("duplicate timestamp, reading dropped",
			zap.String("vehicle_id", r.VehicleID),
			zap.String("time", da.FormatTimestamp(r.Time)),
			zap.Int64("road_id", r.RoadID))
		return nil
	}

	if st.prev.RoadID != r.RoadID {
		st.stayStart = r.Time
		st.flush()
	}

	elapsed := r.Time.Sub(st.prev.Time)
	scenario := pkg.SCENARIO_CONTINUE

	switch {
	case elapsed > s.thresholds.TimeGap:
		scenario = pkg.SCENARIO_TIME_GAP
		st.trajectoryID++

	case r.Time.Sub(st.stayStart) > s.thresholds.StayDuration:
		// parked: keep the entry and this reading, in different trajectories
		scenario = pkg.SCENARIO_LONG_STAY
		entry := st.window[0]
		stats.StayDeleted += len(st.window) - 1
		st.window = st.window[:1]
		st.trajectoryID = entry.TrajectoryID + 1

	case !s.network.HasPath(st.prev.RoadID, r.RoadID):
		scenario = pkg.SCENARIO_UNREACHABLE
		st.trajectoryID++

	default:
		dist, err := s.network.PathLength(st.prev.RoadID, r.RoadID)
		if err != nil {
			return fmt.Errorf("segment vehicle %s: path length %d -> %d: %w",
				r.VehicleID, st.prev.RoadID, r.RoadID, err)
		}
		speed := dist / elapsed.Hours()
		if speed > s.thresholds.SpeedLimit {
			scenario = pkg.SCENARIO_IMPLAUSIBLE_SPEED
			st.trajectoryID++
		}
	}

	st.retain(da.NewTrajectoryPoint(r, st.trajectoryID, scenario))
	return nil
}
