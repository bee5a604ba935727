package trajectory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/routing"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	roadA int64 = 1
	roadB int64 = 2
	roadC int64 = 3
	roadD int64 = 4 // isolated
	roadR int64 = 5
	roadE int64 = 6
)

// A -> B -> C, C -> R -> E, every arc weighs 1 km.
func newTestNetwork(t *testing.T) *routing.Router {
	t.Helper()
	b := da.NewGraphBuilder()
	lengths := []struct {
		id     int64
		length float64
	}{
		{roadA, 1.6}, {roadB, 0.2}, {roadC, 1.6}, {roadD, 0.1}, {roadR, 0.5}, {roadE, 0.5},
	}
	for _, l := range lengths {
		require.NoError(t, b.AddRoad(l.id, l.length))
	}
	for _, e := range [][2]int64{{roadA, roadB}, {roadB, roadC}, {roadC, roadR}, {roadR, roadE}} {
		require.NoError(t, b.AddEdge(e[0], e[1], 1))
	}
	r, err := routing.NewRouter(b.Build(), zap.NewNop(), 64)
	require.NoError(t, err)
	return r
}

var t0 = time.Date(2016, 3, 25, 8, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time {
	return t0.Add(offset)
}

func reading(offset time.Duration, roadID int64) da.Reading {
	return da.NewReading("v1", at(offset), roadID)
}

func point(offset time.Duration, roadID int64, trajectoryID int, scenario pkg.Scenario) da.TrajectoryPoint {
	return da.TrajectoryPoint{
		VehicleID:    "v1",
		TrajectoryID: trajectoryID,
		Time:         at(offset),
		RoadID:       roadID,
		Scenario:     scenario,
	}
}

func newTestSegmenter(t *testing.T) *Segmenter {
	return NewSegmenter(newTestNetwork(t), DefaultThresholds(), zap.NewNop())
}

func TestSegment(t *testing.T) {
	testCases := []struct {
		name     string
		readings []da.Reading
		want     []da.TrajectoryPoint
	}{
		{
			name:     "empty",
			readings: []da.Reading{},
			want:     []da.TrajectoryPoint{},
		},
		{
			name: "plausible continuation",
			readings: []da.Reading{
				reading(0, roadA),
				reading(30*time.Second, roadC),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(30*time.Second, roadC, 0, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "duplicate timestamp is dropped",
			readings: []da.Reading{
				reading(0, roadA),
				reading(0, roadA),
				reading(0, roadB),
				reading(20*time.Second, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(20*time.Second, roadB, 0, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "time gap",
			readings: []da.Reading{
				reading(0, roadA),
				reading(11*time.Minute, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(11*time.Minute, roadB, 1, pkg.SCENARIO_TIME_GAP),
			},
		},
		{
			name: "gap of exactly the threshold continues",
			readings: []da.Reading{
				reading(0, roadA),
				reading(10*time.Minute, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(10*time.Minute, roadB, 0, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "unreachable",
			readings: []da.Reading{
				reading(0, roadA),
				reading(time.Minute, roadD),
				reading(2*time.Minute, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(time.Minute, roadD, 1, pkg.SCENARIO_UNREACHABLE),
				point(2*time.Minute, roadB, 2, pkg.SCENARIO_UNREACHABLE),
			},
		},
		{
			name: "implausible speed",
			readings: []da.Reading{
				reading(0, roadB),
				reading(10*time.Second, roadR),
			},
			// B -> C -> R costs 2 km, 1.65 km between the road centers, in 10 s
			want: []da.TrajectoryPoint{
				point(0, roadB, 0, pkg.SCENARIO_NEW_FIRST),
				point(10*time.Second, roadR, 1, pkg.SCENARIO_IMPLAUSIBLE_SPEED),
			},
		},
		{
			name: "readings are sorted by time",
			readings: []da.Reading{
				reading(40*time.Second, roadC),
				reading(0, roadA),
				reading(20*time.Second, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(20*time.Second, roadB, 0, pkg.SCENARIO_CONTINUE),
				point(40*time.Second, roadC, 0, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "unknown road is skipped",
			readings: []da.Reading{
				reading(0, roadA),
				reading(10*time.Second, 999),
				reading(20*time.Second, roadB),
			},
			want: []da.TrajectoryPoint{
				point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
				point(20*time.Second, roadB, 0, pkg.SCENARIO_CONTINUE),
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := newTestSegmenter(t).Segment(tt.readings)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSegmentLongStay(t *testing.T) {
	testCases := []struct {
		name     string
		readings []da.Reading
		want     []da.TrajectoryPoint
	}{
		{
			name: "parked for 15 minutes",
			readings: []da.Reading{
				reading(0, roadR),
				reading(5*time.Minute, roadR),
				reading(15*time.Minute, roadR),
			},
			want: []da.TrajectoryPoint{
				point(0, roadR, 0, pkg.SCENARIO_NEW_FIRST),
				point(15*time.Minute, roadR, 1, pkg.SCENARIO_LONG_STAY),
			},
		},
		{
			name: "stay of exactly the threshold is kept",
			readings: []da.Reading{
				reading(0, roadR),
				reading(5*time.Minute, roadR),
				reading(10*time.Minute, roadR),
			},
			want: []da.TrajectoryPoint{
				point(0, roadR, 0, pkg.SCENARIO_NEW_FIRST),
				point(5*time.Minute, roadR, 0, pkg.SCENARIO_CONTINUE),
				point(10*time.Minute, roadR, 0, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "window bounds are exclusive",
			readings: []da.Reading{
				reading(0, roadC),
				reading(time.Minute, roadR),
				reading(4*time.Minute, roadR),
				reading(8*time.Minute, roadR),
				reading(11*time.Minute+time.Second, roadR),
				reading(12*time.Minute, roadE),
			},
			// stay starts at 1m, entry at 1m and exit at 11m1s survive
			want: []da.TrajectoryPoint{
				point(0, roadC, 0, pkg.SCENARIO_NEW_FIRST),
				point(time.Minute, roadR, 0, pkg.SCENARIO_CONTINUE),
				point(11*time.Minute+time.Second, roadR, 1, pkg.SCENARIO_LONG_STAY),
				point(12*time.Minute, roadE, 1, pkg.SCENARIO_CONTINUE),
			},
		},
		{
			name: "repeated long stays keep ids contiguous",
			readings: []da.Reading{
				reading(0, roadR),
				reading(11*time.Minute, roadR),
				reading(12*time.Minute, roadR),
				reading(20*time.Minute, roadR),
				reading(21*time.Minute, roadE),
			},
			want: []da.TrajectoryPoint{
				point(0, roadR, 0, pkg.SCENARIO_NEW_FIRST),
				point(20*time.Minute, roadR, 1, pkg.SCENARIO_LONG_STAY),
				point(21*time.Minute, roadE, 1, pkg.SCENARIO_CONTINUE),
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := newTestSegmenter(t).Segment(tt.readings)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.readings), len(got)+stats.StayDeleted)
		})
	}
}

func TestSegmentInteractiveStay(t *testing.T) {
	cfg := util.DefaultConfig().Segmenter
	s := NewSegmenter(newTestNetwork(t), ThresholdsFromConfig(cfg, true), zap.NewNop())
	assert.Equal(t, 2*time.Minute, s.GetThresholds().StayDuration)

	got, _, err := s.Segment([]da.Reading{
		reading(0, roadR),
		reading(time.Minute, roadR),
		reading(3*time.Minute, roadR),
	})
	require.NoError(t, err)
	want := []da.TrajectoryPoint{
		point(0, roadR, 0, pkg.SCENARIO_NEW_FIRST),
		point(3*time.Minute, roadR, 1, pkg.SCENARIO_LONG_STAY),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentTrajectoryIDsContiguous(t *testing.T) {
	readings := []da.Reading{
		reading(0, roadA),
		reading(20*time.Second, roadB),
		reading(40*time.Second, roadD),
		reading(41*time.Second, roadD),
		reading(55*time.Minute, roadR),
		reading(56*time.Minute, roadR),
		reading(67*time.Minute, roadR),
		reading(68*time.Minute, roadR),
		reading(80*time.Minute, roadR),
		reading(80*time.Minute, roadE),
		reading(81*time.Minute, roadE),
		reading(81*time.Minute+10*time.Second, roadA),
	}

	got, _, err := newTestSegmenter(t).Segment(readings)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, 0, got[0].TrajectoryID)
	for i := 1; i < len(got); i++ {
		step := got[i].TrajectoryID - got[i-1].TrajectoryID
		assert.True(t, step == 0 || step == 1, "trajectory id jumps from %d to %d", got[i-1].TrajectoryID, got[i].TrajectoryID)
		assert.True(t, got[i].Time.After(got[i-1].Time))
	}
}

func TestSegmentMixedVehicles(t *testing.T) {
	_, _, err := newTestSegmenter(t).Segment([]da.Reading{
		reading(0, roadA),
		da.NewReading("v2", at(time.Second), roadB),
	})
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}

func TestClean(t *testing.T) {
	testCases := []struct {
		name        string
		ids         []int
		wantIDs     []int
		wantRemoved int
	}{
		{"single point stream", []int{0}, []int{}, 1},
		{"leading singleton", []int{0, 1, 1}, []int{1, 1}, 1},
		{"trailing singleton", []int{0, 0, 1}, []int{0, 0}, 1},
		{"middle singleton", []int{0, 0, 1, 2, 2}, []int{0, 0, 2, 2}, 1},
		{"all singletons", []int{0, 1, 2}, []int{}, 3},
		{"nothing to clean", []int{0, 0, 1, 1}, []int{0, 0, 1, 1}, 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			points := make([]da.TrajectoryPoint, len(tt.ids))
			for i, id := range tt.ids {
				points[i] = point(time.Duration(i)*time.Second, roadA, id, pkg.SCENARIO_CONTINUE)
			}
			cleaned, removed := Clean(points)
			gotIDs := make([]int, len(cleaned))
			for i, p := range cleaned {
				gotIDs[i] = p.TrajectoryID
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestReconstructInsertsShortestPath(t *testing.T) {
	rc := NewReconstructor(newTestNetwork(t), DefaultThresholds(), zap.NewNop())

	got, stats, err := rc.Reconstruct([]da.Reading{
		reading(0, roadA),
		reading(30*time.Second, roadC),
	})
	require.NoError(t, err)

	want := []da.TrajectoryPoint{
		point(0, roadA, 0, pkg.SCENARIO_NEW_FIRST),
		point(30*time.Second, roadB, 0, pkg.SCENARIO_RECOVERED),
		point(30*time.Second, roadC, 0, pkg.SCENARIO_RECOVERED),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reconstruct() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, stats.Inserted)
}

func TestReconstructParkedVehicle(t *testing.T) {
	rc := NewReconstructor(newTestNetwork(t), DefaultThresholds(), zap.NewNop())

	// the entry and exit of the stay end up as singletons of two trajectories
	got, stats, err := rc.Reconstruct([]da.Reading{
		reading(0, roadR),
		reading(5*time.Minute, roadR),
		reading(15*time.Minute, roadR),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, stats.StayDeleted)
	assert.Equal(t, 2, stats.Singletons)
}

func TestRecoveredStreamIsAdjacent(t *testing.T) {
	network := newTestNetwork(t)
	rc := NewReconstructor(network, DefaultThresholds(), zap.NewNop())

	got, _, err := rc.Reconstruct([]da.Reading{
		reading(0, roadA),
		reading(20*time.Second, roadA),
		reading(50*time.Second, roadC),
		reading(80*time.Second, roadE),
		reading(100*time.Second, roadE),
		reading(30*time.Minute, roadA),
		reading(30*time.Minute+40*time.Second, roadB),
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if !prev.SameTrajectory(cur) {
			continue
		}
		assert.True(t, prev.RoadID == cur.RoadID || network.IsAdjacent(prev.RoadID, cur.RoadID),
			"points %d and %d on roads %d -> %d are not adjacent", i-1, i, prev.RoadID, cur.RoadID)
		assert.False(t, cur.Time.Before(prev.Time))
	}
}

// inconsistentNetwork claims every pair is reachable but has no paths.
type inconsistentNetwork struct{}

func (inconsistentNetwork) HasRoad(int64) bool                       { return true }
func (inconsistentNetwork) HasPath(int64, int64) bool                { return true }
func (inconsistentNetwork) PathLength(int64, int64) (float64, error) { return 0, nil }
func (inconsistentNetwork) ShortestPath(o, d int64) ([]int64, error) {
	return nil, util.WrapErrorf(nil, util.ErrNoPath, "%d -> %d", o, d)
}

func TestRecoverNoPathIsFatal(t *testing.T) {
	rc := NewReconstructor(inconsistentNetwork{}, DefaultThresholds(), zap.NewNop())

	_, _, err := rc.Reconstruct([]da.Reading{
		reading(0, roadA),
		reading(30*time.Second, roadC),
	})
	require.Error(t, err)

	var recErr *RecoveryError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, "v1", recErr.VehicleID)
	assert.Equal(t, roadA, recErr.Origin)
	assert.Equal(t, roadC, recErr.Destination)
	assert.True(t, errors.Is(err, util.ErrNoPath))
}
