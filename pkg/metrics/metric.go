package metrics

import (
	"github.com/lintang-b-s/roadflow/pkg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readingsSegmented = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadflow_segmenter_readings_total",
		Help: "Total number of map-matched readings fed to the trajectory segmenter.",
	})
	readingsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadflow_segmenter_readings_skipped_total",
		Help: "Readings not assigned to any trajectory, by reason.",
	}, []string{"reason"})
	scenarioPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadflow_trajectory_points_total",
		Help: "Trajectory points emitted, by the rule that produced them.",
	}, []string{"scenario"})
	vehiclesReconstructed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadflow_vehicles_reconstructed_total",
		Help: "Total number of vehicles whose trajectories were reconstructed.",
	})
	recoveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadflow_recovery_failures_total",
		Help: "Vehicles whose recovery found no path between two segmented points.",
	})
	flowIncrements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadflow_flow_increments_total",
		Help: "Total number of flow table increments.",
	})
	transitionIncrements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadflow_transition_increments_total",
		Help: "Total number of transition tensor increments.",
	})
	checkpointsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadflow_checkpoints_written_total",
		Help: "Checkpoints persisted, by job.",
	}, []string{"job"})
)

const (
	SKIP_DUPLICATE    = "duplicate"
	SKIP_UNKNOWN_ROAD = "unknown_road"
	SKIP_LONG_STAY    = "long_stay"
	SKIP_SINGLETON    = "singleton"

	JOB_EXTRACTOR = "extractor"
	JOB_FLOW      = "flow"
)

func ObserveReadings(n int) {
	readingsSegmented.Add(float64(n))
}

func ObserveSkipped(reason string, n int) {
	if n == 0 {
		return
	}
	readingsSkipped.WithLabelValues(reason).Add(float64(n))
}

func ObserveScenario(s pkg.Scenario, n int) {
	if n == 0 {
		return
	}
	scenarioPoints.WithLabelValues(s.String()).Add(float64(n))
}

func ObserveVehicle() {
	vehiclesReconstructed.Inc()
}

func ObserveRecoveryFailure() {
	recoveryFailures.Inc()
}

func ObserveFlowIncrement() {
	flowIncrements.Inc()
}

func ObserveTransitionIncrement() {
	transitionIncrements.Inc()
}

func ObserveCheckpoint(job string) {
	checkpointsWritten.WithLabelValues(job).Inc()
}
