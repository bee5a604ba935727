package pkg

// Scenario tags which rule produced a trajectory point. diagnostic only, never read by the aggregators.
type Scenario string

const (
	SCENARIO_NEW_FIRST         Scenario = "new-first"
	SCENARIO_DUPLICATE         Scenario = "duplicate"
	SCENARIO_CONTINUE          Scenario = "continue"
	SCENARIO_TIME_GAP          Scenario = "time_gap"
	SCENARIO_LONG_STAY         Scenario = "long_stay"
	SCENARIO_UNREACHABLE       Scenario = "unreachable"
	SCENARIO_IMPLAUSIBLE_SPEED Scenario = "implausible_speed"
	SCENARIO_RECOVERED         Scenario = "recovered"
)

func (s Scenario) String() string {
	return string(s)
}

// BreaksTrajectory reports whether the tag starts a new trajectory id.
func (s Scenario) BreaksTrajectory() bool {
	switch s {
	case SCENARIO_TIME_GAP, SCENARIO_LONG_STAY, SCENARIO_UNREACHABLE, SCENARIO_IMPLAUSIBLE_SPEED:
		return true
	default:
		return false
	}
}


const (
	INF_WEIGHT float64 = 1e15

	// DD/MM/YYYY HH:MM:SS, wall clock without zone
	TIME_LAYOUT = "02/01/2006 15:04:05"
	DATE_LAYOUT = "20060102"

	SECONDS_PER_HOUR = 3600.0
)

// defaults of the batch jobs
const (
	DEFAULT_TIME_GAP_MINUTES              = 10
	DEFAULT_STAY_DURATION_MINUTES         = 10
	DEFAULT_INTERACTIVE_STAY_DURATION_MIN = 2
	DEFAULT_SPEED_LIMIT_KMH               = 120.0

	DEFAULT_FLOW_INTERVAL_MINUTES       = 5
	DEFAULT_FLOW_BATCH_SIZE             = 10000
	DEFAULT_TRANSITION_INTERVAL_MINUTES = 15
	DEFAULT_EXTRACTOR_BATCH_SIZE        = 50
	DEFAULT_ROUTE_CACHE_SIZE            = 1 << 16
)

const (
	DEBUG = false
)
