package metrics

import (
	"testing"

	"github.com/lintang-b-s/roadflow/pkg"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSkipped(t *testing.T) {
	before := testutil.ToFloat64(readingsSkipped.WithLabelValues(SKIP_DUPLICATE))
	ObserveSkipped(SKIP_DUPLICATE, 3)
	ObserveSkipped(SKIP_DUPLICATE, 0)
	assert.Equal(t, before+3, testutil.ToFloat64(readingsSkipped.WithLabelValues(SKIP_DUPLICATE)))
}

func TestObserveScenario(t *testing.T) {
	c := scenarioPoints.WithLabelValues(pkg.SCENARIO_RECOVERED.String())
	before := testutil.ToFloat64(c)
	ObserveScenario(pkg.SCENARIO_RECOVERED, 2)
	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestObserveCheckpoint(t *testing.T) {
	before := testutil.ToFloat64(checkpointsWritten.WithLabelValues(JOB_FLOW))
	ObserveCheckpoint(JOB_FLOW)
	ObserveCheckpoint(JOB_EXTRACTOR)
	assert.Equal(t, before+1, testutil.ToFloat64(checkpointsWritten.WithLabelValues(JOB_FLOW)))
}
