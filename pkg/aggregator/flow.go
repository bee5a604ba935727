package aggregator

import (
	"context"
	"fmt"
	"os"

	"github.com/lintang-b-s/roadflow/pkg/checkpoint"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/dataset"
	"github.com/lintang-b-s/roadflow/pkg/metrics"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

// flowState remembers the previous row of the recovered stream.
type flowState struct {
	started        bool
	prevVehicle    string
	prevTrajectory int
	prevRoad       int64
}

// step folds p into the state and reports whether p enters a road: first row, a new trajectory,
// or a road change inside the trajectory. a repeated reading on the same road was already counted.
func (st *flowState) step(p da.TrajectoryPoint) bool {
	enters := !st.started ||
		p.VehicleID != st.prevVehicle ||
		p.TrajectoryID != st.prevTrajectory ||
		p.RoadID != st.prevRoad

	st.started = true
	st.prevVehicle = p.VehicleID
	st.prevTrajectory = p.TrajectoryID
	st.prevRoad = p.RoadID
	return enters
}

// FlowAggregator counts road entries per time interval of one date.
type FlowAggregator struct {
	roads     *da.RoadIndex
	interval  int
	batchSize int
	logger    *zap.Logger
}

func NewFlowAggregator(roads *da.RoadIndex, intervalMinutes, batchSize int, logger *zap.Logger) *FlowAggregator {
	return &FlowAggregator{
		roads:     roads,
		interval:  intervalMinutes,
		batchSize: batchSize,
		logger:    logger,
	}
}

// load returns the flow table to continue from and the checkpointed row index (-1 for a fresh run).
func (fa *FlowAggregator) load(date, flowPath, cpPath string) (*da.FlowTable, int64, error) {
	fresh, err := da.NewFlowTable(date, fa.interval, fa.roads.Roads())
	if err != nil {
		return nil, -1, err
	}

	resume, err := checkpoint.Resumable(flowPath, cpPath)
	if err != nil {
		return nil, -1, err
	}
	if !resume {
		return fresh, -1, nil
	}

	ft, err := da.ReadFlowTableFromFile(flowPath, fa.interval)
	if err != nil {
		return nil, -1, util.WrapErrorf(err, util.ErrCheckpointCorrupted, "load partial flow table %s", flowPath)
	}
	if !ft.Compatible(fresh) {
		return nil, -1, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"partial flow table %s does not match date %s, interval %d and the road list", flowPath, date, fa.interval)
	}

	cp, err := checkpoint.Read(cpPath)
	if err != nil {
		return nil, -1, err
	}
	if cp.HasValue && cp.Value != ft.Total() {
		return nil, -1, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"checkpoint %s records total flow %d, partial flow table has %d", cpPath, cp.Value, ft.Total())
	}

	fa.logger.Sugar().Infof("resuming flow aggregation after row %d, existing total flow: %d", cp.Index, ft.Total())
	return ft, cp.Index, nil
}

func (fa *FlowAggregator) persist(ft *da.FlowTable, flowPath, cpPath string, lastIndex int64) error {
	if err := ft.WriteToFile(flowPath); err != nil {
		return fmt.Errorf("save flow table: %w", err)
	}
	if err := checkpoint.Write(cpPath, checkpoint.New(lastIndex, ft.Total())); err != nil {
		return fmt.Errorf("save flow checkpoint: %w", err)
	}
	metrics.ObserveCheckpoint(metrics.JOB_FLOW)
	return nil
}

// Aggregate streams the recovered trajectory file of date into the flow table at flowPath.
// the table and the checkpoint (flowPath with extension .checkpoint) are persisted every batchSize rows,
// and a rerun resumes right after the checkpointed row. only a finished trajectory stream is read,
// and the flow table gets its done marker once the last row is counted.
func (fa *FlowAggregator) Aggregate(ctx context.Context, date, trajectoryPath, flowPath string) (*da.FlowTable, error) {
	cpPath := checkpoint.ReplaceExt(flowPath)

	if err := checkpoint.RequireDone(trajectoryPath); err != nil {
		return nil, fmt.Errorf("recovered trajectory of %s: %w", date, err)
	}
	if err := checkpoint.ClearDone(flowPath); err != nil {
		return nil, err
	}

	ft, cpIndex, err := fa.load(date, flowPath, cpPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(trajectoryPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := dataset.NewTrajectoryReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", trajectoryPath, err)
	}

	var (
		st        flowState
		lastIndex int64 = -1
	)
	for i, row := range tr.All() {
		if row.Err != nil {
			return nil, fmt.Errorf("%s: %w", trajectoryPath, row.Err)
		}
		idx := int64(i)
		lastIndex = idx

		if idx < cpIndex {
			continue
		}
		if idx == cpIndex {
			st.step(row.Point)
			continue
		}

		if st.step(row.Point) {
			if err := ft.Increment(row.Point.Time, row.Point.RoadID); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", trajectoryPath, idx, err)
			}
			metrics.ObserveFlowIncrement()
		}

		if (idx+1)%int64(fa.batchSize) == 0 {
			fa.logger.Sugar().Infof("saving flow at row %d, total flow: %d", idx, ft.Total())
			if err := fa.persist(ft, flowPath, cpPath, idx); err != nil {
				return nil, err
			}
			if util.StopConcurrentOperation(ctx) {
				return nil, ctx.Err()
			}
		}
	}

	if lastIndex < cpIndex {
		return nil, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"checkpoint %s is at row %d but %s has %d rows", cpPath, cpIndex, trajectoryPath, lastIndex+1)
	}

	if err := fa.persist(ft, flowPath, cpPath, lastIndex); err != nil {
		return nil, err
	}
	if err := checkpoint.MarkDone(flowPath, lastIndex); err != nil {
		return nil, fmt.Errorf("mark flow table finished: %w", err)
	}
	fa.logger.Info("finished flow aggregation",
		zap.String("date", date),
		zap.Int64("rows", lastIndex+1),
		zap.Int64("total_flow", ft.Total()))
	return ft, nil
}
