package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/lintang-b-s/roadflow/pkg/checkpoint"
	"github.com/lintang-b-s/roadflow/pkg/concurrent"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/dataset"
	"github.com/lintang-b-s/roadflow/pkg/metrics"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

type Stats struct {
	Readings      int // readings in the input file
	Dropped       int // readings on roads outside the road list
	Vehicles      int
	Reconstructed int // vehicles reconstructed by this run
	Points        int // rows appended by this run
	ResumedAfter  int64
}

// Extractor turns one date of map-matched readings into the recovered trajectory stream of that date.
type Extractor struct {
	reconstructor *trajectory.Reconstructor
	roads         *da.RoadIndex
	batchSize     int
	workers       int
	logger        *zap.Logger
}

func NewExtractor(network trajectory.RoadNetwork, roads *da.RoadIndex, thresholds trajectory.Thresholds,
	batchSize, workers int, logger *zap.Logger) *Extractor {
	return &Extractor{
		reconstructor: trajectory.NewReconstructor(network, thresholds, logger),
		roads:         roads,
		batchSize:     batchSize,
		workers:       workers,
		logger:        logger,
	}
}

type vehicleResult struct {
	points []da.TrajectoryPoint
	err    error
}

func (e *Extractor) loadReadings(readingsPath string) ([]string, map[string][]da.Reading, Stats, error) {
	var stats Stats
	readings, err := dataset.ReadReadingsFromFile(readingsPath)
	if err != nil {
		return nil, nil, stats, err
	}
	stats.Readings = len(readings)

	kept := readings[:0]
	for _, r := range readings {
		if !e.roads.Contains(r.RoadID) {
			stats.Dropped++
			continue
		}
		kept = append(kept, r)
	}

	order, groups := dataset.GroupByVehicle(kept)
	stats.Vehicles = len(order)
	return order, groups, stats, nil
}

// create writes the header of a fresh output and a checkpoint at vehicle -1.
func (e *Extractor) create(trajectoryPath, cpPath string) (*os.File, int64, error) {
	err := util.AtomicWriteFile(trajectoryPath, func(w io.Writer) error {
		return dataset.NewTrajectoryWriter(w).WriteHeader()
	})
	if err != nil {
		return nil, -1, err
	}
	f, err := os.OpenFile(trajectoryPath, os.O_RDWR, 0644)
	if err != nil {
		return nil, -1, err
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, -1, err
	}
	if err := checkpoint.Write(cpPath, checkpoint.New(-1, offset)); err != nil {
		f.Close()
		return nil, -1, err
	}
	return f, -1, nil
}

// open returns the output positioned for appending and the index of the last vehicle already written.
func (e *Extractor) open(trajectoryPath, cpPath string, numVehicles int) (*os.File, int64, error) {
	if err := checkpoint.ClearDone(trajectoryPath); err != nil {
		return nil, -1, err
	}

	resume, err := checkpoint.Resumable(trajectoryPath, cpPath)
	if errors.Is(err, util.ErrCheckpointCorrupted) {
		// stopped between the header and the first checkpoint
		headerOnly, headerErr := dataset.HasOnlyTrajectoryHeader(trajectoryPath)
		if headerErr != nil || !headerOnly {
			return nil, -1, err
		}
		e.logger.Warn("output has only the header and no checkpoint, starting over",
			zap.String("output", trajectoryPath))
		resume, err = false, nil
	}
	if err != nil {
		return nil, -1, err
	}
	if !resume {
		return e.create(trajectoryPath, cpPath)
	}

	cp, err := checkpoint.Read(cpPath)
	if err != nil {
		return nil, -1, err
	}
	if !cp.HasValue {
		return nil, -1, util.WrapErrorf(nil, util.ErrCheckpointCorrupted, "checkpoint %s has no byte offset", cpPath)
	}
	if cp.Index >= int64(numVehicles) {
		return nil, -1, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"checkpoint %s is at vehicle %d but the readings have %d vehicles", cpPath, cp.Index, numVehicles)
	}

	f, err := os.OpenFile(trajectoryPath, os.O_RDWR, 0644)
	if err != nil {
		return nil, -1, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, -1, err
	}
	if info.Size() < cp.Value {
		f.Close()
		return nil, -1, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"checkpoint %s is at byte %d but %s has %d bytes", cpPath, cp.Value, trajectoryPath, info.Size())
	}

	// drop rows of a batch that was cut off before its checkpoint
	if err := f.Truncate(cp.Value); err != nil {
		f.Close()
		return nil, -1, err
	}
	if _, err := f.Seek(cp.Value, io.SeekStart); err != nil {
		f.Close()
		return nil, -1, err
	}
	return f, cp.Index, nil
}

// Extract reconstructs every vehicle of readingsPath and appends the recovered points to trajectoryPath
// in first appearance order. output and checkpoint (trajectoryPath + ".checkpoint") are advanced
// every batchSize vehicles, and a rerun continues after the last checkpointed vehicle.
// the done marker (trajectoryPath + ".done") is written only once every vehicle is appended.
// a vehicle whose recovery finds no path fails the whole run.
func (e *Extractor) Extract(ctx context.Context, readingsPath, trajectoryPath string) (Stats, error) {
	logger := e.logger.With(zap.String("run_id", uuid.NewString()))

	order, groups, stats, err := e.loadReadings(readingsPath)
	if err != nil {
		return stats, err
	}
	logger.Sugar().Infof("loaded %d readings of %d vehicles, %d readings dropped on unknown roads",
		stats.Readings, stats.Vehicles, stats.Dropped)

	cpPath := checkpoint.Sidecar(trajectoryPath)
	f, last, err := e.open(trajectoryPath, cpPath, len(order))
	if err != nil {
		return stats, err
	}
	defer f.Close()
	stats.ResumedAfter = last
	if last >= 0 {
		logger.Sugar().Infof("resuming trajectory extraction after vehicle %d", last)
	}

	tw := dataset.NewTrajectoryWriter(f)
	for start := int(last + 1); start < len(order); start += e.batchSize {
		end := util.MinInt(start+e.batchSize, len(order))
		batch := order[start:end]

		// a started batch always completes, the checkpoint stays on a batch boundary
		results, err := concurrent.Map(context.Background(), e.workers, batch, func(vehicleID string) vehicleResult {
			points, _, err := e.reconstructor.Reconstruct(groups[vehicleID])
			return vehicleResult{points: points, err: err}
		})
		if err != nil {
			return stats, err
		}

		for i, res := range results {
			if res.err != nil {
				return stats, fmt.Errorf("vehicle %s: %w", batch[i], res.err)
			}
			if err := tw.Write(res.points); err != nil {
				return stats, err
			}
			stats.Points += len(res.points)
		}
		if err := tw.Flush(); err != nil {
			return stats, err
		}
		if err := f.Sync(); err != nil {
			return stats, err
		}
		offset, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return stats, err
		}
		if err := checkpoint.Write(cpPath, checkpoint.New(int64(end-1), offset)); err != nil {
			return stats, fmt.Errorf("save extractor checkpoint: %w", err)
		}
		metrics.ObserveCheckpoint(metrics.JOB_EXTRACTOR)
		stats.Reconstructed += len(batch)

		logger.Sugar().Infof("extracted vehicles %d/%d, appended %d points", end, len(order), stats.Points)
		if end < len(order) && util.StopConcurrentOperation(ctx) {
			return stats, ctx.Err()
		}
	}

	if err := checkpoint.MarkDone(trajectoryPath, int64(len(order)-1)); err != nil {
		return stats, fmt.Errorf("mark trajectory stream finished: %w", err)
	}
	logger.Info("finished trajectory extraction",
		zap.String("output", trajectoryPath),
		zap.Int("vehicles", stats.Vehicles),
		zap.Int("reconstructed", stats.Reconstructed),
		zap.Int("points", stats.Points))
	return stats, nil
}
