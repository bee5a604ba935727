package aggregator

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/lintang-b-s/roadflow/pkg/checkpoint"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/dataset"
	"github.com/lintang-b-s/roadflow/pkg/metrics"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PathResolver names the per date artifacts. *util.Config implements it.
type PathResolver interface {
	TrajectoryPath(startDate, endDate string) string
	TransitionPath(startDate, endDate string) string
}

type Tensor = da.TransitionTensor[int32]

// TensorCache reads the transition tensors a transition job already wrote. it never computes nor writes one.
type TensorCache struct {
	roads    *da.RoadIndex
	interval int
	paths    PathResolver
	logger   *zap.Logger
}

func NewTensorCache(roads *da.RoadIndex, intervalMinutes int, paths PathResolver, logger *zap.Logger) *TensorCache {
	return &TensorCache{
		roads:    roads,
		interval: intervalMinutes,
		paths:    paths,
		logger:   logger,
	}
}

func (tc *TensorCache) newTensor() *Tensor {
	return da.NewTransitionTensor[int32](da.BucketsPerDay(tc.interval), tc.roads.Len())
}

func (tc *TensorCache) load(path string) (*Tensor, bool, error) {
	exists, err := util.FileExists(path)
	if err != nil || !exists {
		return nil, false, err
	}
	tensor, err := da.ReadTransitionTensorFromFile[int32](path)
	if err != nil {
		return nil, false, fmt.Errorf("load cached tensor %s: %w", path, err)
	}

	buckets, n, _ := tensor.Shape()
	if buckets != da.BucketsPerDay(tc.interval) || n != tc.roads.Len() {
		return nil, false, util.WrapErrorf(nil, util.ErrInvalidConfig,
			"cached tensor %s has %d buckets x %d roads, want %d x %d", path, buckets, n,
			da.BucketsPerDay(tc.interval), tc.roads.Len())
	}
	return tensor, true, nil
}

// RangeTensor returns the cached range tensor of startDate..endDate, or sums the cached date tensors
// in memory. a date without a cached tensor is ErrNotFound.
func (tc *TensorCache) RangeTensor(ctx context.Context, startDate, endDate string) (*Tensor, error) {
	dates, err := util.DateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	tensor, ok, err := tc.load(tc.paths.TransitionPath(startDate, endDate))
	if err != nil || ok {
		return tensor, err
	}

	total := tc.newTensor()
	for _, date := range dates {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}
		tensor, ok, err := tc.load(tc.paths.TransitionPath(date, date))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrNotFound, "transitions of %s have not been aggregated", date)
		}
		if err := total.Add(tensor); err != nil {
			return nil, fmt.Errorf("date %s: %w", date, err)
		}
	}
	return total, nil
}

// TransitionAggregator builds [time of day bucket][origin][destination] transition count tensors.
type TransitionAggregator struct {
	*TensorCache
	workers int
}

func NewTransitionAggregator(roads *da.RoadIndex, intervalMinutes, workers int, paths PathResolver,
	logger *zap.Logger) *TransitionAggregator {
	if workers <= 0 {
		workers = 1
	}
	return &TransitionAggregator{
		TensorCache: NewTensorCache(roads, intervalMinutes, paths, logger),
		workers:     workers,
	}
}

// Accumulate folds a recovered trajectory stream into tensor. consecutive rows of the same vehicle and
// trajectory on different roads count one transition in the bucket of the earlier row.
func (ta *TransitionAggregator) Accumulate(ctx context.Context, tensor *Tensor,
	rows iter.Seq2[int, dataset.RowResult]) error {
	var (
		prev    da.TrajectoryPoint
		started bool
	)
	for i, row := range rows {
		if row.Err != nil {
			return row.Err
		}
		cur := row.Point

		if started && prev.SameTrajectory(cur) && prev.RoadID != cur.RoadID {
			origin, ok := ta.roads.IndexOf(prev.RoadID)
			if !ok {
				return util.WrapErrorf(nil, util.ErrUnknownRoad, "row %d: road %d is not in the road list", i-1, prev.RoadID)
			}
			destination, ok := ta.roads.IndexOf(cur.RoadID)
			if !ok {
				return util.WrapErrorf(nil, util.ErrUnknownRoad, "row %d: road %d is not in the road list", i, cur.RoadID)
			}
			if err := tensor.Increment(da.TimeBucket(prev.Time, ta.interval), origin, destination); err != nil {
				return err
			}
			metrics.ObserveTransitionIncrement()
		}

		prev = cur
		started = true

		if i%100000 == 0 && util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
	}
	return nil
}

func (ta *TransitionAggregator) computeDate(ctx context.Context, date string) (*Tensor, error) {
	trajectoryPath := ta.paths.TrajectoryPath(date, date)
	if err := checkpoint.RequireDone(trajectoryPath); err != nil {
		return nil, fmt.Errorf("recovered trajectory of %s: %w", date, err)
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

	tensor := ta.newTensor()
	if err := ta.Accumulate(ctx, tensor, tr.All()); err != nil {
		return nil, fmt.Errorf("%s: %w", trajectoryPath, err)
	}
	return tensor, nil
}

// DateTensor returns the tensor of one date, computing and caching it on first use.
// a cached tensor is never recomputed, so it is only computed from a finished trajectory stream.
func (ta *TransitionAggregator) DateTensor(ctx context.Context, date string) (*Tensor, error) {
	path := ta.paths.TransitionPath(date, date)
	tensor, ok, err := ta.load(path)
	if err != nil {
		return nil, err
	}
	if ok {
		ta.logger.Debug("transition tensor cached", zap.String("date", date), zap.String("path", path))
		return tensor, nil
	}

	tensor, err = ta.computeDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := tensor.WriteToFile(path); err != nil {
		return nil, fmt.Errorf("save transition tensor %s: %w", path, err)
	}
	ta.logger.Info("computed transition tensor",
		zap.String("date", date),
		zap.Int("nonzero", tensor.NonZero()),
		zap.Int64("total", tensor.Total()))
	return tensor, nil
}

// RangeTensor returns the elementwise sum of the date tensors from startDate to endDate inclusive.
// missing date tensors are computed in parallel, the sum is cached under the range key.
func (ta *TransitionAggregator) RangeTensor(ctx context.Context, startDate, endDate string) (*Tensor, error) {
	dates, err := util.DateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(dates) == 1 {
		return ta.DateTensor(ctx, startDate)
	}

	path := ta.paths.TransitionPath(startDate, endDate)
	total, ok, err := ta.load(path)
	if err != nil {
		return nil, err
	}
	if ok {
		return total, nil
	}

	tensors := make([]*Tensor, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ta.workers)
	for i, date := range dates {
		g.Go(func() error {
			tensor, err := ta.DateTensor(gctx, date)
			if err != nil {
				return fmt.Errorf("date %s: %w", date, err)
			}
			tensors[i] = tensor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total = ta.newTensor()
	for i, tensor := range tensors {
		if err := total.Add(tensor); err != nil {
			return nil, fmt.Errorf("date %s: %w", dates[i], err)
		}
		ta.logger.Sugar().Infof("merged transitions of %s, total count: %d", dates[i], total.Total())
	}

	if err := total.WriteToFile(path); err != nil {
		return nil, fmt.Errorf("save transition tensor %s: %w", path, err)
	}
	return total, nil
}
