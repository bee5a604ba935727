package usecases

import (
	"context"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

type TransitionService struct {
	log     *zap.Logger
	tensors TensorSource
	roads   *da.RoadIndex
}

func NewTransitionService(log *zap.Logger, tensors TensorSource, roads *da.RoadIndex) *TransitionService {
	return &TransitionService{
		log:     log,
		tensors: tensors,
		roads:   roads,
	}
}

// Transitions lists the nonzero transitions leaving origin over the date range, ordered by bucket then destination.
func (ts *TransitionService) Transitions(ctx context.Context, startDate, endDate string, origin int64) ([]da.RoadTransition, error) {
	o, ok := ts.roads.IndexOf(origin)
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrUnknownRoad, "road %d is not in the road list", origin)
	}
	tensor, err := ts.tensors.RangeTensor(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	transitions := make([]da.RoadTransition, 0)
	tensor.ForOrigin(o, func(k da.TransitionKey, count int32) {
		transitions = append(transitions, da.RoadTransition{
			Bucket:      k.Bucket,
			Origin:      origin,
			Destination: ts.roads.RoadID(k.Destination),
			Count:       int64(count),
		})
	})
	return transitions, nil
}
