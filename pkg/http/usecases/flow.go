package usecases

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/roadflow/pkg/checkpoint"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

// FlowService serves per road flow series of finished flow tables.
type FlowService struct {
	log      *zap.Logger
	paths    FlowPaths
	interval int
	tables   *lru.Cache[string, *da.FlowTable]
}

func NewFlowService(log *zap.Logger, paths FlowPaths, intervalMinutes, cacheSize int) (*FlowService, error) {
	tables, err := lru.New[string, *da.FlowTable](cacheSize)
	if err != nil {
		return nil, err
	}
	return &FlowService{
		log:      log,
		paths:    paths,
		interval: intervalMinutes,
		tables:   tables,
	}, nil
}

func (fs *FlowService) table(date string) (*da.FlowTable, error) {
	if ft, ok := fs.tables.Get(date); ok {
		return ft, nil
	}

	path := fs.paths.FlowPath(date, date)
	exists, err := util.FileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "no flow table for date %s", date)
	}
	// a flow job may still be writing the table
	if err := checkpoint.RequireDone(path); err != nil {
		return nil, fmt.Errorf("flow table of %s: %w", date, err)
	}
	ft, err := da.ReadFlowTableFromFile(path, fs.interval)
	if err != nil {
		return nil, err
	}
	fs.tables.Add(date, ft)
	fs.log.Debug("loaded flow table", zap.String("date", date), zap.String("path", path))
	return ft, nil
}

func (fs *FlowService) RoadFlow(date string, roadID int64) ([]time.Time, []int64, error) {
	ft, err := fs.table(date)
	if err != nil {
		return nil, nil, err
	}
	series, ok := ft.RoadSeries(roadID)
	if !ok {
		return nil, nil, util.WrapErrorf(nil, util.ErrUnknownRoad, "road %d is not in the flow table of %s", roadID, date)
	}
	return ft.Intervals(), series, nil
}
