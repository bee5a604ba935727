package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/roadflow/pkg/aggregator"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/logger"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

var (
	startDate = flag.String("d1", "", "first date, YYYYMMDD")
	endDate   = flag.String("d2", "", "last date (inclusive), YYYYMMDD")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *startDate == "" || *endDate == "" {
		logger.Fatal("missing -d1 YYYYMMDD -d2 YYYYMMDD")
	}

	cfg, err := util.LoadConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	roads, err := da.ReadRoadIndexFromFile(cfg.RoadListPath())
	if err != nil {
		logger.Fatal("read road list", zap.String("path", cfg.RoadListPath()), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ta := aggregator.NewTransitionAggregator(roads, cfg.Transition.Interval, cfg.Transition.Workers, cfg, logger)
	tensor, err := ta.RangeTensor(ctx, *startDate, *endDate)
	if err != nil {
		logger.Fatal("transition aggregation stopped", zap.Error(err))
	}

	logger.Sugar().Infof("transitions %s..%s written to %s, %d nonzero cells, total count: %d",
		*startDate, *endDate, cfg.TransitionPath(*startDate, *endDate), tensor.NonZero(), tensor.Total())
}
