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
	date     = flag.String("d", "", "date to aggregate, YYYYMMDD")
	interval = flag.Int("i", 0, "flow interval in minutes, overrides flow.interval")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *date == "" {
		logger.Fatal("missing -d YYYYMMDD")
	}
	if _, err := util.DateRange(*date, *date); err != nil {
		logger.Fatal("invalid date", zap.Error(err))
	}

	cfg, err := util.LoadConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *interval > 0 {
		cfg.Flow.Interval = *interval
		if err := cfg.Validate(); err != nil {
			logger.Fatal("invalid interval", zap.Error(err))
		}
	}

	roads, err := da.ReadRoadIndexFromFile(cfg.RoadListPath())
	if err != nil {
		logger.Fatal("read road list", zap.String("path", cfg.RoadListPath()), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fa := aggregator.NewFlowAggregator(roads, cfg.Flow.Interval, cfg.Flow.BatchSize, logger)
	ft, err := fa.Aggregate(ctx, *date, cfg.TrajectoryPath(*date, *date), cfg.FlowPath(*date, *date))
	if err != nil {
		logger.Fatal("flow aggregation stopped", zap.String("date", *date), zap.Error(err))
	}

	logger.Sugar().Infof("flow of %s written to %s, total flow: %d", *date, cfg.FlowPath(*date, *date), ft.Total())
}
