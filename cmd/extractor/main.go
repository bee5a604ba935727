package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/extractor"
	"github.com/lintang-b-s/roadflow/pkg/logger"
	"github.com/lintang-b-s/roadflow/pkg/routing"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

var (
	date = flag.String("d", "", "date to extract, YYYYMMDD")
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

	graph, err := da.ReadGraph(cfg.GraphPath())
	if err != nil {
		logger.Fatal("read road graph", zap.String("path", cfg.GraphPath()), zap.Error(err))
	}
	roads, err := da.ReadRoadIndexFromFile(cfg.RoadListPath())
	if err != nil {
		logger.Fatal("read road list", zap.String("path", cfg.RoadListPath()), zap.Error(err))
	}
	router, err := routing.NewRouter(graph, logger, cfg.Routing.CacheSize)
	if err != nil {
		logger.Fatal("create router", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ex := extractor.NewExtractor(router, roads, trajectory.ThresholdsFromConfig(cfg.Segmenter, false),
		cfg.Extractor.BatchSize, cfg.Extractor.Workers, logger)
	stats, err := ex.Extract(ctx, cfg.ReadingsPath(*date), cfg.TrajectoryPath(*date, *date))
	if err != nil {
		logger.Fatal("trajectory extraction stopped", zap.String("date", *date), zap.Error(err))
	}

	logger.Sugar().Infof("extracted %d vehicles of %s into %s", stats.Vehicles, *date, cfg.TrajectoryPath(*date, *date))
}
