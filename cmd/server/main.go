package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/roadflow/pkg/aggregator"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/http"
	http_router "github.com/lintang-b-s/roadflow/pkg/http/router"
	"github.com/lintang-b-s/roadflow/pkg/http/usecases"
	"github.com/lintang-b-s/roadflow/pkg/logger"
	"github.com/lintang-b-s/roadflow/pkg/routing"
	"github.com/lintang-b-s/roadflow/pkg/trajectory"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

const flowTableCacheSize = 8

func main() {
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

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

	flowService, err := usecases.NewFlowService(logger, cfg, cfg.Flow.Interval, flowTableCacheSize)
	if err != nil {
		logger.Fatal("create flow service", zap.Error(err))
	}
	services := http_router.Services{
		Routing:    usecases.NewRoutingService(logger, router),
		Trajectory: usecases.NewTrajectoryService(logger, router, trajectory.ThresholdsFromConfig(cfg.Segmenter, true)),
		Flow:       flowService,
		Transition: usecases.NewTransitionService(logger,
			aggregator.NewTensorCache(roads, cfg.Transition.Interval, cfg, logger), roads),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(logger)
	if err := api.Use(ctx, cfg.API, services); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("roadflow inspection server stopped")
}
