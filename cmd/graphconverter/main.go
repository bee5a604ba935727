package main

import (
	"flag"
	"os"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/dataset"
	"github.com/lintang-b-s/roadflow/pkg/logger"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

var (
	nodesPath = flag.String("nodes", "./data/nodes.csv", "node list csv: road_id,length (km)")
	edgesPath = flag.String("edges", "./data/edges.csv", "edge list csv: from,to,weight")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := util.LoadConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	nodes, err := os.Open(*nodesPath)
	if err != nil {
		logger.Fatal("open node list", zap.Error(err))
	}
	defer nodes.Close()
	edges, err := os.Open(*edgesPath)
	if err != nil {
		logger.Fatal("open edge list", zap.Error(err))
	}
	defer edges.Close()

	graph, skipped, err := dataset.ReadGraphCSV(nodes, edges, logger)
	if err != nil {
		logger.Fatal("build road graph", zap.Error(err))
	}
	if err := graph.WriteGraph(cfg.GraphPath()); err != nil {
		logger.Fatal("write road graph", zap.Error(err))
	}

	roads, err := da.NewRoadIndex(graph.RoadIDs())
	if err != nil {
		logger.Fatal("build road list", zap.Error(err))
	}
	if err := roads.WriteToFile(cfg.RoadListPath()); err != nil {
		logger.Fatal("write road list", zap.Error(err))
	}

	logger.Sugar().Infof("road graph with %d roads and %d edges written to %s, %d self-loops skipped",
		graph.NumberOfRoads(), graph.NumberOfEdges(), cfg.GraphPath(), skipped)
}
