package http

import (
	"context"

	http_router "github.com/lintang-b-s/roadflow/pkg/http/router"
	http_server "github.com/lintang-b-s/roadflow/pkg/http/server"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use serves the inspection api until ctx is done.
func (s *Server) Use(
	ctx context.Context,
	apiConfig util.APIConfig,
	services http_router.Services,
) error {
	config := http_server.Config{
		Port:         apiConfig.Port,
		Timeout:      apiConfig.Timeout,
		UseRateLimit: apiConfig.UseLimit,
		RateLimit:    rate.Limit(apiConfig.RateLimit),
		RateBurst:    apiConfig.RateBurst,
	}

	server := http_router.NewAPI(s.Log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, config, services)
	})
	return g.Wait()
}
