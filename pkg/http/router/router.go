package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/roadflow/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/roadflow/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/roadflow/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

type Services struct {
	Routing    controllers.RoutingService
	Trajectory controllers.TrajectoryService
	Flow       controllers.FlowService
	Transition controllers.TransitionService
}

// Handler wires the api routes, /metrics and the middleware chain.
func (api *API) Handler(config http_server.Config, services Services) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	group := router_helper.NewRouteGroup(router, "/api")
	roadflowRoutes := controllers.New(services.Routing, services.Trajectory, services.Flow, services.Transition, api.log)
	roadflowRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		Heartbeat("healthz"), Logger(api.log)}
	if config.UseRateLimit {
		mwChain = append(mwChain, Limit(config.RateLimit, config.RateBurst))
	}
	return alice.New(mwChain...).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	services Services,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(config, services), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
