package http_server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	Port    int
	Timeout time.Duration

	UseRateLimit bool
	RateLimit    rate.Limit // requests per second
	RateBurst    int
}

func New(ctx context.Context, handler http.Handler, config Config) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: http.TimeoutHandler(handler, config.Timeout, `{"error":{"code":"timeout","message":"request timed out"}}`),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},

		ReadTimeout:       10 * time.Second,
		WriteTimeout:      config.Timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
