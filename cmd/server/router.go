package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signup/internal/platform/httpserver"
	"signup/internal/platform/metrics"
	"signup/internal/platform/middleware"
	usershandler "signup/internal/users/handler"
)

// requestTimeout leaves room for the webhook timeout plus an SMTP exchange.
const requestTimeout = 30 * time.Second

type routerDeps struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	health   func(context.Context) error
	users    *usershandler.Handler
}

// newRouter mounts operational endpoints and the users API behind the common
// middleware chain.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.LatencyMiddleware(deps.metrics))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", httpserver.HealthHandler(deps.health, deps.logger))
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.users.Register(r)
	})
	return r
}
