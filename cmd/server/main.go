package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"signup/internal/platform/config"
	"signup/internal/platform/database"
	"signup/internal/platform/httpserver"
	"signup/internal/platform/logger"
	"signup/internal/platform/metrics"
	"signup/internal/platform/tracing"
	usershandler "signup/internal/users/handler"
	usersmetrics "signup/internal/users/metrics"
	"signup/internal/users/notify"
	"signup/internal/users/service"
	"signup/internal/users/store"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "signup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, "signup", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	httpMetrics := metrics.New(prometheus.DefaultRegisterer)
	userMetrics := usersmetrics.New(prometheus.DefaultRegisterer)

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return err
	}
	fanOut := notify.New(cfg.Notification, mailer,
		notify.WithLogger(log),
		notify.WithMetrics(userMetrics),
	)

	svc, err := service.New(newUserStore(db), fanOut,
		service.WithLogger(log),
		service.WithMetrics(userMetrics),
	)
	if err != nil {
		return err
	}

	router := newRouter(routerDeps{
		logger:   log,
		metrics:  httpMetrics,
		gatherer: prometheus.DefaultGatherer,
		health:   db.Health,
		users:    usershandler.New(svc, log),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting signup",
			"addr", cfg.Addr,
			"database", string(db.Dialect),
			"webhook_enabled", cfg.Notification.ServiceURL != "",
			"smtp_enabled", cfg.Mail.Host != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newUserStore(db *database.DB) service.Store {
	if db.Dialect == database.DialectPostgres {
		return store.NewPostgres(db.SQL)
	}
	return store.NewSQLite(db.SQL)
}

func newMailer(cfg config.Server, log *slog.Logger) (notify.Mailer, error) {
	if cfg.Mail.Host == "" {
		return notify.NewLogMailer(log), nil
	}
	m, err := notify.NewSMTPMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("configure smtp: %w", err)
	}
	return m, nil
}
