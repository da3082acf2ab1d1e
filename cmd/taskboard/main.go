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

	"github.com/dimitrije/taskboard/internal/config"
	"github.com/dimitrije/taskboard/internal/dashboard"
	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/handlers"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	sess, err := session.New(cfg.API.Token)
	if err != nil {
		logger.Error("failed to open session", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := gateway.New(cfg.API.BaseURL, sess,
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithMetrics(gateway.NewMetrics(registry)),
	)
	if err != nil {
		logger.Error("failed to create api client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := sse.NewHub()
	go hub.Run(ctx)

	dash := dashboard.New(dashboard.Config{
		Stores:             client.Stores(),
		Chat:               client,
		Session:            sess,
		Publisher:          hub,
		Logger:             logger,
		APIURL:             cfg.API.BaseURL,
		PageSize:           cfg.PageSize,
		PickerPageSize:     cfg.PickerPageSize,
		RelationFetchLimit: cfg.RelationFetchLimit,
	})
	if err := dash.Start(ctx); err != nil {
		logger.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Dashboard:  dash,
			Hub:        hub,
			Session:    sess,
			Gatherer:   registry,
			Logger:     logger,
			Production: cfg.IsProduction(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "api_url", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Event streams only end once the hub closes them.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
