// Command server runs the hexbin aggregation HTTP service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/morenobcn/hexbin-service/internal/adapter/h3grid"
	"github.com/morenobcn/hexbin-service/internal/adapter/httpapi"
	"github.com/morenobcn/hexbin-service/internal/config"
	"github.com/morenobcn/hexbin-service/internal/observability"
	"github.com/morenobcn/hexbin-service/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	grid := h3grid.New()
	aggregator := pipeline.New(grid, logger, metrics)
	srv := httpapi.NewServer(cfg, aggregator, logger)

	logger.Info("hexbin service configured",
		"min_level", cfg.MinLevel,
		"max_level", cfg.MaxLevel,
		"min_count", cfg.MinPointCount,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
