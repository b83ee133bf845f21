// Package main is the entry point for the propensity API server.
// It serves the investment-propensity questionnaire, category classification,
// the group-rule backtest and the security screener over HTTP.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env file supported)
// 2. Initialize logging
// 3. Wire dependencies via the DI container (databases, repositories, services, jobs)
// 4. Load the security dataset once; a schema error is logged and the server
//    starts without a snapshot until a later reload succeeds
// 5. Start the HTTP server and the job scheduler
// 6. Wait for a shutdown signal and shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/propensity/internal/config"
	"github.com/aristath/propensity/internal/di"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/server"
	"github.com/aristath/propensity/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting propensity")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Initial load. A bad dataset must not keep the API down.
	loadCtx, loadCancel := context.WithTimeout(ctx, 5*time.Minute)
	result, err := container.DatasetService.Reload(loadCtx)
	loadCancel()
	var schemaErr *dataset.SchemaError
	switch {
	case err == nil:
		log.Info().
			Str("fingerprint", result.Info.Fingerprint).
			Int("rows", result.Info.Rows).
			Strs("listener_errors", result.ListenerErrors).
			Msg("Initial dataset loaded")
	case errors.As(err, &schemaErr):
		log.Error().Strs("missing_columns", schemaErr.Missing).Msg("Dataset is missing required columns, starting without a snapshot")
	default:
		log.Error().Err(err).Msg("Initial dataset load failed, starting without a snapshot")
	}

	srv := server.New(server.Config{
		Log:        log,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		Datasets:   container.DatasetService,
		Backtests:  container.BacktestService,
		Events:     container.EventManager,
		CacheDB:    container.CacheDB,
		DatasetsDB: container.DatasetsDB,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	container.Scheduler.Start()
	log.Info().
		Str("dataset_reload", cfg.DatasetReloadSchedule).
		Str("cache_cleanup", jobs.CacheCleanup.Name()).
		Msg("Background jobs scheduled")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	container.Scheduler.Stop()

	// In-flight requests get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
