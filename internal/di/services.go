package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/config"
	"github.com/aristath/propensity/internal/events"
	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/resultcache"
)

// InitializeRepositories creates the repositories on top of the databases
func InitializeRepositories(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.DatasetRepo = dataset.NewRepository(container.DatasetsDB.Conn())
	container.ResultCache = resultcache.NewRepository(container.CacheDB.Conn(), cfg.BacktestCacheTTL)

	log.Debug().Msg("Repositories initialized")
	return nil
}

// InitializeServices creates the event system and the domain services
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	source, err := dataset.NewSource(ctx, cfg.DatasetSource, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to create dataset source: %w", err)
	}
	container.DatasetSource = source

	container.DatasetLoader = dataset.NewLoader(cfg.MinFiscalYear, log)
	container.DatasetStore = dataset.NewStore()
	container.DatasetService = dataset.NewService(
		container.DatasetLoader,
		container.DatasetSource,
		container.DatasetStore,
		container.DatasetRepo,
		container.EventManager,
		log,
	)

	container.BacktestService = backtest.NewService(
		container.DatasetService,
		container.ResultCache,
		container.EventManager,
		backtest.ServiceOptions{
			TopN:         cfg.BacktestTopN,
			HoldingYears: cfg.HoldingYears,
		},
		log,
	)

	// A changed snapshot drops stale outcomes and warms the new ones
	container.DatasetService.AddListener(container.BacktestService)

	log.Info().Str("source", cfg.DatasetSource).Msg("Services initialized")
	return nil
}
