package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/config"
	"github.com/aristath/propensity/internal/database"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// cache.db - Backtest results keyed by dataset fingerprint
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// datasets.db - Load history of the security dataset
	datasetsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "datasets.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameDatasets,
	})
	if err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to initialize datasets database: %w", err)
	}
	container.DatasetsDB = datasetsDB

	for _, db := range []*database.DB{cacheDB, datasetsDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
