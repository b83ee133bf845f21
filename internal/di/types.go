// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/propensity/internal/database"
	"github.com/aristath/propensity/internal/events"
	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/resultcache"
	"github.com/aristath/propensity/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// It is created by Wire and passed to the server and jobs.
type Container struct {
	// Databases
	CacheDB    *database.DB // Ephemeral backtest results
	DatasetsDB *database.DB // Dataset load history

	// Repositories
	DatasetRepo *dataset.Repository
	ResultCache *resultcache.Repository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Services
	DatasetLoader   *dataset.Loader
	DatasetSource   dataset.Source
	DatasetStore    *dataset.Store
	DatasetService  *dataset.Service
	BacktestService *backtest.Service

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	DatasetReload *scheduler.DatasetReloadJob
	CacheCleanup  *resultcache.CleanupJob
}

// Close closes every open database
func (c *Container) Close() {
	for _, db := range []*database.DB{c.CacheDB, c.DatasetsDB} {
		if db != nil {
			db.Close()
		}
	}
}
