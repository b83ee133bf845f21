package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/config"
	"github.com/aristath/propensity/internal/resultcache"
	"github.com/aristath/propensity/internal/scheduler"
)

// RegisterJobs creates the background jobs and schedules them
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	container.Scheduler = scheduler.New(log)

	jobs := &JobInstances{
		DatasetReload: scheduler.NewDatasetReloadJob(container.DatasetService, 0, log),
		CacheCleanup:  resultcache.NewCleanupJob(container.ResultCache, log),
	}

	if cfg.DatasetReloadSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.DatasetReloadSchedule, jobs.DatasetReload); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", jobs.DatasetReload.Name(), err)
		}
	} else {
		log.Info().Msg("Dataset reload schedule empty, reloads are manual only")
	}

	if err := container.Scheduler.AddJob(resultcache.CleanupSchedule, jobs.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", jobs.CacheCleanup.Name(), err)
	}

	log.Info().Int("jobs", container.Scheduler.Entries()).Msg("Jobs registered")
	return jobs, nil
}
