package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/modules/dataset"
)

// DatasetReloader reloads the dataset from its source
type DatasetReloader interface {
	Reload(ctx context.Context) (dataset.ReloadResult, error)
}

// DatasetReloadJob reloads the dataset source. An unchanged fingerprint keeps
// the current snapshot and its cached backtests.
type DatasetReloadJob struct {
	reloader DatasetReloader
	timeout  time.Duration
	log      zerolog.Logger
}

// NewDatasetReloadJob creates a new dataset reload job
func NewDatasetReloadJob(reloader DatasetReloader, timeout time.Duration, log zerolog.Logger) *DatasetReloadJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DatasetReloadJob{
		reloader: reloader,
		timeout:  timeout,
		log:      log.With().Str("job", "dataset_reload").Logger(),
	}
}

// Run reloads the dataset
func (j *DatasetReloadJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.reloader.Reload(ctx)
	if err != nil {
		return err
	}

	if result.Changed {
		j.log.Info().
			Str("snapshot_id", result.Info.ID).
			Int("rows", result.Info.Rows).
			Strs("listener_errors", result.ListenerErrors).
			Msg("Dataset changed")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *DatasetReloadJob) Name() string {
	return "dataset_reload"
}
