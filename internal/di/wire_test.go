package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/propensity/internal/config"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/dataset/datasettest"
	"github.com/aristath/propensity/internal/modules/profile"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	source := filepath.Join(tmpDir, "stock_dataset.csv")
	require.NoError(t, os.WriteFile(source, datasettest.CSV(
		datasettest.Record("삼성전자", "005930", 2021, 8.5, 0.10, 0),
		datasettest.Record("LG화학", "051910", 2021, 12.3, 0.20, 1),
		datasettest.Record("카카오", "035720", 2021, 3.1, 0.30, 2),
		datasettest.Record("셀트리온", "068270", 2021, 20.4, 0.40, 3),
	), 0644))

	return &config.Config{
		DataDir:               tmpDir,
		DatasetSource:         source,
		Port:                  8001,
		DatasetReloadSchedule: "@hourly",
		BacktestCacheTTL:      time.Hour,
		MinFiscalYear:         dataset.DefaultMinFiscalYear,
		BacktestTopN:          10,
		HoldingYears:          6,
	}
}

func TestInitializeDatabases(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.CacheDB)
	assert.NotNil(t, container.DatasetsDB)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "cache.db"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "datasets.db"))
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	container, jobs, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	assert.NotNil(t, container.DatasetService)
	assert.NotNil(t, container.BacktestService)
	assert.NotNil(t, container.EventManager)
	assert.NotNil(t, jobs.DatasetReload)
	assert.NotNil(t, jobs.CacheCleanup)
	assert.Equal(t, 2, container.Scheduler.Entries())

	// The scheduled reload job drives the whole pipeline
	require.NoError(t, jobs.DatasetReload.Run())

	ds, err := container.DatasetService.Current()
	require.NoError(t, err)
	assert.Len(t, ds.Records, 4)

	// Reload warmed the persistent cache for every eligible category
	count, err := container.ResultCache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	outcome, err := container.BacktestService.Backtest(ctx, profile.Moderate)
	require.NoError(t, err)
	assert.Equal(t, ds.Fingerprint, outcome.Fingerprint)

	history, err := container.DatasetService.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	require.NoError(t, jobs.CacheCleanup.Run())
}

func TestWire_EmptyScheduleSkipsReloadJob(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatasetReloadSchedule = ""

	container, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	assert.Equal(t, 1, container.Scheduler.Entries())
}

func TestWire_InvalidS3Location(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatasetSource = "s3://bucket-only"

	_, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
