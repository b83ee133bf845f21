package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	cache := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, cache, "journal_mode(WAL)")
	assert.Contains(t, cache, "synchronous(OFF)")

	standard := buildConnectionString("/tmp/x.db", ProfileStandard)
	assert.Contains(t, standard, "synchronous(NORMAL)")
	assert.Contains(t, standard, "busy_timeout(5000)")
}

func TestMigrate_CreatesTables(t *testing.T) {
	tests := []struct {
		name    string
		profile DatabaseProfile
		table   string
	}{
		{NameCache, ProfileCache, "backtest_cache"},
		{NameDatasets, ProfileStandard, "dataset_loads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t, tt.name, tt.profile)
			require.NoError(t, db.Migrate())
			// Applying twice is a no-op
			require.NoError(t, db.Migrate())

			var name string
			err := db.Conn().QueryRow(
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", tt.table,
			).Scan(&name)
			require.NoError(t, err)
			assert.Equal(t, tt.table, name)
		})
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newTestDB(t, "scratch", "")
	assert.NoError(t, db.Migrate())
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "scratch", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "tx", ProfileStandard)
	_, err := db.Conn().Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
		return n
	}

	require.NoError(t, WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t (v) VALUES (1)")
		return err
	}))
	assert.Equal(t, 1, count())

	errAbort := errors.New("abort")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO t (v) VALUES (2)")
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)
	assert.Equal(t, 1, count())

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO t (v) VALUES (3)")
		panic("boom")
	})
	assert.ErrorContains(t, err, "panic in transaction")
	assert.Equal(t, 1, count())

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t, NameCache, ProfileCache)
	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}
