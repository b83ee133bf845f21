// Package resultcache persists backtest outcomes in SQLite as msgpack blobs
// with expiration timestamps, for cache-first backtests across restarts.
// Outcomes of the loaded dataset survive a restart; other fingerprints are
// dropped when a snapshot is loaded.
package resultcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/propensity/internal/modules/backtest"
)

// Repository stores backtest outcomes in the backtest_cache table.
// It implements backtest.Cache.
type Repository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewRepository creates a cache repository. A non-positive ttl uses DefaultTTL.
func NewRepository(db *sql.DB, ttl time.Duration) *Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{db: db, ttl: ttl, now: time.Now}
}

var _ backtest.Cache = (*Repository)(nil)

// Put saves an outcome with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert.
func (r *Repository) Put(ctx context.Context, key backtest.Key, outcome *backtest.Outcome) error {
	data, err := msgpack.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	now := r.now()
	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO backtest_cache (cache_key, fingerprint, category, data, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		key.String(), key.Fingerprint, key.Category.Code(), data, now.Unix(), now.Add(r.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store outcome %s: %w", key, err)
	}
	return nil
}

// Get returns the outcome only if expires_at > now.
// Returns nil, nil if the key doesn't exist or the entry is expired.
func (r *Repository) Get(ctx context.Context, key backtest.Key) (*backtest.Outcome, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT data FROM backtest_cache WHERE cache_key = ? AND expires_at > ?",
		key.String(), r.now().Unix(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %s: %w", key, err)
	}

	var outcome backtest.Outcome
	if err := msgpack.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome %s: %w", key, err)
	}
	return &outcome, nil
}

// Purge removes every entry and returns the number of rows deleted
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM backtest_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to purge backtest cache: %w", err)
	}
	return result.RowsAffected()
}

// DeleteStale removes entries computed from any dataset other than fingerprint
func (r *Repository) DeleteStale(ctx context.Context, fingerprint string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM backtest_cache WHERE fingerprint != ?", fingerprint)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale outcomes: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpired removes all rows where expires_at <= now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM backtest_cache WHERE expires_at <= ?", r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired outcomes: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of stored entries, fresh or not
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM backtest_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outcomes: %w", err)
	}
	return n, nil
}
