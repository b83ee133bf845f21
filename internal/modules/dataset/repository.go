package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// LoadRecord is one row of the dataset load history
type LoadRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Securities  int       `json:"securities"`
	FirstYear   int       `json:"first_year"`
	LastYear    int       `json:"last_year"`
	Warnings    []Warning `json:"warnings"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Repository persists the dataset load history
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new load history repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record stores a load of the given snapshot
func (r *Repository) Record(ctx context.Context, ds *Dataset) error {
	info := ds.Info()

	warnings, err := json.Marshal(info.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	var firstYear, lastYear sql.NullInt64
	if len(info.Years) > 0 {
		firstYear = sql.NullInt64{Int64: int64(info.Years[0]), Valid: true}
		lastYear = sql.NullInt64{Int64: int64(info.Years[len(info.Years)-1]), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dataset_loads (id, source, fingerprint, rows, securities, first_year, last_year, warnings, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Source, info.Fingerprint, info.Rows, info.Securities,
		firstYear, lastYear, string(warnings), info.LoadedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record dataset load %s: %w", info.ID, err)
	}
	return nil
}

// Recent returns the most recent loads, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, fingerprint, rows, securities, first_year, last_year, warnings, loaded_at
		FROM dataset_loads
		ORDER BY loaded_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset loads: %w", err)
	}
	defer rows.Close()

	loads := make([]LoadRecord, 0)
	for rows.Next() {
		var (
			rec                 LoadRecord
			firstYear, lastYear sql.NullInt64
			warnings            string
			loadedAt            int64
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Fingerprint, &rec.Rows, &rec.Securities,
			&firstYear, &lastYear, &warnings, &loadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset load: %w", err)
		}
		rec.FirstYear = int(firstYear.Int64)
		rec.LastYear = int(lastYear.Int64)
		rec.LoadedAt = time.Unix(loadedAt, 0).UTC()
		if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings for %s: %w", rec.ID, err)
		}
		loads = append(loads, rec)
	}
	return loads, rows.Err()
}
