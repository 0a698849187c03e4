package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andeanstats/gdprev/pkg/model"
)

// ReleaseRepo handles release-vintage persistence
type ReleaseRepo struct {
	client *Client
}

// NewReleaseRepo creates a new release repository
func NewReleaseRepo(client *Client) *ReleaseRepo {
	return &ReleaseRepo{client: client}
}

// Insert inserts a single release
func (r *ReleaseRepo) Insert(ctx context.Context, rel *model.Release) error {
	query := `
		INSERT INTO releases (period, horizon, value, published_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (period, horizon) DO UPDATE SET
			value = EXCLUDED.value,
			published_at = EXCLUDED.published_at
	`
	return r.client.Exec(ctx, query, rel.Period.String(), rel.Horizon, rel.Value, nullableTime(rel.PublishedAt))
}

// InsertBatch inserts multiple releases in a transaction
func (r *ReleaseRepo) InsertBatch(ctx context.Context, releases []model.Release) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO releases (period, horizon, value, published_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (period, horizon) DO UPDATE SET
			value = EXCLUDED.value,
			published_at = EXCLUDED.published_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rel := range releases {
		_, err := stmt.Exec(rel.Period.String(), rel.Horizon, rel.Value, nullableTime(rel.PublishedAt))
		if err != nil {
			return fmt.Errorf("failed to insert release: %w", err)
		}
	}

	return tx.Commit()
}

// GetByPeriodRange retrieves releases with target period in [start, end]
func (r *ReleaseRepo) GetByPeriodRange(ctx context.Context, start, end model.Period) ([]model.Release, error) {
	query := `
		SELECT period, horizon, value, published_at
		FROM releases
		WHERE period >= ? AND period <= ?
		ORDER BY period ASC, horizon ASC
	`

	rows, err := r.client.Query(ctx, query, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	return scanReleases(rows)
}

// GetAll retrieves every stored release in chronological order
func (r *ReleaseRepo) GetAll(ctx context.Context) ([]model.Release, error) {
	query := `
		SELECT period, horizon, value, published_at
		FROM releases
		ORDER BY period ASC, horizon ASC
	`

	rows, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	return scanReleases(rows)
}

// Count returns the total number of stored releases
func (r *ReleaseRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM releases")
	err := row.Scan(&count)
	return count, err
}

func scanReleases(rows *sql.Rows) ([]model.Release, error) {
	var releases []model.Release
	for rows.Next() {
		var (
			periodStr   string
			rel         model.Release
			publishedAt interface{}
		)

		if err := rows.Scan(&periodStr, &rel.Horizon, &rel.Value, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}

		period, err := model.ParsePeriod(periodStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored period: %w", err)
		}
		rel.Period = period

		if t, ok := publishedAt.(time.Time); ok {
			rel.PublishedAt = t
		}

		releases = append(releases, rel)
	}

	return releases, rows.Err()
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
