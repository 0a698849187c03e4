package duckdb

import (
	"context"
	"fmt"

	"github.com/andeanstats/gdprev/pkg/model"
)

// BenchmarkRepo handles benchmark-revision indicator persistence
type BenchmarkRepo struct {
	client *Client
}

// NewBenchmarkRepo creates a new benchmark indicator repository
func NewBenchmarkRepo(client *Client) *BenchmarkRepo {
	return &BenchmarkRepo{client: client}
}

// InsertBatch inserts multiple indicator rows in a transaction
func (r *BenchmarkRepo) InsertBatch(ctx context.Context, flags []model.BenchmarkFlag) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO benchmark_flags (period, horizon, flag)
		VALUES (?, ?, ?)
		ON CONFLICT (period, horizon) DO UPDATE SET
			flag = EXCLUDED.flag
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range flags {
		if _, err := stmt.Exec(f.Period.String(), f.Horizon, f.Flag); err != nil {
			return fmt.Errorf("failed to insert benchmark flag: %w", err)
		}
	}

	return tx.Commit()
}

// GetAll retrieves every stored indicator row in chronological order
func (r *BenchmarkRepo) GetAll(ctx context.Context) ([]model.BenchmarkFlag, error) {
	query := `
		SELECT period, horizon, flag
		FROM benchmark_flags
		ORDER BY period ASC, horizon ASC
	`

	rows, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark flags: %w", err)
	}
	defer rows.Close()

	var flags []model.BenchmarkFlag
	for rows.Next() {
		var (
			periodStr string
			f         model.BenchmarkFlag
		)
		if err := rows.Scan(&periodStr, &f.Horizon, &f.Flag); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark flag: %w", err)
		}

		period, err := model.ParsePeriod(periodStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored period: %w", err)
		}
		f.Period = period

		flags = append(flags, f)
	}

	return flags, rows.Err()
}

// Count returns the total number of stored indicator rows
func (r *BenchmarkRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM benchmark_flags")
	err := row.Scan(&count)
	return count, err
}
