package duckdb

import (
	"context"
	"fmt"
	"math"

	"github.com/andeanstats/gdprev/pkg/panel"
)

// ObservationRepo persists the derived panel a run regressed on, so a
// result table can always be traced back to its exact inputs.
type ObservationRepo struct {
	client *Client
}

// NewObservationRepo creates a new observation repository
func NewObservationRepo(client *Client) *ObservationRepo {
	return &ObservationRepo{client: client}
}

// InsertDataset stores every (period, horizon) cell with an observed
// release. Missing derived values are stored as NULL.
func (r *ObservationRepo) InsertDataset(ctx context.Context, runID string, ds *panel.Dataset) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO observations (run_id, period, horizon, release, revision, error, bench)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, period, horizon) DO UPDATE SET
			release = EXCLUDED.release,
			revision = EXCLUDED.revision,
			error = EXCLUDED.error,
			bench = EXCLUDED.bench
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for t, period := range ds.Periods {
		for h := 1; h <= ds.H; h++ {
			release := ds.Y[h-1][t]
			if math.IsNaN(release) {
				continue
			}
			_, err := stmt.Exec(runID, period.String(), h,
				release,
				nullableFloat(ds.R[h-1][t]),
				nullableFloat(ds.E[h-1][t]),
				nullableFloat(ds.Bench[h-1][t]))
			if err != nil {
				return fmt.Errorf("failed to insert observation: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Count returns the number of stored observation rows for a run
func (r *ObservationRepo) Count(ctx context.Context, runID string) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM observations WHERE run_id = ?", runID)
	err := row.Scan(&count)
	return count, err
}

func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
