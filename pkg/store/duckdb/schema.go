package duckdb

import (
	"context"
	"fmt"
)

// Schema contains table creation statements for all required tables

// CreateReleasesTable creates the release-vintage fact table. A release is
// keyed by target period ("2006-01" format) and release sequence number.
const CreateReleasesTable = `
CREATE TABLE IF NOT EXISTS releases (
    period VARCHAR NOT NULL,
    horizon INTEGER NOT NULL,
    value DOUBLE NOT NULL,
    published_at TIMESTAMP,
    PRIMARY KEY (period, horizon)
);
`

// CreateBenchmarkFlagsTable creates the benchmark-revision indicator table
const CreateBenchmarkFlagsTable = `
CREATE TABLE IF NOT EXISTS benchmark_flags (
    period VARCHAR NOT NULL,
    horizon INTEGER NOT NULL,
    flag BOOLEAN NOT NULL,
    PRIMARY KEY (period, horizon)
);
`

// CreateObservationsTable creates the derived-panel audit table: the
// revision, error and indicator values a run actually regressed on.
const CreateObservationsTable = `
CREATE TABLE IF NOT EXISTS observations (
    run_id VARCHAR NOT NULL,
    period VARCHAR NOT NULL,
    horizon INTEGER NOT NULL,
    release DOUBLE,
    revision DOUBLE,
    error DOUBLE,
    bench DOUBLE,
    PRIMARY KEY (run_id, period, horizon)
);
`

// CreateRationalityResultsTable creates the battery coefficient table
const CreateRationalityResultsTable = `
CREATE TABLE IF NOT EXISTS rationality_results (
    run_id VARCHAR NOT NULL,
    horizon INTEGER NOT NULL,
    spec VARCHAR NOT NULL,
    regressor VARCHAR NOT NULL,
    coeff DOUBLE,
    se DOUBLE,
    tstat DOUBLE,
    pvalue DOUBLE,
    stars VARCHAR,
    nobs INTEGER NOT NULL,
    joint_stat DOUBLE,
    joint_pvalue DOUBLE,
    PRIMARY KEY (run_id, horizon, spec, regressor)
);
`

// CreateEvaluationResultsTable creates the forecast-evaluation summary table
const CreateEvaluationResultsTable = `
CREATE TABLE IF NOT EXISTS evaluation_results (
    run_id VARCHAR NOT NULL,
    horizon INTEGER NOT NULL,
    relative_rmse DOUBLE,
    dm_stat DOUBLE,
    dm_pvalue DOUBLE,
    encompassing_beta DOUBLE,
    encompassing_tstat DOUBLE,
    encompassing_pvalue DOUBLE,
    nobs INTEGER NOT NULL,
    PRIMARY KEY (run_id, horizon)
);
`

// InitializeSchema creates all required tables
func InitializeSchema(ctx context.Context, c *Client) error {
	schemas := []string{
		CreateReleasesTable,
		CreateBenchmarkFlagsTable,
		CreateObservationsTable,
		CreateRationalityResultsTable,
		CreateEvaluationResultsTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(ctx context.Context, c *Client) error {
	tables := []string{"evaluation_results", "rationality_results", "observations", "benchmark_flags", "releases"}
	for _, table := range tables {
		if err := c.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
