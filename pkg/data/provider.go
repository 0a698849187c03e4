package data

import (
	"context"

	"github.com/andeanstats/gdprev/pkg/model"
)

// ReleaseProvider defines the interface for fetching release vintages.
// How the panels are produced upstream (ODBC extraction, statistical office
// files) is outside this package; implementations only promise rectangular
// release rows keyed by (period, horizon).
type ReleaseProvider interface {
	// FetchReleases retrieves release rows for target periods in
	// [start, end], ordered by period then horizon.
	FetchReleases(ctx context.Context, start, end model.Period) ([]model.Release, error)
}

// BenchmarkProvider supplies the parallel benchmark-revision indicator
// panel with keys identical to the release panel.
type BenchmarkProvider interface {
	// FetchBenchmarkFlags retrieves indicator rows for target periods in
	// [start, end], ordered by period then horizon.
	FetchBenchmarkFlags(ctx context.Context, start, end model.Period) ([]model.BenchmarkFlag, error)
}
