package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/andeanstats/gdprev/pkg/data"
	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/store/duckdb"
)

// Config holds backfill configuration
type Config struct {
	// Data source
	ReleaseCSV   string
	BenchmarkCSV string

	// Period range
	Start string
	End   string

	// Storage
	DuckDBPath string
}

func main() {
	cfg := parseFlags()

	log.Printf("Starting backfill from %s", cfg.ReleaseCSV)

	ctx := context.Background()

	start, end, err := parseRange(cfg.Start, cfg.End)
	if err != nil {
		log.Fatalf("Invalid period range: %v", err)
	}

	// Initialize DuckDB
	log.Println("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	// Initialize schema
	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("DuckDB schema initialized")

	// Initialize repos
	releaseRepo := duckdb.NewReleaseRepo(duckClient)
	benchmarkRepo := duckdb.NewBenchmarkRepo(duckClient)

	// Load data
	provider := data.NewCSVProvider(cfg.ReleaseCSV, cfg.BenchmarkCSV)

	releases, err := provider.FetchReleases(ctx, start, end)
	if err != nil {
		log.Fatalf("Failed to load releases: %v", err)
	}
	log.Printf("Loaded %d release rows", len(releases))

	// Store releases in DuckDB
	log.Println("Storing releases in DuckDB...")
	if err := releaseRepo.InsertBatch(ctx, releases); err != nil {
		log.Fatalf("Failed to insert releases: %v", err)
	}

	flagCount := 0
	if cfg.BenchmarkCSV != "" {
		flags, err := provider.FetchBenchmarkFlags(ctx, start, end)
		if err != nil {
			log.Fatalf("Failed to load benchmark flags: %v", err)
		}
		flagCount = len(flags)
		log.Printf("Loaded %d benchmark indicator rows", flagCount)

		log.Println("Storing benchmark flags in DuckDB...")
		if err := benchmarkRepo.InsertBatch(ctx, flags); err != nil {
			log.Fatalf("Failed to insert benchmark flags: %v", err)
		}
	}

	log.Println("Backfill completed successfully!")
	log.Printf("Summary: %d releases, %d benchmark rows", len(releases), flagCount)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.ReleaseCSV, "releases", "", "Path to CSV file with release vintages")
	flag.StringVar(&cfg.BenchmarkCSV, "benchmarks", "", "Path to CSV file with benchmark indicators (optional)")
	flag.StringVar(&cfg.Start, "start", "", "First target period to load (YYYY-MM, optional)")
	flag.StringVar(&cfg.End, "end", "", "Last target period to load (YYYY-MM, optional)")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "gdprev.duckdb", "DuckDB file path")

	flag.Parse()

	if cfg.ReleaseCSV == "" {
		fmt.Println("Usage: backfill -releases <path> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}

// parseRange converts optional YYYY-MM bounds into a concrete period range,
// defaulting to the widest representable range when a bound is omitted.
func parseRange(start, end string) (model.Period, model.Period, error) {
	lo := model.NewPeriod(1900, 1)
	hi := model.NewPeriod(2999, 12)

	if start != "" {
		p, err := model.ParsePeriod(start)
		if err != nil {
			return 0, 0, fmt.Errorf("start: %w", err)
		}
		lo = p
	}
	if end != "" {
		p, err := model.ParsePeriod(end)
		if err != nil {
			return 0, 0, fmt.Errorf("end: %w", err)
		}
		hi = p
	}
	return lo, hi, nil
}
