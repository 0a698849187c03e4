package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/andeanstats/gdprev/pkg/eval"
	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/nowcast"
	"github.com/andeanstats/gdprev/pkg/panel"
	"github.com/andeanstats/gdprev/pkg/rationality"
	"github.com/andeanstats/gdprev/pkg/report"
	"github.com/andeanstats/gdprev/pkg/store/duckdb"
)

// Config holds analysis configuration
type Config struct {
	// Storage
	DuckDBPath string
	OutDir     string
	RunID      string

	// Panel
	FinalHorizon int
	MaskStart    string
	MaskEnd      string
	OuterJoin    bool

	// Estimation
	HACLag      int
	Decay       float64
	Cutoff      string
	MinObs      int
	MinTrainObs int
}

func main() {
	cfg := parseFlags()

	log.Printf("Starting analysis run %s", cfg.RunID)
	log.Printf("H=%d, HAC lag=%d, decay=%.2f, cutoff=%s", cfg.FinalHorizon, cfg.HACLag, cfg.Decay, cfg.Cutoff)

	ctx := context.Background()

	cutoff, err := model.ParsePeriod(cfg.Cutoff)
	if err != nil {
		log.Fatalf("Invalid cutoff period: %v", err)
	}

	// Initialize DuckDB
	log.Println("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	releaseRepo := duckdb.NewReleaseRepo(duckClient)
	benchmarkRepo := duckdb.NewBenchmarkRepo(duckClient)
	observationRepo := duckdb.NewObservationRepo(duckClient)
	resultRepo := duckdb.NewResultRepo(duckClient)

	// Load the stored panels
	releases, err := releaseRepo.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load releases: %v", err)
	}
	if len(releases) == 0 {
		log.Fatal("No releases stored; run backfill first")
	}
	log.Printf("Loaded %d release rows", len(releases))

	flags, err := benchmarkRepo.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load benchmark flags: %v", err)
	}
	log.Printf("Loaded %d benchmark indicator rows", len(flags))

	// Build the release panel and apply the exclusion window before any
	// derivation.
	releasePanel := model.PanelFromReleases(cfg.FinalHorizon, releases)
	if cfg.MaskStart != "" && cfg.MaskEnd != "" {
		maskStart, err := model.ParsePeriod(cfg.MaskStart)
		if err != nil {
			log.Fatalf("Invalid mask-start period: %v", err)
		}
		maskEnd, err := model.ParsePeriod(cfg.MaskEnd)
		if err != nil {
			log.Fatalf("Invalid mask-end period: %v", err)
		}
		masked := releasePanel.MaskPeriods(maskStart, maskEnd)
		log.Printf("Masked %d cells in exclusion window [%s, %s]", masked, maskStart, maskEnd)
	}

	// Derive revisions and errors
	deriver, err := panel.NewDeriver(cfg.FinalHorizon)
	if err != nil {
		log.Fatalf("Failed to create deriver: %v", err)
	}
	ds := deriver.Derive(releasePanel)
	log.Printf("Derived panel: %d target periods, horizons 1..%d", ds.Len(), ds.H)

	// Merge benchmark indicators
	if len(flags) > 0 {
		benchPanel := model.BenchmarkPanelFromFlags(cfg.FinalHorizon, flags)
		mode := panel.JoinInner
		if cfg.OuterJoin {
			mode = panel.JoinOuter
		}
		aligner := panel.NewAligner(mode)
		merged, alignReport := aligner.Merge(ds, benchPanel)
		ds = merged
		log.Printf("Benchmark merge: %d matched, %d dropped", alignReport.Matched, alignReport.TotalDropped())
		for h, n := range alignReport.DroppedByHorizon {
			log.Printf("  horizon %d: dropped %d rows", h, n)
		}
	} else {
		log.Println("No benchmark indicators; benchmark-augmented specifications will be skipped")
	}

	// Persist the derived panel for provenance before any estimation.
	if err := observationRepo.InsertDataset(ctx, cfg.RunID, ds); err != nil {
		log.Fatalf("Failed to persist derived observations: %v", err)
	}

	// Rationality battery
	log.Println("Running rationality battery...")
	battery := rationality.NewBattery(rationality.Config{
		HACLag: cfg.HACLag,
		MinObs: cfg.MinObs,
	})
	batteryReport := battery.Run(ds)
	log.Printf("Battery: %d fitted specifications, %d skipped", len(batteryReport.Results), len(batteryReport.Skips))

	fmt.Println(report.RenderRationality(batteryReport))

	if err := writeCSV(filepath.Join(cfg.OutDir, "rationality.csv"), func(f *os.File) error {
		return report.WriteRationalityCSV(f, batteryReport)
	}); err != nil {
		log.Fatalf("Failed to write rationality CSV: %v", err)
	}
	if err := resultRepo.InsertRationality(ctx, cfg.RunID, batteryReport); err != nil {
		log.Fatalf("Failed to persist rationality results: %v", err)
	}

	// Smoothed states and correction models
	log.Println("Building smoothed states...")
	states, err := nowcast.BuildStates(ds, cfg.Decay)
	if err != nil {
		log.Fatalf("Failed to build states: %v", err)
	}

	split := panel.NewSplit(cutoff)
	engine := nowcast.NewEngine(nowcast.Config{
		HACLag:      cfg.HACLag,
		MinTrainObs: cfg.MinTrainObs,
	}, split)

	log.Println("Fitting correction models...")
	if err := engine.Fit(ds, states); err != nil {
		log.Fatalf("Failed to fit correction models: %v", err)
	}

	corrections, err := engine.PredictAll(ds, states)
	if err != nil {
		log.Fatalf("Failed to predict corrections: %v", err)
	}
	log.Printf("Produced %d corrected nowcasts", len(corrections))

	// Forecast combination over the evaluation window
	combiner := nowcast.NewCombiner(cfg.MinTrainObs)
	combined, err := combiner.Run(ds, split, corrections)
	if err != nil {
		log.Fatalf("Failed to combine forecasts: %v", err)
	}
	log.Printf("Combined %d evaluation-window nowcasts", len(combined))

	// Evaluate combined against raw per horizon
	results := evaluateCombined(ds, combined, eval.Config{HACLag: cfg.HACLag})

	fmt.Println(report.RenderEvaluation(results))

	if err := writeCSV(filepath.Join(cfg.OutDir, "evaluation.csv"), func(f *os.File) error {
		return report.WriteEvaluationCSV(f, results)
	}); err != nil {
		log.Fatalf("Failed to write evaluation CSV: %v", err)
	}
	if err := resultRepo.InsertEvaluation(ctx, cfg.RunID, results); err != nil {
		log.Fatalf("Failed to persist evaluation results: %v", err)
	}

	log.Printf("Analysis run %s completed", cfg.RunID)
}

// evaluateCombined pairs, per horizon, the combined nowcast error with the
// raw (uncorrected) error over the evaluation window and runs the
// comparison statistics. The combined error is the actual error net of the
// applied adjustment.
func evaluateCombined(ds *panel.Dataset, combined []nowcast.Combined, cfg eval.Config) []eval.Result {
	positions := make(map[model.Period]int, ds.Len())
	for t, p := range ds.Periods {
		positions[p] = t
	}

	pairsByHorizon := make(map[int][]eval.Pair)
	for _, c := range combined {
		t, ok := positions[c.Period]
		if !ok {
			continue
		}
		actual := ds.E[c.Horizon-1][t]
		if math.IsNaN(actual) {
			continue
		}
		pairsByHorizon[c.Horizon] = append(pairsByHorizon[c.Horizon], eval.Pair{
			Period: c.Period,
			Corr:   actual - (c.Combined - c.Raw),
			Bench:  actual,
		})
	}

	var results []eval.Result
	for h := 1; h < ds.H; h++ {
		pairs := pairsByHorizon[h]
		if len(pairs) == 0 {
			continue
		}
		res, err := eval.Evaluate(h, pairs, cfg)
		if err != nil {
			if errors.Is(err, eval.ErrNoObservations) {
				log.Printf("Skipping evaluation for horizon %d: %v", h, err)
				continue
			}
			log.Printf("Evaluation failed for horizon %d: %v", h, err)
			continue
		}
		results = append(results, res)
	}
	return results
}

func writeCSV(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	log.Printf("Wrote %s", path)
	return nil
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.DuckDBPath, "duckdb", "gdprev.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.OutDir, "out", "out", "Output directory for CSV tables")
	flag.StringVar(&cfg.RunID, "run-id", "", "Run identifier (defaults to a timestamp)")
	flag.IntVar(&cfg.FinalHorizon, "final-horizon", 12, "Final horizon H treated as ground truth")
	flag.StringVar(&cfg.MaskStart, "mask-start", "", "First period of the exclusion window (YYYY-MM)")
	flag.StringVar(&cfg.MaskEnd, "mask-end", "", "Last period of the exclusion window (YYYY-MM)")
	flag.BoolVar(&cfg.OuterJoin, "outer-join", false, "Keep rows without benchmark information")
	flag.IntVar(&cfg.HACLag, "hac", 6, "Newey-West lag truncation (6 monthly, 1 annual)")
	flag.Float64Var(&cfg.Decay, "decay", 0.5, "Exponential smoothing decay")
	flag.StringVar(&cfg.Cutoff, "cutoff", "", "Training cutoff period (YYYY-MM)")
	flag.IntVar(&cfg.MinObs, "min-obs", 5, "Minimum observations per battery regression")
	flag.IntVar(&cfg.MinTrainObs, "min-train", 24, "Minimum training observations per correction model")

	flag.Parse()

	if cfg.Cutoff == "" {
		fmt.Println("Usage: analyze -cutoff <YYYY-MM> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if cfg.RunID == "" {
		cfg.RunID = time.Now().UTC().Format("20060102-150405")
	}

	return cfg
}
