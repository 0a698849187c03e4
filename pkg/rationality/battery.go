package rationality

import (
	"errors"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/andeanstats/gdprev/pkg/panel"
	"github.com/andeanstats/gdprev/pkg/regress"
)

// Config holds battery configuration.
type Config struct {
	HACLag  int // Newey-West lag truncation (6 for monthly, 1 for annual)
	MinObs  int // minimum valid observations per regression
	Workers int // concurrent horizons; defaults to NumCPU
}

// DefaultConfig returns sensible defaults for monthly data.
func DefaultConfig() Config {
	return Config{
		HACLag: 6,
		MinObs: 5,
	}
}

// SpecResult is one fitted specification at one horizon.
type SpecResult struct {
	Horizon int
	Spec    string
	Fit     *regress.Fit
	Joint   *regress.WaldResult // nil when no joint test applies
}

// Skip records a specification that was not estimated, and why. Skips are
// part of the output, not errors: the battery produces partial results.
type Skip struct {
	Horizon int
	Spec    string
	Reason  string
}

// Report aggregates the battery output across horizons.
type Report struct {
	Results []SpecResult
	Skips   []Skip
}

// Battery runs the rationality specifications for every horizon with an
// error series (1..H-1).
type Battery struct {
	cfg Config
}

// NewBattery creates a battery with the given configuration.
func NewBattery(cfg Config) *Battery {
	if cfg.MinObs <= 0 {
		cfg.MinObs = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Battery{cfg: cfg}
}

// horizonOutput keeps one horizon's results in a disjoint slot so workers
// never contend on shared state.
type horizonOutput struct {
	results []SpecResult
	skips   []Skip
}

// Run estimates every specification for every horizon. Horizons are
// independent units of work and run on a bounded worker pool; a degenerate
// regression fails that one specification only.
func (b *Battery) Run(ds *panel.Dataset) Report {
	horizons := make([]int, 0, ds.H-1)
	for h := 1; h < ds.H; h++ {
		horizons = append(horizons, h)
	}

	outputs := make([]horizonOutput, len(horizons))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := b.cfg.Workers
	if workers > len(horizons) {
		workers = len(horizons)
	}
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				outputs[i] = b.runHorizon(ds, horizons[i])
			}
		}()
	}

	for i := range horizons {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var report Report
	for _, out := range outputs {
		report.Results = append(report.Results, out.results...)
		report.Skips = append(report.Skips, out.skips...)
	}
	sort.SliceStable(report.Results, func(i, j int) bool {
		if report.Results[i].Horizon != report.Results[j].Horizon {
			return report.Results[i].Horizon < report.Results[j].Horizon
		}
		return specIndex(report.Results[i].Spec) < specIndex(report.Results[j].Spec)
	})
	return report
}

// runHorizon estimates all specifications for one horizon.
func (b *Battery) runHorizon(ds *panel.Dataset, h int) horizonOutput {
	var out horizonOutput

	for _, spec := range specOrder {
		frame, joint, err := buildFrame(ds, spec, h)
		if err != nil {
			if errors.Is(err, errSpecUnavailable) {
				out.skips = append(out.skips, Skip{
					Horizon: h, Spec: spec,
					Reason: "required regressor does not exist at this horizon",
				})
				continue
			}
			out.skips = append(out.skips, Skip{Horizon: h, Spec: spec, Reason: err.Error()})
			continue
		}

		fit, err := regress.OLS(frame, regress.Options{
			HACLag: b.cfg.HACLag,
			MinObs: b.cfg.MinObs,
		})
		if err != nil {
			switch {
			case errors.Is(err, regress.ErrInsufficientData):
				log.Printf("Skipping %s at horizon %d: %v", spec, h, err)
			case errors.Is(err, regress.ErrDegenerate):
				log.Printf("Degenerate regression %s at horizon %d: %v", spec, h, err)
			default:
				log.Printf("Failed regression %s at horizon %d: %v", spec, h, err)
			}
			out.skips = append(out.skips, Skip{Horizon: h, Spec: spec, Reason: err.Error()})
			continue
		}

		result := SpecResult{Horizon: h, Spec: spec, Fit: fit}
		if len(joint) > 1 || (len(joint) == 1 && joint[0] != "const") {
			if w, err := fit.Wald(joint...); err == nil {
				result.Joint = &w
			} else {
				log.Printf("Joint test failed for %s at horizon %d: %v", spec, h, err)
			}
		}
		out.results = append(out.results, result)
	}

	return out
}

func specIndex(spec string) int {
	for i, s := range specOrder {
		if s == spec {
			return i
		}
	}
	return len(specOrder)
}
