package panel

import (
	"math"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Join selects how unmatched (period, horizon) keys are treated when the
// benchmark indicator panel is merged onto the derived dataset.
type Join int

const (
	// JoinInner drops rows with no benchmark information: the canonical
	// path. Dropped rows shrink the per-horizon samples, so the counts
	// are reported, never swallowed.
	JoinInner Join = iota
	// JoinOuter retains rows with no benchmark information; their
	// indicator stays NaN and only benchmark-augmented specifications
	// skip them.
	JoinOuter
)

// AlignReport accounts for rows dropped by an inner-join merge, keyed by
// horizon. Sample shrinkage changes statistical power, so callers must
// surface these counts.
type AlignReport struct {
	DroppedByHorizon map[int]int
	Matched          int
}

// TotalDropped returns the number of dropped rows across all horizons.
func (r AlignReport) TotalDropped() int {
	total := 0
	for _, n := range r.DroppedByHorizon {
		total += n
	}
	return total
}

// Aligner merges a benchmark indicator panel onto a derived dataset by
// exact (period, horizon) key match.
type Aligner struct {
	Mode Join
}

// NewAligner creates an aligner with the given join mode.
func NewAligner(mode Join) *Aligner {
	return &Aligner{Mode: mode}
}

// Merge returns a new dataset with the Bench columns populated from bp.
// Under JoinInner, rows with a non-missing release but no benchmark key are
// dropped (all derived values set to missing) and counted in the report.
// The input dataset is not mutated.
func (a *Aligner) Merge(ds *Dataset, bp *model.BenchmarkPanel) (*Dataset, AlignReport) {
	out := ds.clone()
	report := AlignReport{DroppedByHorizon: make(map[int]int)}

	for t, period := range out.Periods {
		for h := 1; h <= out.H; h++ {
			flag, ok := bp.Lookup(period, h)
			if ok {
				if flag {
					out.Bench[h-1][t] = 1
				} else {
					out.Bench[h-1][t] = 0
				}
				if !math.IsNaN(out.Y[h-1][t]) {
					report.Matched++
				}
				continue
			}

			// No benchmark information for this key.
			if a.Mode == JoinInner && !math.IsNaN(out.Y[h-1][t]) {
				out.Y[h-1][t] = math.NaN()
				out.R[h-1][t] = math.NaN()
				out.E[h-1][t] = math.NaN()
				report.DroppedByHorizon[h]++
			}
		}
	}

	return out, report
}
