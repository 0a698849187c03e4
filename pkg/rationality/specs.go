// Package rationality runs the per-horizon battery of revision-rationality
// regressions: unbiasedness, Mincer-Zarnowitz, encompassing, augmented and
// omnibus specifications, and their benchmark-augmented variants.
package rationality

import (
	"fmt"
	"math"

	"github.com/andeanstats/gdprev/pkg/panel"
	"github.com/andeanstats/gdprev/pkg/regress"
)

// Spec names, in battery order.
const (
	SpecBias        = "bias"
	SpecMZ          = "mincer-zarnowitz"
	SpecEncompass   = "encompassing"
	SpecAugmentedMZ = "augmented-mz"
	SpecOmnibus     = "omnibus"
	SpecBenchmark   = "benchmark-omnibus"
)

// specOrder fixes the order specifications run for each horizon.
var specOrder = []string{
	SpecBias, SpecMZ, SpecEncompass, SpecAugmentedMZ, SpecOmnibus, SpecBenchmark,
}

// errSpecUnavailable marks a specification whose required regressors do not
// exist at this horizon (e.g. a revision term at horizon 1). The recovery
// is omission, not substitution.
var errSpecUnavailable = fmt.Errorf("specification unavailable at this horizon")

// buildFrame constructs the regression frame for one spec at one horizon.
// The dependent variable is always e_h; horizons without a given regressor
// omit the spec entirely when nothing but the bias regression would remain.
func buildFrame(ds *panel.Dataset, spec string, h int) (*regress.Frame, []string, error) {
	if h < 1 || h >= ds.H {
		return nil, nil, fmt.Errorf("error series undefined at horizon %d", h)
	}

	label := fmt.Sprintf("%s h=%d", spec, h)
	f, err := regress.NewFrame(label, ds.Periods, ds.E[h-1])
	if err != nil {
		return nil, nil, err
	}
	f.AddIntercept()

	y := ds.Y[h-1]
	r := ds.R[h-1]
	rLag := panel.Lag(r, 1)
	bench := ds.Bench[h-1]

	// Joint-test restrictions per spec (names of slopes under the
	// rationality null; bias tests the constant alone).
	var joint []string

	switch spec {
	case SpecBias:
		joint = []string{"const"}

	case SpecMZ:
		if err := f.Add("y", y); err != nil {
			return nil, nil, err
		}
		joint = []string{"const", "y"}

	case SpecEncompass:
		if h < 2 {
			return nil, nil, errSpecUnavailable
		}
		if err := f.Add("r", r); err != nil {
			return nil, nil, err
		}
		joint = []string{"r"}

	case SpecAugmentedMZ:
		if h < 2 {
			return nil, nil, errSpecUnavailable
		}
		if err := f.Add("y", y); err != nil {
			return nil, nil, err
		}
		if err := f.Add("r", r); err != nil {
			return nil, nil, err
		}
		joint = []string{"y", "r"}

	case SpecOmnibus:
		if h < 2 {
			return nil, nil, errSpecUnavailable
		}
		if err := f.Add("y", y); err != nil {
			return nil, nil, err
		}
		if err := f.Add("r", r); err != nil {
			return nil, nil, err
		}
		if err := f.Add("L1.r", rLag); err != nil {
			return nil, nil, err
		}
		joint = []string{"y", "r", "L1.r"}

	case SpecBenchmark:
		if h < 2 {
			return nil, nil, errSpecUnavailable
		}
		if err := f.Add("y", y); err != nil {
			return nil, nil, err
		}
		if err := f.Add("r", r); err != nil {
			return nil, nil, err
		}
		if err := f.Add("L1.r", rLag); err != nil {
			return nil, nil, err
		}
		if err := f.Add("bench", bench); err != nil {
			return nil, nil, err
		}
		if err := f.Add("bench:y", interact(bench, y)); err != nil {
			return nil, nil, err
		}
		if err := f.Add("bench:r", interact(bench, r)); err != nil {
			return nil, nil, err
		}
		if err := f.Add("bench:L1.r", interact(bench, rLag)); err != nil {
			return nil, nil, err
		}
		joint = []string{"bench", "bench:y", "bench:r", "bench:L1.r"}

	default:
		return nil, nil, fmt.Errorf("unknown specification %q", spec)
	}

	return f, joint, nil
}

// interact multiplies two columns elementwise; missingness propagates.
func interact(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = a[i] * b[i]
	}
	return out
}
