// Package panel derives revision and error series from release panels and
// aligns them with benchmark-revision indicators. All derived series are
// column-oriented and indexed by (horizon, period position) so downstream
// regressions never look up variables by name.
package panel

import (
	"math"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Dataset holds the derived panel: for each horizon h (1..H), series
// aligned over the same chronologically sorted periods. Missing values are
// NaN throughout.
//
//	Y[h-1][t]     release value y_h at period t
//	R[h-1][t]     revision r_h = y_h - y_{h-1}, defined for h >= 2
//	E[h-1][t]     error e_h = y_H - y_h, defined for h < H
//	Bench[h-1][t] benchmark indicator (0/1), NaN when no indicator row
//
// A Dataset is immutable once built; the aligner returns a new Dataset
// rather than mutating in place.
type Dataset struct {
	H       int
	Periods []model.Period
	Y       [][]float64
	R       [][]float64
	E       [][]float64
	Bench   [][]float64
}

// nanSlice returns a slice of n NaNs.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func nanMatrix(h, n int) [][]float64 {
	out := make([][]float64, h)
	for i := range out {
		out[i] = nanSlice(n)
	}
	return out
}

// Release returns y_h at period position t.
func (d *Dataset) Release(h, t int) float64 { return d.Y[h-1][t] }

// Revision returns r_h at period position t (NaN for h = 1).
func (d *Dataset) Revision(h, t int) float64 { return d.R[h-1][t] }

// Error returns e_h at period position t (NaN for h = H).
func (d *Dataset) Error(h, t int) float64 { return d.E[h-1][t] }

// Len returns the number of target periods.
func (d *Dataset) Len() int { return len(d.Periods) }

// Lag returns series shifted back by k periods: out[t] = series[t-k],
// with the first k entries NaN. Used for lagged-revision and lagged-error
// regressors.
func Lag(series []float64, k int) []float64 {
	out := nanSlice(len(series))
	for t := k; t < len(series); t++ {
		out[t] = series[t-k]
	}
	return out
}

// clone returns a deep copy of the dataset.
func (d *Dataset) clone() *Dataset {
	out := &Dataset{
		H:       d.H,
		Periods: append([]model.Period(nil), d.Periods...),
		Y:       make([][]float64, len(d.Y)),
		R:       make([][]float64, len(d.R)),
		E:       make([][]float64, len(d.E)),
		Bench:   make([][]float64, len(d.Bench)),
	}
	for i := range d.Y {
		out.Y[i] = append([]float64(nil), d.Y[i]...)
		out.R[i] = append([]float64(nil), d.R[i]...)
		out.E[i] = append([]float64(nil), d.E[i]...)
		out.Bench[i] = append([]float64(nil), d.Bench[i]...)
	}
	return out
}
