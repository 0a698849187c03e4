// Package regress implements OLS with Newey-West HAC standard errors and
// Wald joint tests on gonum, for time-indexed regressions.
package regress

import (
	"fmt"
	"math"
	"sort"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Frame is a named regression design: a dependent series, named regressor
// columns, and the period index that orders the rows. Missing values stay
// NaN in the frame; the valid-sample mask is computed directly from the
// columns' missingness when the model is fit, never by fitting and
// discarding a throwaway model.
type Frame struct {
	Label   string
	Periods []model.Period
	Y       []float64
	Names   []string
	Cols    [][]float64
}

// NewFrame creates a frame for dependent series y over the given periods.
func NewFrame(label string, periods []model.Period, y []float64) (*Frame, error) {
	if len(periods) != len(y) {
		return nil, fmt.Errorf("frame %s: periods and y length mismatch: %d vs %d",
			label, len(periods), len(y))
	}
	return &Frame{
		Label:   label,
		Periods: periods,
		Y:       y,
	}, nil
}

// AddIntercept adds a constant regressor named "const".
func (f *Frame) AddIntercept() {
	ones := make([]float64, len(f.Y))
	for i := range ones {
		ones[i] = 1
	}
	f.Names = append(f.Names, "const")
	f.Cols = append(f.Cols, ones)
}

// Add appends a named regressor column.
func (f *Frame) Add(name string, col []float64) error {
	if len(col) != len(f.Y) {
		return fmt.Errorf("frame %s: column %s length mismatch: %d vs %d",
			f.Label, name, len(col), len(f.Y))
	}
	f.Names = append(f.Names, name)
	f.Cols = append(f.Cols, col)
	return nil
}

// validRows returns the positions where y and every regressor are
// non-missing, sorted by period. Sorting by period is the explicit step
// that must precede Newey-West variance estimation: out-of-order rows
// would silently corrupt the residual autocovariances.
func (f *Frame) validRows() []int {
	var rows []int
	for t := range f.Y {
		if math.IsNaN(f.Y[t]) {
			continue
		}
		ok := true
		for _, col := range f.Cols {
			if math.IsNaN(col[t]) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, t)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return f.Periods[rows[i]] < f.Periods[rows[j]]
	})
	return rows
}

// ValidObs returns the number of usable observations.
func (f *Frame) ValidObs() int {
	return len(f.validRows())
}
