package model

import (
	"math"
	"sort"
)

// ReleasePanel is a rectangular table of releases keyed by
// (target period, horizon). Cell values are the growth rate as known
// `horizon` releases after first publication. Missing cells are NaN.
//
// The panel is the single source for all derived series. Once revisions or
// errors have been derived from it, callers must not mutate it; exclusion
// windows are applied with MaskPeriods before derivation.
type ReleasePanel struct {
	H       int
	periods []Period
	values  map[Period][]float64
}

// NewReleasePanel creates an empty panel with horizons 1..h.
func NewReleasePanel(h int) *ReleasePanel {
	return &ReleasePanel{
		H:      h,
		values: make(map[Period][]float64),
	}
}

// PanelFromReleases builds a panel from long-format release rows.
// Releases with horizons outside 1..h are ignored.
func PanelFromReleases(h int, releases []Release) *ReleasePanel {
	p := NewReleasePanel(h)
	for _, r := range releases {
		if r.Horizon < 1 || r.Horizon > h {
			continue
		}
		p.Set(r.Period, r.Horizon, r.Value)
	}
	return p
}

// Set records the release value at (period, horizon).
func (p *ReleasePanel) Set(period Period, horizon int, value float64) {
	row, ok := p.values[period]
	if !ok {
		row = make([]float64, p.H)
		for i := range row {
			row[i] = math.NaN()
		}
		p.values[period] = row
		p.periods = nil // invalidate sorted cache
	}
	row[horizon-1] = value
}

// Value returns the release at (period, horizon), NaN if missing.
func (p *ReleasePanel) Value(period Period, horizon int) float64 {
	row, ok := p.values[period]
	if !ok || horizon < 1 || horizon > p.H {
		return math.NaN()
	}
	return row[horizon-1]
}

// Observed reports whether a non-missing value exists at (period, horizon).
func (p *ReleasePanel) Observed(period Period, horizon int) bool {
	return !math.IsNaN(p.Value(period, horizon))
}

// Periods returns all target periods present in the panel in chronological
// order.
func (p *ReleasePanel) Periods() []Period {
	if p.periods == nil {
		p.periods = make([]Period, 0, len(p.values))
		for period := range p.values {
			p.periods = append(p.periods, period)
		}
		sort.Slice(p.periods, func(i, j int) bool { return p.periods[i] < p.periods[j] })
	}
	return p.periods
}

// Len returns the number of target periods in the panel.
func (p *ReleasePanel) Len() int {
	return len(p.values)
}

// MaskPeriods sets every release in [start, end] to missing. It is the
// preprocessing step for excluded windows (e.g. a pandemic-shock period
// treated as missing-by-policy) and must run before any derivation.
// Returns the number of cells masked.
func (p *ReleasePanel) MaskPeriods(start, end Period) int {
	masked := 0
	for period, row := range p.values {
		if period < start || period > end {
			continue
		}
		for i := range row {
			if !math.IsNaN(row[i]) {
				row[i] = math.NaN()
				masked++
			}
		}
	}
	return masked
}

// Clone returns a deep copy of the panel.
func (p *ReleasePanel) Clone() *ReleasePanel {
	out := NewReleasePanel(p.H)
	for period, row := range p.values {
		cp := make([]float64, len(row))
		copy(cp, row)
		out.values[period] = cp
	}
	return out
}

// BenchmarkPanel is a parallel 0/1 panel flagging base-year benchmark
// revision events, keyed identically to ReleasePanel. Missing keys carry no
// information and are distinct from an explicit false.
type BenchmarkPanel struct {
	H      int
	values map[Period][]int8 // -1 missing, 0 routine, 1 benchmark
}

// NewBenchmarkPanel creates an empty benchmark panel with horizons 1..h.
func NewBenchmarkPanel(h int) *BenchmarkPanel {
	return &BenchmarkPanel{
		H:      h,
		values: make(map[Period][]int8),
	}
}

// BenchmarkPanelFromFlags builds a panel from long-format flag rows.
func BenchmarkPanelFromFlags(h int, flags []BenchmarkFlag) *BenchmarkPanel {
	p := NewBenchmarkPanel(h)
	for _, f := range flags {
		if f.Horizon < 1 || f.Horizon > h {
			continue
		}
		p.Set(f.Period, f.Horizon, f.Flag)
	}
	return p
}

// Set records the benchmark flag at (period, horizon).
func (p *BenchmarkPanel) Set(period Period, horizon int, flag bool) {
	row, ok := p.values[period]
	if !ok {
		row = make([]int8, p.H)
		for i := range row {
			row[i] = -1
		}
		p.values[period] = row
	}
	if flag {
		row[horizon-1] = 1
	} else {
		row[horizon-1] = 0
	}
}

// Lookup returns the flag at (period, horizon) and whether it exists.
func (p *BenchmarkPanel) Lookup(period Period, horizon int) (flag, ok bool) {
	row, present := p.values[period]
	if !present || horizon < 1 || horizon > p.H {
		return false, false
	}
	v := row[horizon-1]
	if v < 0 {
		return false, false
	}
	return v == 1, true
}

// Len returns the number of target periods in the benchmark panel.
func (p *BenchmarkPanel) Len() int {
	return len(p.values)
}
