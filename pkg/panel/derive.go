package panel

import (
	"fmt"
	"math"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Deriver builds revision and error series from a release panel. The final
// horizon H is fixed at construction; changing it requires a fresh Deriver
// and a full re-derivation, never incremental patching of an existing
// Dataset.
type Deriver struct {
	FinalHorizon int
}

// NewDeriver creates a deriver that treats y_H as the ground-truth release.
func NewDeriver(finalHorizon int) (*Deriver, error) {
	if finalHorizon < 2 {
		return nil, fmt.Errorf("final horizon must be >= 2, got %d", finalHorizon)
	}
	return &Deriver{FinalHorizon: finalHorizon}, nil
}

// Derive computes, for every target period in the panel:
//
//	r_h = y_h - y_{h-1}  for h = 2..H
//	e_h = y_H - y_h      for h = 1..H-1
//
// Missingness propagates strictly: if y_h is missing, every derived value
// referencing it is missing. Nothing is imputed. The input panel is read
// but never mutated.
func (d *Deriver) Derive(p *model.ReleasePanel) *Dataset {
	periods := p.Periods()
	n := len(periods)
	h := d.FinalHorizon

	ds := &Dataset{
		H:       h,
		Periods: periods,
		Y:       nanMatrix(h, n),
		R:       nanMatrix(h, n),
		E:       nanMatrix(h, n),
		Bench:   nanMatrix(h, n),
	}

	for t, period := range periods {
		for hz := 1; hz <= h; hz++ {
			ds.Y[hz-1][t] = p.Value(period, hz)
		}

		final := ds.Y[h-1][t]
		for hz := 1; hz <= h; hz++ {
			if hz >= 2 {
				prev := ds.Y[hz-2][t]
				cur := ds.Y[hz-1][t]
				if !math.IsNaN(prev) && !math.IsNaN(cur) {
					ds.R[hz-1][t] = cur - prev
				}
			}
			if hz < h {
				cur := ds.Y[hz-1][t]
				if !math.IsNaN(final) && !math.IsNaN(cur) {
					ds.E[hz-1][t] = final - cur
				}
			}
		}
	}

	return ds
}
