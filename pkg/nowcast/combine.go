package nowcast

import (
	"fmt"
	"math"
	"sort"

	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/panel"
)

// Combiner estimates, for each evaluation date and horizon, a convex
// combination weight lambda from a no-intercept regression of actual error
// on predicted error over strictly-prior observations, then combines the
// corrected and raw nowcasts as
//
//	y_comb = lambda*y_corrected + (1-lambda)*y_raw
//
// The expanding window is carried in incremental accumulators; nothing is
// rescanned per date.
type Combiner struct {
	Floor float64 // neutral lambda fallback value
	Min   int     // minimum prior observations before estimating lambda
}

// NewCombiner creates a combiner with the minimum-observations floor.
func NewCombiner(minObs int) *Combiner {
	if minObs <= 0 {
		minObs = 24
	}
	return &Combiner{Floor: 0.5, Min: minObs}
}

// Combined is one combined nowcast with its audit trail: the number of
// prior observations behind lambda and the latest period that entered the
// fit, so the no-lookahead property can be checked after the fact.
type Combined struct {
	Horizon   int
	Period    model.Period
	Lambda    float64
	PriorObs  int
	LastPrior model.Period // zero value when no prior rows were used
	Raw       float64
	Corrected float64
	Combined  float64
}

// Run combines the evaluation-window corrections for all horizons. The
// corrections must come from Engine.PredictAll so training-window rows can
// seed the expanding window; actual errors come from the dataset.
func (c *Combiner) Run(ds *panel.Dataset, split panel.Split, corrections []Correction) ([]Combined, error) {
	byHorizon := make(map[int][]Correction)
	for _, corr := range corrections {
		byHorizon[corr.Horizon] = append(byHorizon[corr.Horizon], corr)
	}

	positions := make(map[model.Period]int, ds.Len())
	for t, p := range ds.Periods {
		positions[p] = t
	}

	var out []Combined
	for h, rows := range byHorizon {
		combined, err := c.runHorizon(ds, split, h, rows, positions)
		if err != nil {
			return nil, err
		}
		out = append(out, combined...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Horizon != out[j].Horizon {
			return out[i].Horizon < out[j].Horizon
		}
		return out[i].Period < out[j].Period
	})
	return out, nil
}

// runHorizon walks one horizon's corrections in chronological order,
// growing the accumulators with each dated observation after its lambda
// (if any) has been computed, so no row dated >= t can influence
// lambda_t.
func (c *Combiner) runHorizon(ds *panel.Dataset, split panel.Split, h int, rows []Correction, positions map[model.Period]int) ([]Combined, error) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })

	var (
		sumPP, sumPA float64
		priorObs     int
		lastPrior    model.Period
	)

	var out []Combined
	for _, row := range rows {
		t, ok := positions[row.Period]
		if !ok {
			return nil, fmt.Errorf("combination: period %s not in dataset", row.Period)
		}

		if !split.IsTrain(row.Period) {
			if lastPrior >= row.Period {
				return nil, fmt.Errorf("%w: lambda for %s would use period %s",
					ErrLookahead, row.Period, lastPrior)
			}

			lambda := c.Floor
			if priorObs >= c.Min && sumPP > 0 {
				lambda = clampUnit(sumPA / sumPP)
			}

			out = append(out, Combined{
				Horizon:   h,
				Period:    row.Period,
				Lambda:    lambda,
				PriorObs:  priorObs,
				LastPrior: lastPrior,
				Raw:       row.Raw,
				Corrected: row.Corrected,
				Combined:  lambda*row.Corrected + (1-lambda)*row.Raw,
			})
		}

		// Grow the window with this row once its own date is done.
		actual := ds.E[h-1][t]
		if !math.IsNaN(actual) && !math.IsNaN(row.Predicted) {
			sumPP += row.Predicted * row.Predicted
			sumPA += row.Predicted * actual
			priorObs++
			lastPrior = row.Period
		}
	}

	return out, nil
}

// clampUnit clips a combination weight to [0, 1].
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
