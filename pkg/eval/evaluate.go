// Package eval compares corrected and benchmark nowcast errors over the
// evaluation window: relative RMSE, Diebold-Mariano, and
// forecast-encompassing statistics.
package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/regress"
)

// ErrNoObservations marks an evaluation with no usable error pairs.
var ErrNoObservations = errors.New("no paired evaluation observations")

// Config holds evaluation configuration. The HAC lag must match the
// convention used by the rationality battery for comparability.
type Config struct {
	HACLag int
}

// Result is the forecast-evaluation summary for one horizon.
type Result struct {
	Horizon      int
	RelativeRMSE float64 // RMSE(corrected)/RMSE(benchmark) x 100
	DMStat       float64 // HAC t on the mean squared-loss differential
	DMPValue     float64
	EncBeta      float64 // coefficient on (e_bench - e_corr)
	EncTStat     float64
	EncPValue    float64
	NObs         int
}

// Pair is one evaluation-window observation: the corrected forecast error
// and the benchmark (uncorrected) forecast error for the same period.
type Pair struct {
	Period model.Period
	Corr   float64
	Bench  float64
}

// Evaluate computes the three comparison statistics for one horizon's
// paired evaluation errors. Pairs with a missing member are dropped.
func Evaluate(horizon int, pairs []Pair, cfg Config) (Result, error) {
	var valid []Pair
	for _, p := range pairs {
		if math.IsNaN(p.Corr) || math.IsNaN(p.Bench) {
			continue
		}
		valid = append(valid, p)
	}
	n := len(valid)
	if n == 0 {
		return Result{}, fmt.Errorf("horizon %d: %w", horizon, ErrNoObservations)
	}

	periods := make([]model.Period, n)
	var sumCorr2, sumBench2 float64
	diffLoss := make([]float64, n)   // d_t = e_corr^2 - e_bench^2
	benchErr := make([]float64, n)   // e_bench
	errDiff := make([]float64, n)    // e_bench - e_corr
	for i, p := range valid {
		periods[i] = p.Period
		sumCorr2 += p.Corr * p.Corr
		sumBench2 += p.Bench * p.Bench
		diffLoss[i] = p.Corr*p.Corr - p.Bench*p.Bench
		benchErr[i] = p.Bench
		errDiff[i] = p.Bench - p.Corr
	}

	if sumBench2 == 0 {
		return Result{}, fmt.Errorf("horizon %d: %w: benchmark errors are all zero",
			horizon, regress.ErrDegenerate)
	}
	relRMSE := 100 * math.Sqrt(sumCorr2/float64(n)) / math.Sqrt(sumBench2/float64(n))

	dmStat, dmPVal, err := dieboldMariano(periods, diffLoss, cfg.HACLag)
	if err != nil {
		return Result{}, fmt.Errorf("horizon %d: %w", horizon, err)
	}

	encBeta, encT, encP, err := encompassing(periods, benchErr, errDiff, cfg.HACLag)
	if err != nil {
		return Result{}, fmt.Errorf("horizon %d: %w", horizon, err)
	}

	return Result{
		Horizon:      horizon,
		RelativeRMSE: relRMSE,
		DMStat:       dmStat,
		DMPValue:     dmPVal,
		EncBeta:      encBeta,
		EncTStat:     encT,
		EncPValue:    encP,
		NObs:         n,
	}, nil
}

// dieboldMariano regresses the squared-loss differential on a constant
// with HAC standard errors; the constant's t statistic is the DM
// statistic.
func dieboldMariano(periods []model.Period, diffLoss []float64, hacLag int) (stat, pval float64, err error) {
	f, err := regress.NewFrame("diebold-mariano", periods, diffLoss)
	if err != nil {
		return 0, 0, err
	}
	f.AddIntercept()

	fit, err := regress.OLS(f, regress.Options{HACLag: hacLag, MinObs: 2})
	if err != nil {
		return 0, 0, err
	}
	c, _ := fit.Coefficient("const")
	return c.TStat, c.PValue, nil
}

// encompassing regresses the benchmark error on the error differential
// (e_bench - e_corr) without intercept. A coefficient significantly
// different from zero means the corrected forecast carries information the
// benchmark does not encompass.
func encompassing(periods []model.Period, benchErr, errDiff []float64, hacLag int) (beta, tstat, pval float64, err error) {
	f, err := regress.NewFrame("encompassing", periods, benchErr)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := f.Add("diff", errDiff); err != nil {
		return 0, 0, 0, err
	}

	fit, err := regress.OLS(f, regress.Options{HACLag: hacLag, MinObs: 2})
	if err != nil {
		return 0, 0, 0, err
	}
	c, _ := fit.Coefficient("diff")
	return c.Value, c.TStat, c.PValue, nil
}
