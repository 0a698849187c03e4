package regress

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData marks a regression skipped for lack of valid
	// observations. Callers recover by skipping the unit of work.
	ErrInsufficientData = errors.New("insufficient observations")

	// ErrDegenerate marks a singular design matrix or an unusable HAC
	// covariance. Fatal for the one regression only.
	ErrDegenerate = errors.New("degenerate regression")
)

// Coefficient is one estimated coefficient with its HAC-robust inference.
type Coefficient struct {
	Name   string
	Value  float64
	SE     float64
	TStat  float64
	PValue float64
	Stars  string
}

// Fit is a fitted OLS model with Newey-West covariance.
type Fit struct {
	Label     string
	Coeffs    []Coefficient
	NObs      int
	HACLag    int
	Residuals []float64

	beta *mat.VecDense
	cov  *mat.Dense
}

// Options controls estimation.
type Options struct {
	HACLag int // Newey-West lag truncation
	MinObs int // minimum valid observations, default 5
}

// OLS fits the frame by ordinary least squares and computes Newey-West
// HAC standard errors with Bartlett-kernel weights. Rows with any missing
// value are excluded; the surviving rows are processed in period order.
func OLS(f *Frame, opts Options) (*Fit, error) {
	minObs := opts.MinObs
	if minObs <= 0 {
		minObs = 5
	}

	rows := f.validRows()
	n := len(rows)
	k := len(f.Cols)
	if k == 0 {
		return nil, fmt.Errorf("%s: no regressors", f.Label)
	}
	if n < minObs || n <= k {
		return nil, fmt.Errorf("%s: %w: %d valid rows for %d regressors",
			f.Label, ErrInsufficientData, n, k)
	}

	x := mat.NewDense(n, k, nil)
	y := mat.NewVecDense(n, nil)
	for i, t := range rows {
		y.SetVec(i, f.Y[t])
		for j, col := range f.Cols {
			x.Set(i, j, col[t])
		}
	}

	// beta = (X'X)^{-1} X'y. A singular design (e.g. collinear dummy
	// interactions) is degenerate, not recoverable.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%s: %w: singular design matrix: %v", f.Label, ErrDegenerate, err)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(k, nil)
	beta.MulVec(&xtxInv, &xty)

	// Residuals.
	var yhat mat.VecDense
	yhat.MulVec(x, beta)
	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		resid[i] = y.AtVec(i) - yhat.AtVec(i)
	}

	cov, err := neweyWest(x, resid, &xtxInv, opts.HACLag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Label, err)
	}

	dof := n - k
	coeffs := make([]Coefficient, k)
	for j := 0; j < k; j++ {
		v := cov.At(j, j)
		if math.IsNaN(v) || v < -1e-12 {
			return nil, fmt.Errorf("%s: %w: invalid HAC variance for %s",
				f.Label, ErrDegenerate, f.Names[j])
		}
		if v < 0 {
			v = 0
		}
		se := math.Sqrt(v)
		value := beta.AtVec(j)

		tstat, pval := tTest(value, se, dof)
		coeffs[j] = Coefficient{
			Name:   f.Names[j],
			Value:  value,
			SE:     se,
			TStat:  tstat,
			PValue: pval,
			Stars:  Stars(pval),
		}
	}

	return &Fit{
		Label:     f.Label,
		Coeffs:    coeffs,
		NObs:      n,
		HACLag:    opts.HACLag,
		Residuals: resid,
		beta:      beta,
		cov:       cov,
	}, nil
}

// tTest computes the t statistic and two-sided p-value against a Student t
// distribution with dof degrees of freedom. A zero standard error is the
// degenerate no-variation case: the statistic is infinite unless the
// coefficient is itself zero.
func tTest(value, se float64, dof int) (tstat, pval float64) {
	if se == 0 {
		if value == 0 {
			return 0, 1
		}
		return math.Inf(sign(value)), 0
	}

	tstat = value / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	pval = 2 * dist.Survival(math.Abs(tstat))
	if pval > 1 {
		pval = 1
	}
	return tstat, pval
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// Coefficient returns the named coefficient, if present.
func (f *Fit) Coefficient(name string) (Coefficient, bool) {
	for _, c := range f.Coeffs {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Value returns the point estimate for the named coefficient, NaN if the
// model has no such regressor.
func (f *Fit) Value(name string) float64 {
	c, ok := f.Coefficient(name)
	if !ok {
		return math.NaN()
	}
	return c.Value
}

// Stars maps a p-value to significance stars at the 10/5/1 percent levels.
func Stars(pval float64) string {
	switch {
	case pval < 0.01:
		return "***"
	case pval < 0.05:
		return "**"
	case pval < 0.10:
		return "*"
	}
	return ""
}
