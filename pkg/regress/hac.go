package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// neweyWest computes the HAC covariance of the OLS coefficients:
//
//	V = (X'X)^{-1} S (X'X)^{-1}
//	S = sum_t u_t^2 x_t x_t'
//	  + sum_{l=1..L} w_l sum_{t>l} u_t u_{t-l} (x_t x_{t-l}' + x_{t-l} x_t')
//
// with Bartlett weights w_l = 1 - l/(L+1). Rows must already be in
// chronological order; the lag products are meaningless otherwise.
func neweyWest(x *mat.Dense, resid []float64, xtxInv *mat.Dense, lag int) (*mat.Dense, error) {
	n, k := x.Dims()
	if len(resid) != n {
		return nil, fmt.Errorf("%w: residual length %d does not match %d rows",
			ErrDegenerate, len(resid), n)
	}
	if lag < 0 {
		lag = 0
	}
	if lag >= n {
		lag = n - 1
	}

	s := mat.NewDense(k, k, nil)
	xt := make([]float64, k)
	xs := make([]float64, k)

	// Lag-0 term.
	for t := 0; t < n; t++ {
		mat.Row(xt, t, x)
		w := resid[t] * resid[t]
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				s.Set(i, j, s.At(i, j)+w*xt[i]*xt[j])
			}
		}
	}

	// Autocovariance terms with Bartlett weights.
	for l := 1; l <= lag; l++ {
		w := 1 - float64(l)/float64(lag+1)
		for t := l; t < n; t++ {
			mat.Row(xt, t, x)
			mat.Row(xs, t-l, x)
			uu := resid[t] * resid[t-l]
			for i := 0; i < k; i++ {
				for j := 0; j < k; j++ {
					s.Set(i, j, s.At(i, j)+w*uu*(xt[i]*xs[j]+xs[i]*xt[j]))
				}
			}
		}
	}

	var tmp, cov mat.Dense
	tmp.Mul(xtxInv, s)
	cov.Mul(&tmp, xtxInv)
	return &cov, nil
}
