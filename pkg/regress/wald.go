package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WaldResult is a joint zero-restriction test on a set of coefficients.
type WaldResult struct {
	Stat   float64
	PValue float64
	DF     int
}

// Wald tests the joint null that every named coefficient equals zero,
// using the fitted HAC covariance:
//
//	W = b_r' (V_r)^{-1} b_r  ~  chi-square(q)
//
// where b_r and V_r are the restricted coefficient subvector and its
// covariance block.
func (f *Fit) Wald(names ...string) (WaldResult, error) {
	if len(names) == 0 {
		return WaldResult{}, fmt.Errorf("%s: no restrictions given", f.Label)
	}

	idx := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for j, c := range f.Coeffs {
			if c.Name == name {
				found = j
				break
			}
		}
		if found < 0 {
			return WaldResult{}, fmt.Errorf("%s: unknown coefficient %q", f.Label, name)
		}
		idx = append(idx, found)
	}

	q := len(idx)
	br := mat.NewVecDense(q, nil)
	vr := mat.NewDense(q, q, nil)
	for i, a := range idx {
		br.SetVec(i, f.beta.AtVec(a))
		for j, b := range idx {
			vr.Set(i, j, f.cov.At(a, b))
		}
	}

	var vrInv mat.Dense
	if err := vrInv.Inverse(vr); err != nil {
		return WaldResult{}, fmt.Errorf("%s: %w: singular restriction covariance: %v",
			f.Label, ErrDegenerate, err)
	}

	var tmp mat.VecDense
	tmp.MulVec(&vrInv, br)
	stat := mat.Dot(br, &tmp)
	if math.IsNaN(stat) || stat < 0 {
		return WaldResult{}, fmt.Errorf("%s: %w: invalid Wald statistic", f.Label, ErrDegenerate)
	}

	dist := distuv.ChiSquared{K: float64(q)}
	return WaldResult{
		Stat:   stat,
		PValue: dist.Survival(stat),
		DF:     q,
	}, nil
}
