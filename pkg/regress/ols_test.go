package regress

import (
	"errors"
	"math"
	"testing"

	"github.com/andeanstats/gdprev/pkg/model"
)

func periods(n int) []model.Period {
	out := make([]model.Period, n)
	for i := range out {
		out[i] = model.NewPeriod(2010, 1).Add(i)
	}
	return out
}

func TestOLSConstantOnly(t *testing.T) {
	// y regressed on a constant: b = mean(y). With y = 1..4 the residuals
	// are (-1.5, -0.5, 0.5, 1.5), so the HAC pieces are exact by hand:
	// lag 0 gives V = 5/16, lag 1 adds 0.5*2*1.25 for V = 6.25/16.
	y := []float64{1, 2, 3, 4}

	tests := []struct {
		lag    int
		wantSE float64
	}{
		{0, math.Sqrt(5.0 / 16.0)},
		{1, 0.625},
	}

	for _, tt := range tests {
		f, err := NewFrame("const-only", periods(4), y)
		if err != nil {
			t.Fatal(err)
		}
		f.AddIntercept()

		fit, err := OLS(f, Options{HACLag: tt.lag, MinObs: 2})
		if err != nil {
			t.Fatalf("lag %d: %v", tt.lag, err)
		}

		c, ok := fit.Coefficient("const")
		if !ok {
			t.Fatal("const coefficient missing")
		}
		if math.Abs(c.Value-2.5) > 1e-12 {
			t.Errorf("lag %d: const = %v, want 2.5", tt.lag, c.Value)
		}
		if math.Abs(c.SE-tt.wantSE) > 1e-12 {
			t.Errorf("lag %d: SE = %v, want %v", tt.lag, c.SE, tt.wantSE)
		}
		if math.Abs(c.TStat-c.Value/tt.wantSE) > 1e-12 {
			t.Errorf("lag %d: t = %v, want %v", tt.lag, c.TStat, c.Value/tt.wantSE)
		}
	}
}

func TestOLSExactFit(t *testing.T) {
	// y = 2 + 3x with no noise: exact coefficients, zero residuals, zero
	// HAC variance, infinite t statistics.
	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 2 + 3*x[i]
	}

	f, _ := NewFrame("exact", periods(len(x)), y)
	f.AddIntercept()
	if err := f.Add("x", x); err != nil {
		t.Fatal(err)
	}

	fit, err := OLS(f, Options{HACLag: 1, MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}

	if v := fit.Value("const"); math.Abs(v-2) > 1e-9 {
		t.Errorf("const = %v, want 2", v)
	}
	if v := fit.Value("x"); math.Abs(v-3) > 1e-9 {
		t.Errorf("x = %v, want 3", v)
	}

	c, _ := fit.Coefficient("x")
	if c.SE > 1e-9 {
		t.Errorf("SE = %v, want ~0", c.SE)
	}
	if !math.IsInf(c.TStat, 1) {
		t.Errorf("t = %v, want +Inf", c.TStat)
	}
	if c.PValue != 0 || c.Stars != "***" {
		t.Errorf("p = %v stars = %q, want 0 and ***", c.PValue, c.Stars)
	}
}

func TestOLSInsufficientData(t *testing.T) {
	y := []float64{1, 2, 3}
	f, _ := NewFrame("short", periods(3), y)
	f.AddIntercept()

	_, err := OLS(f, Options{MinObs: 5})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}

func TestOLSDegenerate(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6}
	x := []float64{1, 1, 2, 2, 3, 3}

	f, _ := NewFrame("collinear", periods(6), y)
	f.AddIntercept()
	f.Add("x", x)
	f.Add("x2", x) // identical column

	_, err := OLS(f, Options{MinObs: 2})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("got %v, want ErrDegenerate", err)
	}
}

func TestOLSDropsMissingRows(t *testing.T) {
	y := []float64{1, math.NaN(), 3, 4, 5, 6}
	x := []float64{2, 2, math.NaN(), 3, 4, 5}

	f, _ := NewFrame("missing", periods(6), y)
	f.AddIntercept()
	f.Add("x", x)

	if got := f.ValidObs(); got != 4 {
		t.Errorf("ValidObs = %d, want 4", got)
	}

	fit, err := OLS(f, Options{MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if fit.NObs != 4 {
		t.Errorf("NObs = %d, want 4", fit.NObs)
	}
}

func TestOLSOrdersRowsByPeriod(t *testing.T) {
	// The same data presented in scrambled period order must give the
	// same HAC standard errors, because rows are sorted before the lag
	// products are formed.
	y := []float64{1, 4, 2, 5, 3, 6}
	order := []int{0, 3, 1, 4, 2, 5} // position i holds period order[i]

	ps := make([]model.Period, len(y))
	base := model.NewPeriod(2010, 1)
	for i, o := range order {
		ps[i] = base.Add(o)
	}

	scrambled, _ := NewFrame("scrambled", ps, y)
	scrambled.AddIntercept()

	sortedY := []float64{1, 2, 3, 4, 5, 6}
	sorted, _ := NewFrame("sorted", periods(6), sortedY)
	sorted.AddIntercept()

	fitA, err := OLS(scrambled, Options{HACLag: 2, MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}
	fitB, err := OLS(sorted, Options{HACLag: 2, MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}

	ca, _ := fitA.Coefficient("const")
	cb, _ := fitB.Coefficient("const")
	if math.Abs(ca.SE-cb.SE) > 1e-12 {
		t.Errorf("scrambled SE = %v, sorted SE = %v", ca.SE, cb.SE)
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		pval float64
		want string
	}{
		{0.005, "***"},
		{0.03, "**"},
		{0.07, "*"},
		{0.2, ""},
	}
	for _, tt := range tests {
		if got := Stars(tt.pval); got != tt.want {
			t.Errorf("Stars(%v) = %q, want %q", tt.pval, got, tt.want)
		}
	}
}

func TestWaldConstant(t *testing.T) {
	// Const-only fit with lag 0: W = b^2/V = 2.5^2/(5/16) = 20.
	y := []float64{1, 2, 3, 4}
	f, _ := NewFrame("wald", periods(4), y)
	f.AddIntercept()

	fit, err := OLS(f, Options{HACLag: 0, MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}

	w, err := fit.Wald("const")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w.Stat-20) > 1e-9 {
		t.Errorf("Wald stat = %v, want 20", w.Stat)
	}
	if w.DF != 1 {
		t.Errorf("DF = %d, want 1", w.DF)
	}
	if w.PValue <= 0 || w.PValue >= 0.001 {
		t.Errorf("PValue = %v, want tiny but positive", w.PValue)
	}
}

func TestWaldUnknownName(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5}
	f, _ := NewFrame("wald-unknown", periods(5), y)
	f.AddIntercept()

	fit, err := OLS(f, Options{MinObs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fit.Wald("nope"); err == nil {
		t.Error("expected error for unknown coefficient")
	}
}
