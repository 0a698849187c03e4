package panel

import (
	"math"
	"testing"

	"github.com/andeanstats/gdprev/pkg/model"
)

// fixturePanel builds an H=4 panel over n months where each later release
// adds 0.1 to the previous one, so every revision is 0.1 and the error at
// horizon h is (4-h)*0.1.
func fixturePanel(n int) *model.ReleasePanel {
	p := model.NewReleasePanel(4)
	base := model.NewPeriod(2010, 1)
	for t := 0; t < n; t++ {
		period := base.Add(t)
		for h := 1; h <= 4; h++ {
			p.Set(period, h, float64(t)+0.1*float64(h-1))
		}
	}
	return p
}

func TestDeriveFixture(t *testing.T) {
	d, err := NewDeriver(4)
	if err != nil {
		t.Fatal(err)
	}

	ds := d.Derive(fixturePanel(6))
	if ds.Len() != 6 {
		t.Fatalf("dataset has %d periods, want 6", ds.Len())
	}

	for tt := 0; tt < 6; tt++ {
		for h := 2; h <= 4; h++ {
			if got := ds.Revision(h, tt); math.Abs(got-0.1) > 1e-12 {
				t.Errorf("r_%d[%d] = %v, want 0.1", h, tt, got)
			}
		}
		for h := 1; h <= 3; h++ {
			want := 0.1 * float64(4-h)
			if got := ds.Error(h, tt); math.Abs(got-want) > 1e-12 {
				t.Errorf("e_%d[%d] = %v, want %v", h, tt, got, want)
			}
		}
	}

	// Revisions are undefined at h=1, errors at h=H.
	if !math.IsNaN(ds.Revision(1, 0)) {
		t.Error("r_1 should be NaN")
	}
	if !math.IsNaN(ds.Error(4, 0)) {
		t.Error("e_H should be NaN")
	}
}

func TestDeriveTelescoping(t *testing.T) {
	// Revisions telescope: sum over h=2..H of r_h = y_H - y_1 = e_1.
	d, _ := NewDeriver(4)
	ds := d.Derive(fixturePanel(3))

	for tt := 0; tt < ds.Len(); tt++ {
		sum := 0.0
		for h := 2; h <= 4; h++ {
			sum += ds.Revision(h, tt)
		}
		if math.Abs(sum-ds.Error(1, tt)) > 1e-12 {
			t.Errorf("period %d: sum of revisions %v != e_1 %v", tt, sum, ds.Error(1, tt))
		}
	}
}

func TestDeriveMissingnessPropagation(t *testing.T) {
	p := fixturePanel(2)
	period := model.NewPeriod(2010, 1)

	// Knock out y_3 for the first period: r_3, r_4 and e_3 must all go
	// missing, while r_2 and e_1, e_2 survive (they reference only
	// y_1, y_2, y_4).
	p.Set(period, 3, math.NaN())

	d, _ := NewDeriver(4)
	ds := d.Derive(p)

	if !math.IsNaN(ds.Revision(3, 0)) {
		t.Error("r_3 should be missing when y_3 is missing")
	}
	if !math.IsNaN(ds.Revision(4, 0)) {
		t.Error("r_4 should be missing when y_3 is missing")
	}
	if !math.IsNaN(ds.Error(3, 0)) {
		t.Error("e_3 should be missing when y_3 is missing")
	}

	if math.IsNaN(ds.Revision(2, 0)) {
		t.Error("r_2 should survive")
	}
	if math.IsNaN(ds.Error(1, 0)) || math.IsNaN(ds.Error(2, 0)) {
		t.Error("e_1 and e_2 should survive")
	}

	// The second period is untouched.
	if math.IsNaN(ds.Revision(3, 1)) {
		t.Error("second period should be intact")
	}
}

func TestDeriveMissingFinal(t *testing.T) {
	p := fixturePanel(1)
	p.Set(model.NewPeriod(2010, 1), 4, math.NaN())

	d, _ := NewDeriver(4)
	ds := d.Derive(p)

	// No ground truth, no errors at any horizon.
	for h := 1; h <= 3; h++ {
		if !math.IsNaN(ds.Error(h, 0)) {
			t.Errorf("e_%d should be missing without y_H", h)
		}
	}
	// Early revisions do not reference y_H and survive.
	if math.IsNaN(ds.Revision(2, 0)) || math.IsNaN(ds.Revision(3, 0)) {
		t.Error("r_2 and r_3 should survive")
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	p := fixturePanel(2)
	period := model.NewPeriod(2010, 1)
	before := p.Value(period, 2)

	d, _ := NewDeriver(4)
	ds := d.Derive(p)
	ds.Y[1][0] = -999

	if got := p.Value(period, 2); got != before {
		t.Errorf("input panel mutated: %v != %v", got, before)
	}
}

func TestMaskBeforeDerive(t *testing.T) {
	p := fixturePanel(4)
	base := model.NewPeriod(2010, 1)
	p.MaskPeriods(base.Add(1), base.Add(2))

	d, _ := NewDeriver(4)
	ds := d.Derive(p)

	for h := 2; h <= 4; h++ {
		if !math.IsNaN(ds.Revision(h, 1)) || !math.IsNaN(ds.Revision(h, 2)) {
			t.Errorf("masked periods should have no revisions at h=%d", h)
		}
	}
	if math.IsNaN(ds.Revision(2, 0)) || math.IsNaN(ds.Revision(2, 3)) {
		t.Error("unmasked periods should keep their revisions")
	}
}

func TestNewDeriverValidation(t *testing.T) {
	if _, err := NewDeriver(1); err == nil {
		t.Error("final horizon 1 should be rejected")
	}
	if _, err := NewDeriver(2); err != nil {
		t.Errorf("final horizon 2 should be accepted: %v", err)
	}
}

func TestLag(t *testing.T) {
	series := []float64{1, 2, 3, 4}
	got := Lag(series, 2)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Error("first k lagged entries should be NaN")
	}
	if got[2] != 1 || got[3] != 2 {
		t.Errorf("Lag = %v", got)
	}
}
