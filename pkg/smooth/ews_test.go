package smooth

import (
	"math"
	"testing"
)

func TestNewStateValidatesDecay(t *testing.T) {
	for _, decay := range []float64{-0.1, 0, 1, 1.5} {
		if _, err := NewState(decay); err == nil {
			t.Errorf("NewState(%g) expected error", decay)
		}
	}
	if _, err := NewState(0.5); err != nil {
		t.Errorf("NewState(0.5) unexpected error: %v", err)
	}
}

func TestUpdateRecursion(t *testing.T) {
	s, err := NewState(0.5)
	if err != nil {
		t.Fatal(err)
	}

	// First observation primes the state at its own value.
	if got := s.Update(1); got != 1 {
		t.Errorf("first update = %v, want 1", got)
	}
	// Missing observation carries the previous value forward.
	if got := s.Update(math.NaN()); got != 1 {
		t.Errorf("carry-forward = %v, want 1", got)
	}
	// Observed: S = 0.5*1 + 3. The carry-forward step must not have
	// applied an extra decay.
	if got := s.Update(3); got != 3.5 {
		t.Errorf("update = %v, want 3.5", got)
	}
}

func TestUpdateUnprimed(t *testing.T) {
	s, _ := NewState(0.3)

	if got := s.Update(math.NaN()); !math.IsNaN(got) {
		t.Errorf("unprimed update on missing = %v, want NaN", got)
	}
	if s.Primed() {
		t.Error("state should not be primed by a missing value")
	}
	if !math.IsNaN(s.Value()) {
		t.Error("unprimed Value should be NaN")
	}
}

func TestBuild(t *testing.T) {
	series := []float64{math.NaN(), 2, math.NaN(), 4}
	got, err := Build(series, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{math.NaN(), 2, 2, 5} // 0.5*2 + 4
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("Build[%d] = %v, want NaN", i, got[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Errorf("Build[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResumeMatchesBatch(t *testing.T) {
	series := []float64{1, 2, math.NaN(), 3, 4}

	batch, err := Build(series, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	// Run the first half, save the state, resume, run the rest.
	first, _ := NewState(0.5)
	for _, x := range series[:3] {
		first.Update(x)
	}

	resumed, err := Resume(0.5, first.Value())
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range series[3:] {
		got := resumed.Update(x)
		if got != batch[3+i] {
			t.Errorf("resumed[%d] = %v, batch gave %v", 3+i, got, batch[3+i])
		}
	}
}

func TestBuildAll(t *testing.T) {
	series := [][]float64{
		{1, 2, 3},
		{math.NaN(), 5, math.NaN()},
	}

	got, err := BuildAll(series, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("BuildAll returned %d series, want 2", len(got))
	}

	if got[0][2] != 0.5*(0.5*1+2)+3 {
		t.Errorf("series 0 final = %v", got[0][2])
	}
	if !math.IsNaN(got[1][0]) || got[1][1] != 5 || got[1][2] != 5 {
		t.Errorf("series 1 = %v", got[1])
	}

	if _, err := BuildAll(series, 2); err == nil {
		t.Error("invalid decay should fail before any goroutine runs")
	}
}
