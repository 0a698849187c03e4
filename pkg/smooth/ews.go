// Package smooth builds the exponentially-weighted state series used as
// nowcast-correction regressors.
package smooth

import (
	"fmt"
	"math"
)

// State is a restartable exponential-smoothing accumulator. The update
// rule is the non-normalized recursion
//
//	S[t] = decay*S[t-1] + x[t]   when x[t] is observed
//	S[t] = S[t-1]                when x[t] is missing (carry-forward)
//
// initialized at the first observed value. This is deliberately not the
// standard EWMA (there is no (1-decay) weight on the new observation); the
// rule is fixed here so no deployment mixes the two recursions.
//
// The recursion is strictly sequential: each step depends on the previous
// one, so a single State must never be fed observations out of
// chronological order.
type State struct {
	Decay float64

	value  float64
	primed bool
}

// NewState creates a smoothing state with the given decay in (0,1).
func NewState(decay float64) (*State, error) {
	if decay <= 0 || decay >= 1 {
		return nil, fmt.Errorf("decay must be in (0,1), got %g", decay)
	}
	return &State{Decay: decay}, nil
}

// Resume restores a state saved from a previous run, so real-time use can
// continue a series without batch recomputation.
func Resume(decay, value float64) (*State, error) {
	s, err := NewState(decay)
	if err != nil {
		return nil, err
	}
	s.value = value
	s.primed = true
	return s, nil
}

// Update advances the state by one period and returns the new smoothed
// value. A NaN x is treated as missing: the previous value carries forward
// and the decay step is skipped. Before the first observed value the state
// is unprimed and Update returns NaN.
func (s *State) Update(x float64) float64 {
	if math.IsNaN(x) {
		if !s.primed {
			return math.NaN()
		}
		return s.value
	}

	if !s.primed {
		s.value = x
		s.primed = true
		return s.value
	}

	s.value = s.Decay*s.value + x
	return s.value
}

// Value returns the current smoothed value, NaN if unprimed.
func (s *State) Value() float64 {
	if !s.primed {
		return math.NaN()
	}
	return s.value
}

// Primed reports whether the state has seen an observed value.
func (s *State) Primed() bool {
	return s.primed
}

// Build runs the recursion over a full series in order and returns the
// smoothed series of the same length. Entries before the first observed
// value are NaN.
func Build(series []float64, decay float64) ([]float64, error) {
	state, err := NewState(decay)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(series))
	for t, x := range series {
		out[t] = state.Update(x)
	}
	return out, nil
}
