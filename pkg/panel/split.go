package panel

import (
	"fmt"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Split partitions target periods into a training window (periods at or
// before the cutoff) and an evaluation window (periods after it). The
// cutoff is fixed before any model fitting; no evaluation-period
// observation may influence a parameter estimated on the training window.
type Split struct {
	Cutoff model.Period
}

// NewSplit creates a train/eval split at the given cutoff period.
func NewSplit(cutoff model.Period) Split {
	return Split{Cutoff: cutoff}
}

// IsTrain reports whether the period belongs to the training window.
func (s Split) IsTrain(p model.Period) bool {
	return p <= s.Cutoff
}

// Indices returns the period positions of the training and evaluation
// windows in chronological order.
func (s Split) Indices(ds *Dataset) (train, eval []int) {
	for t, p := range ds.Periods {
		if s.IsTrain(p) {
			train = append(train, t)
		} else {
			eval = append(eval, t)
		}
	}
	return train, eval
}

// CheckTrainOnly verifies that every period in the given positions lies in
// the training window. It is the assertion at the train/eval boundary: a
// violation invalidates the evaluation and must fail loudly.
func (s Split) CheckTrainOnly(ds *Dataset, positions []int) error {
	for _, t := range positions {
		if !s.IsTrain(ds.Periods[t]) {
			return fmt.Errorf("lookahead violation: period %s is after the training cutoff %s",
				ds.Periods[t], s.Cutoff)
		}
	}
	return nil
}
