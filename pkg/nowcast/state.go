// Package nowcast trains per-horizon correction models on a training
// window, applies them out of sample, and forecast-combines raw and
// corrected nowcasts with a real-time expanding-window weight.
package nowcast

import (
	"github.com/andeanstats/gdprev/pkg/panel"
	"github.com/andeanstats/gdprev/pkg/smooth"
)

// States holds the exponentially-smoothed release and revision series per
// horizon, the regressors of the correction model.
type States struct {
	Decay float64
	SY    [][]float64 // smoothed y_h, [h-1][t]
	SR    [][]float64 // smoothed r_h, [h-1][t]
}

// BuildStates smooths every release and revision series. Each series is
// sequential in time; the horizons run concurrently.
func BuildStates(ds *panel.Dataset, decay float64) (*States, error) {
	sy, err := smooth.BuildAll(ds.Y, decay)
	if err != nil {
		return nil, err
	}
	sr, err := smooth.BuildAll(ds.R, decay)
	if err != nil {
		return nil, err
	}
	return &States{Decay: decay, SY: sy, SR: sr}, nil
}
