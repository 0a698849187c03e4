package nowcast

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/panel"
	"github.com/andeanstats/gdprev/pkg/regress"
)

// ErrLookahead marks a fit that would use observations after the training
// cutoff. This is a logic defect, not a data condition: it invalidates the
// evaluation and fails loudly.
var ErrLookahead = errors.New("lookahead violation")

// ErrAlreadyFitted marks an attempt to refit a frozen engine.
var ErrAlreadyFitted = errors.New("correction engine already fitted")

// Config holds correction-engine configuration.
type Config struct {
	HACLag      int // Newey-West lag truncation for the training fit
	MinTrainObs int // minimum training observations per horizon
}

// DefaultConfig returns sensible defaults for monthly data.
func DefaultConfig() Config {
	return Config{
		HACLag:      6,
		MinTrainObs: 24,
	}
}

// Model is one horizon's frozen correction model.
type Model struct {
	Horizon int
	Fit     *regress.Fit
}

// Correction is a corrected nowcast for one (period, horizon) cell.
type Correction struct {
	Horizon   int
	Period    model.Period
	Raw       float64 // the published release y_h
	Predicted float64 // model-predicted error ê_h
	Corrected float64 // y_h + ê_h
	InTrain   bool
}

// Engine owns the per-horizon correction models. Lifecycle:
// Untrained -> Trained (Fit) -> Applied (Apply); coefficients are frozen
// once fit and there is no transition back within a run.
type Engine struct {
	cfg    Config
	split  panel.Split
	models map[int]*Model
	fitted bool
}

// NewEngine creates an untrained engine for the given train/eval split.
func NewEngine(cfg Config, split panel.Split) *Engine {
	if cfg.MinTrainObs <= 0 {
		cfg.MinTrainObs = 24
	}
	return &Engine{
		cfg:    cfg,
		split:  split,
		models: make(map[int]*Model),
	}
}

// regressors lists the correction-model terms for one horizon: horizon 1
// uses the smoothed release and the lagged error; horizon 2 adds the
// smoothed revision; horizons >= 3 add its lag. Terms a horizon cannot
// support are omitted, never defaulted.
func regressorNames(h int) []string {
	names := []string{"Sy", "L1.e"}
	if h >= 2 {
		names = append(names, "Sr")
	}
	if h >= 3 {
		names = append(names, "L1.Sr")
	}
	return names
}

// buildFrame assembles the training frame for one horizon with evaluation
// rows masked out, then asserts the train/eval boundary.
func (e *Engine) buildFrame(ds *panel.Dataset, st *States, h int) (*regress.Frame, error) {
	dep := make([]float64, ds.Len())
	copy(dep, ds.E[h-1])
	for t, p := range ds.Periods {
		if !e.split.IsTrain(p) {
			dep[t] = math.NaN()
		}
	}

	f, err := regress.NewFrame(fmt.Sprintf("correction h=%d", h), ds.Periods, dep)
	if err != nil {
		return nil, err
	}
	f.AddIntercept()
	for _, name := range regressorNames(h) {
		var col []float64
		switch name {
		case "Sy":
			col = st.SY[h-1]
		case "L1.e":
			col = panel.Lag(ds.E[h-1], 1)
		case "Sr":
			col = st.SR[h-1]
		case "L1.Sr":
			col = panel.Lag(st.SR[h-1], 1)
		}
		if err := f.Add(name, col); err != nil {
			return nil, err
		}
	}

	// The masking above already removes evaluation rows; the assertion
	// guards against a regression in that logic, since a silent leak
	// here would invalidate every downstream statistic.
	for t, p := range ds.Periods {
		if !e.split.IsTrain(p) && !math.IsNaN(dep[t]) {
			return nil, fmt.Errorf("%w: period %s leaked into training frame for horizon %d",
				ErrLookahead, p, h)
		}
	}

	return f, nil
}

// Fit estimates the correction model for every horizon on the training
// window. Horizons with fewer than MinTrainObs valid training rows are
// skipped with a warning; the engine still transitions to Trained.
func (e *Engine) Fit(ds *panel.Dataset, st *States) error {
	if e.fitted {
		return ErrAlreadyFitted
	}

	for h := 1; h < ds.H; h++ {
		frame, err := e.buildFrame(ds, st, h)
		if err != nil {
			return err
		}

		fit, err := regress.OLS(frame, regress.Options{
			HACLag: e.cfg.HACLag,
			MinObs: e.cfg.MinTrainObs,
		})
		if err != nil {
			if errors.Is(err, regress.ErrInsufficientData) {
				log.Printf("Skipping correction model for horizon %d: %v", h, err)
				continue
			}
			if errors.Is(err, regress.ErrDegenerate) {
				log.Printf("Degenerate correction model for horizon %d: %v", h, err)
				continue
			}
			return err
		}

		e.models[h] = &Model{Horizon: h, Fit: fit}
	}

	e.fitted = true
	return nil
}

// Model returns the frozen model for a horizon, nil when the horizon was
// skipped during training.
func (e *Engine) Model(h int) *Model {
	return e.models[h]
}

// predict reconstructs the model-implied error for one row. The lagged
// dependent term is replaced by its implied long-run level, so the
// prediction needs only the smoothed states:
//
//	ê = (const + theta*Sy + gamma*Sr + rho_r*L1.Sr) / (1 - rho_e)
//
// where rho_e is the coefficient on the lagged error.
func (m *Model) predict(st *States, ds *panel.Dataset, t int) float64 {
	h := m.Horizon

	num := m.Fit.Value("const")
	if v, ok := m.Fit.Coefficient("Sy"); ok {
		num += v.Value * st.SY[h-1][t]
	}
	if v, ok := m.Fit.Coefficient("Sr"); ok {
		num += v.Value * st.SR[h-1][t]
	}
	if v, ok := m.Fit.Coefficient("L1.Sr"); ok {
		lag := panel.Lag(st.SR[h-1], 1)
		num += v.Value * lag[t]
	}

	denom := 1.0
	if v, ok := m.Fit.Coefficient("L1.e"); ok {
		denom = 1 - v.Value
	}
	if math.Abs(denom) < 1e-8 {
		return math.NaN()
	}
	return num / denom
}

// PredictAll produces predicted errors and corrected nowcasts for every
// period with an observed release, across training and evaluation windows.
// The training-window rows feed the expanding combination weight; only
// evaluation rows enter forecast evaluation.
func (e *Engine) PredictAll(ds *panel.Dataset, st *States) ([]Correction, error) {
	if !e.fitted {
		return nil, errors.New("correction engine not fitted")
	}

	var out []Correction
	for h := 1; h < ds.H; h++ {
		m := e.models[h]
		if m == nil {
			continue
		}
		for t, p := range ds.Periods {
			raw := ds.Y[h-1][t]
			if math.IsNaN(raw) {
				continue
			}
			pred := m.predict(st, ds, t)
			if math.IsNaN(pred) {
				continue
			}
			out = append(out, Correction{
				Horizon:   h,
				Period:    p,
				Raw:       raw,
				Predicted: pred,
				Corrected: raw + pred,
				InTrain:   e.split.IsTrain(p),
			})
		}
	}
	return out, nil
}

// Apply produces corrected nowcasts for the evaluation window only.
func (e *Engine) Apply(ds *panel.Dataset, st *States) ([]Correction, error) {
	all, err := e.PredictAll(ds, st)
	if err != nil {
		return nil, err
	}

	var out []Correction
	for _, c := range all {
		if !c.InTrain {
			out = append(out, c)
		}
	}
	return out, nil
}
