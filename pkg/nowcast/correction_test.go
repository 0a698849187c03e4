package nowcast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andeanstats/gdprev/pkg/model"
	"github.com/andeanstats/gdprev/pkg/panel"
)

// trainingDataset builds an H=3 dataset over n months with enough
// independent variation that every correction design matrix is full rank.
func trainingDataset(t *testing.T, n int) *panel.Dataset {
	t.Helper()

	p := model.NewReleasePanel(3)
	base := model.NewPeriod(2000, 1)
	for tt := 0; tt < n; tt++ {
		period := base.Add(tt)
		ft := float64(tt)
		for h := 1; h <= 3; h++ {
			fh := float64(h)
			v := 2 + 0.4*math.Sin(ft/2+fh) + 0.1*math.Cos(3*ft+fh) + 0.05*fh
			p.Set(period, h, v)
		}
	}

	d, err := panel.NewDeriver(3)
	require.NoError(t, err)
	return d.Derive(p)
}

func TestEngineFitAndApply(t *testing.T) {
	ds := trainingDataset(t, 60)
	st, err := BuildStates(ds, 0.5)
	require.NoError(t, err)

	cutoff := ds.Periods[47]
	split := panel.NewSplit(cutoff)
	engine := NewEngine(Config{HACLag: 6, MinTrainObs: 24}, split)

	require.NoError(t, engine.Fit(ds, st))
	require.NotNil(t, engine.Model(1))
	require.NotNil(t, engine.Model(2))

	// Coefficients are frozen once fit.
	assert.ErrorIs(t, engine.Fit(ds, st), ErrAlreadyFitted)

	corrections, err := engine.Apply(ds, st)
	require.NoError(t, err)
	require.NotEmpty(t, corrections)

	for _, c := range corrections {
		assert.False(t, c.InTrain, "Apply must return evaluation rows only")
		assert.True(t, c.Period > cutoff, "period %s is not after cutoff %s", c.Period, cutoff)
		assert.InDelta(t, c.Raw+c.Predicted, c.Corrected, 1e-12)
	}
}

func TestEnginePredictAllCoversBothWindows(t *testing.T) {
	ds := trainingDataset(t, 60)
	st, err := BuildStates(ds, 0.5)
	require.NoError(t, err)

	split := panel.NewSplit(ds.Periods[47])
	engine := NewEngine(Config{HACLag: 6, MinTrainObs: 24}, split)
	require.NoError(t, engine.Fit(ds, st))

	all, err := engine.PredictAll(ds, st)
	require.NoError(t, err)

	var train, eval int
	for _, c := range all {
		if c.InTrain {
			train++
		} else {
			eval++
		}
	}
	assert.Greater(t, train, 0, "training-window corrections seed the combination weight")
	assert.Greater(t, eval, 0)
}

func TestEngineRequiresFit(t *testing.T) {
	ds := trainingDataset(t, 40)
	st, err := BuildStates(ds, 0.5)
	require.NoError(t, err)

	engine := NewEngine(DefaultConfig(), panel.NewSplit(ds.Periods[30]))
	_, err = engine.PredictAll(ds, st)
	assert.Error(t, err)
}

func TestEngineSkipsShortTrainingWindow(t *testing.T) {
	ds := trainingDataset(t, 30)
	st, err := BuildStates(ds, 0.5)
	require.NoError(t, err)

	// Only 10 training periods against a 24-observation floor: every
	// horizon is skipped but the engine still transitions to Trained.
	engine := NewEngine(Config{HACLag: 6, MinTrainObs: 24}, panel.NewSplit(ds.Periods[9]))
	require.NoError(t, engine.Fit(ds, st))

	assert.Nil(t, engine.Model(1))
	assert.Nil(t, engine.Model(2))

	corrections, err := engine.Apply(ds, st)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}

func TestRegressorNamesPerHorizon(t *testing.T) {
	assert.Equal(t, []string{"Sy", "L1.e"}, regressorNames(1))
	assert.Equal(t, []string{"Sy", "L1.e", "Sr"}, regressorNames(2))
	assert.Equal(t, []string{"Sy", "L1.e", "Sr", "L1.Sr"}, regressorNames(3))
}
