// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package surrogate_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/nn"
	"github.com/born-ml/surrogate/surrogate"
	"github.com/born-ml/surrogate/tensor"
)

func smallConfig() surrogate.Config {
	cfg := surrogate.DefaultConfig()
	cfg.CAE.BatchSize = 8
	cfg.CAE.Epochs = 2
	cfg.CAE.KernelSize = 3
	cfg.CAE.EncoderFilters = []int{4}
	cfg.CAE.DecoderFilters = []int{4}
	cfg.FFNN.BatchSize = 8
	cfg.FFNN.Epochs = 5
	cfg.FFNN.HiddenLayers = 1
	cfg.FFNN.HiddenSize = 8
	cfg.FFNN.Activation = nn.Tanh
	cfg.LatentSize = 2
	cfg.Seed = 3
	return cfg
}

func dataset(n int) (params, solutions *tensor.Array[float64]) {
	rng := rand.New(rand.NewSource(5))
	params = tensor.Uniform(tensor.Shape{n, 2}, 0, 1, rng)
	rows := make([][]float64, n)
	for i := range rows {
		a, b := params.At(i, 0), params.At(i, 1)
		rows[i] = []float64{1 + a, 1 + b, 2 + a*b, 3 - a}
	}
	solutions, _ = tensor.FromRows(rows)
	return params, solutions
}

// TestPublicWorkflow trains, predicts and evaluates through the public packages.
func TestPublicWorkflow(t *testing.T) {
	params, solutions := dataset(30)

	m, err := surrogate.NewCAEFFNN(smallConfig())
	require.NoError(t, err)

	_, err = m.Predict([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, surrogate.ErrNotTrained)

	splitter, err := surrogate.NewSplitter(surrogate.SplitConfig{
		MinTestFraction: 0.2,
		Order:           surrogate.Interleaved(9),
	})
	require.NoError(t, err)

	errs, err := m.TrainAndEvaluate(context.Background(), params, solutions, splitter)
	require.NoError(t, err)
	assert.Contains(t, errs, surrogate.CAEError)
	assert.Contains(t, errs, surrogate.SurrogateError)

	out, err := m.Predict([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

// TestPublicEvaluator runs two latent regressor trials into a file log and
// summarizes them.
func TestPublicEvaluator(t *testing.T) {
	params, _ := dataset(20)
	rows := make([][]float64, params.NumSamples())
	for i := range rows {
		rows[i] = []float64{1 + params.At(i, 0), 2 - params.At(i, 1)}
	}
	latent, err := tensor.FromRows(rows)
	require.NoError(t, err)
	prefix := filepath.Join(t.TempDir(), "errors.txt")
	fl := surrogate.NewFileLog(prefix)

	cfg := smallConfig()
	ev := &surrogate.Evaluator{
		NewSurrogate: func(int) (surrogate.Model, error) { return surrogate.NewFFNN(cfg) },
		Trials:       2,
		Workers:      2,
		Log:          fl,
	}
	results, err := ev.RunExperiments(context.Background(), params, latent)
	require.NoError(t, err)
	require.Len(t, results, 2)

	summaries, err := ev.Summaries()
	require.NoError(t, err)
	s, ok := summaries[surrogate.FFNNError]
	require.True(t, ok)
	assert.Equal(t, 2, s.Count)

	fromFile, err := surrogate.SummarizeFile(fl.Path(surrogate.FFNNError))
	require.NoError(t, err)
	assert.Equal(t, s, fromFile)
}

// TestPublicDataPlumbing exercises splitting, normalization and metrics.
func TestPublicDataPlumbing(t *testing.T) {
	x, err := tensor.FromRows([][]float64{{0, 10}, {5, 20}, {10, 30}, {2, 12}, {8, 28}})
	require.NoError(t, err)

	xs, _, err := surrogate.DefaultSplitter().SplitPair(x, x)
	require.NoError(t, err)
	assert.Equal(t, 4, xs.Training.NumSamples())
	assert.Equal(t, 1, xs.Test.NumSamples())

	p, err := surrogate.FitNormalization(surrogate.MinMax, x, surrogate.PerColumn)
	require.NoError(t, err)
	scaled, err := p.Normalize(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scaled.Row(0))
	assert.Equal(t, []float64{1, 1}, scaled.Row(2))

	back, err := p.Denormalize(scaled)
	require.NoError(t, err)
	e, err := surrogate.MeanRelativeNorm2Error(x, back)
	require.NoError(t, err)
	assert.InDelta(t, 0, e, 1e-12)

	kind, err := surrogate.ParseNormalization("zscore")
	require.NoError(t, err)
	assert.Equal(t, surrogate.ZScore, kind)
}
