package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/internal/evaluate"
	"github.com/born-ml/surrogate/internal/nn"
	"github.com/born-ml/surrogate/internal/surrogate"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	s := cfg.Surrogate
	assert.Equal(t, 10, s.CAE.BatchSize)
	assert.Equal(t, 40, s.CAE.Epochs)
	assert.InDelta(t, 5e-4, s.CAE.LearningRate, 1e-15)
	assert.Equal(t, 5, s.CAE.KernelSize)
	assert.Equal(t, nn.Same, s.CAE.Padding)
	assert.Equal(t, []int{128, 64, 32, 16}, s.CAE.EncoderFilters)
	assert.Equal(t, []int{32, 64, 128}, s.CAE.DecoderFilters)
	assert.Equal(t, 20, s.FFNN.BatchSize)
	assert.Equal(t, 3000, s.FFNN.Epochs)
	assert.Equal(t, 6, s.FFNN.HiddenLayers)
	assert.Equal(t, 64, s.FFNN.HiddenSize)
	assert.InDelta(t, 1e-4, s.FFNN.LearningRate, 1e-15)
	assert.Equal(t, 8, s.LatentSize)
	assert.Equal(t, 10, cfg.Evaluation.Trials)
	assert.Nil(t, cfg.Logger())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
surrogate:
  latent_size: 4
  cae:
    encoder_filters: [8, 4]
    padding: valid
  ffnn:
    epochs: 500
    activation: tanh
split:
  order: contiguous
  test_fraction: 0.25
evaluation:
  trials: 3
  workers: 2
log:
  verbose: true
`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Surrogate.LatentSize)
	assert.Equal(t, []int{8, 4}, cfg.Surrogate.CAE.EncoderFilters)
	assert.Equal(t, nn.Valid, cfg.Surrogate.CAE.Padding)
	assert.Equal(t, 500, cfg.Surrogate.FFNN.Epochs)
	assert.Equal(t, nn.Tanh, cfg.Surrogate.FFNN.Activation)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Surrogate.CAE.KernelSize)
	assert.Equal(t, 64, cfg.Surrogate.FFNN.HiddenSize)
	assert.Equal(t, "errors.txt", cfg.Evaluation.OutputPrefix)
	assert.NotNil(t, cfg.Logger())

	s, err := cfg.Splitter(5)
	require.NoError(t, err)
	assert.False(t, s.Config().Order.IsInterleaved())
	assert.Equal(t, 0.25, s.Config().MinTestFraction)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "surrogate:\n  latnt_size: 3\n",
		"bad yaml":      "surrogate: [",
		"latent":        "surrogate:\n  latent_size: 0\n",
		"order":         "split:\n  order: random\n",
		"fractions":     "split:\n  test_fraction: 0.6\n  validation_fraction: 0.5\n",
		"trials":        "evaluation:\n  trials: 0\n",
		"no output":     "evaluation:\n  output_prefix: \"\"\n",
		"stride":        "surrogate:\n  cae:\n    strides: 2\n",
		"type mismatch": "evaluation:\n  trials: many\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestInterleavedSplitterSeedsPerTrial(t *testing.T) {
	cfg := Default()
	cfg.Split.Seed = 10
	for trial := 0; trial < 3; trial++ {
		s, err := cfg.Splitter(trial)
		require.NoError(t, err)
		assert.True(t, s.Config().Order.IsInterleaved())
		assert.Equal(t, int64(10+trial), s.Config().Order.Seed())
	}
}

func TestLoadAndMarshal(t *testing.T) {
	cfg := Default()
	cfg.Surrogate.LatentSize = 3
	cfg.Evaluation.Trials = 7
	data, err := Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEvaluatorWiring(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Evaluation.Trials = 2
	cfg.Evaluation.OutputPrefix = filepath.Join(dir, "errors.txt")

	ev, closeLog, err := cfg.Evaluator()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, closeLog()) })
	assert.Equal(t, 2, ev.Trials)
	require.IsType(t, &evaluate.FileLog{}, ev.Log)

	m, err := ev.NewSurrogate(0)
	require.NoError(t, err)
	assert.Equal(t, []string{surrogate.CAEError, surrogate.SurrogateError}, m.ErrorNames())

	cfg.Evaluation.SQLitePath = filepath.Join(dir, "errors.db")
	ev, closeDB, err := cfg.Evaluator()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, closeDB()) })
	require.IsType(t, &evaluate.SQLiteLog{}, ev.Log)
}
