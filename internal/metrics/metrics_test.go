package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/internal/tensor"
)

func TestMeanRelativeNorm2ErrorSelfIsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, shape := range []tensor.Shape{{5, 3}, {4, 2, 6}, {3, 4, 4, 2}} {
		t.Run(shape.String(), func(t *testing.T) {
			x := tensor.Uniform(shape, 1, 2, rng)
			got, err := MeanRelativeNorm2Error(x, x.Clone())
			require.NoError(t, err)
			assert.Equal(t, 0.0, got)
		})
	}
}

func TestMeanRelativeNorm2ErrorValue(t *testing.T) {
	expected := tensor.MustFromSlice([]float64{
		3, 4,
		1, 0,
	}, tensor.Shape{2, 2})
	predicted := tensor.MustFromSlice([]float64{
		3, 4.5, // |(0, 0.5)| / 5 = 0.1
		1.3, 0, // 0.3 / 1
	}, tensor.Shape{2, 2})

	got, err := MeanRelativeNorm2Error(expected, predicted)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got, 1e-12)
}

func TestMeanRelativeNorm2ErrorRankIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	e2 := tensor.Uniform(tensor.Shape{6, 8}, -1, 1, rng)
	p2 := tensor.Uniform(tensor.Shape{6, 8}, -1, 1, rng)

	want, err := MeanRelativeNorm2Error(e2, p2)
	require.NoError(t, err)

	e4, err := tensor.AddEmptyDimensions(e2, false, true, true, false)
	require.NoError(t, err)
	p4, err := tensor.AddEmptyDimensions(p2, false, true, true, false)
	require.NoError(t, err)

	got, err := MeanRelativeNorm2Error(e4, p4)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-15)
}

func TestMeanRelativeNorm2ErrorArguments(t *testing.T) {
	a := tensor.Ones(tensor.Shape{3, 2})

	_, err := MeanRelativeNorm2Error(a, tensor.Ones(tensor.Shape{2, 2}))
	assert.ErrorIs(t, err, tensor.ErrArgument)

	_, err = MeanRelativeNorm2Error(a, tensor.Ones(tensor.Shape{3, 1, 2}))
	assert.ErrorIs(t, err, tensor.ErrArgument)

	_, err = MeanRelativeNorm2Error(tensor.Ones(tensor.Shape{3}), tensor.Ones(tensor.Shape{3}))
	assert.ErrorIs(t, err, tensor.ErrArgument)

	five := tensor.Ones(tensor.Shape{1, 1, 1, 1, 1})
	_, err = MeanRelativeNorm2Error(five, five)
	assert.ErrorIs(t, err, tensor.ErrArgument)
}

func TestMeanRelativeNorm2ErrorZeroNorm(t *testing.T) {
	expected := tensor.MustFromSlice([]float64{1, 1, 0, 0}, tensor.Shape{2, 2})
	_, err := MeanRelativeNorm2Error(expected, tensor.Ones(tensor.Shape{2, 2}))
	assert.ErrorIs(t, err, ErrZeroNorm)
	assert.Contains(t, err.Error(), "sample 1")
}

func TestMeanSquaredError(t *testing.T) {
	expected := tensor.MustFromSlice([]float64{0, 0, 0, 0}, tensor.Shape{2, 2})
	predicted := tensor.MustFromSlice([]float64{1, -1, 2, 0}, tensor.Shape{2, 2})

	mse, err := MeanSquaredError(expected, predicted)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, mse, 1e-12)

	rmse, err := RootMeanSquaredError(expected, predicted)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1.5), rmse, 1e-12)

	_, err = MeanSquaredError(expected, tensor.Ones(tensor.Shape{4}))
	assert.ErrorIs(t, err, tensor.ErrArgument)
}
