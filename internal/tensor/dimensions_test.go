package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEmptyDimensionsPlacesData(t *testing.T) {
	a := Zeros[float64](Shape{3, 4})
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			a.Set(float64(10*i+j), i, j)
		}
	}

	b, err := AddEmptyDimensions(a, false, true, true, false)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 1, 1, 4}, b.Shape())
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, a.At(i, j), b.At(i, 0, 0, j))
		}
	}
}

func TestAddEmptyDimensionsFlagCount(t *testing.T) {
	a := Zeros[float64](Shape{3, 4})

	tests := []struct {
		name  string
		flags []bool
	}{
		{"too few flagged", []bool{false, true, false, false}},
		{"too many flagged", []bool{true, true, true, false}},
		{"target rank below source", []bool{false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddEmptyDimensions(a, tt.flags...)
			assert.ErrorIs(t, err, ErrArgument)
		})
	}
}

func TestAddEmptyDimensionsNoop(t *testing.T) {
	a := MustFromSlice([]float64{1, 2}, Shape{2})
	b, err := AddEmptyDimensions(a, false)
	require.NoError(t, err)
	assert.Equal(t, a.Shape(), b.Shape())
	assert.Equal(t, a.Data(), b.Data())
}

func TestEmptyDimensionsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tests := []struct {
		shape Shape
		flags []bool
	}{
		{Shape{3, 4}, []bool{false, true, true, false}},
		{Shape{5, 2}, []bool{true, false, false}},
		{Shape{2, 3, 4}, []bool{false, false, false, true, true}},
		{Shape{6}, []bool{false, true}},
		{Shape{0, 8}, []bool{false, true, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			a := Randn(tt.shape, rng)
			lifted, err := AddEmptyDimensions(a, tt.flags...)
			require.NoError(t, err)
			back, err := RemoveEmptyDimensionFlags(lifted, tt.flags...)
			require.NoError(t, err)

			assert.Equal(t, a.Shape(), back.Shape())
			assert.Equal(t, a.Data(), back.Data())
		})
	}
}

func TestEmptyDimensionsRoundTripIntegers(t *testing.T) {
	a := MustFromSlice([]int64{1, -2, 3, -4, 5, -6}, Shape{2, 3})
	lifted, err := AddEmptyDimensions(a, true, false, true, false)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2, 1, 3}, lifted.Shape())

	back, err := RemoveEmptyDimensions(lifted, 0, 2)
	require.NoError(t, err)
	assert.True(t, EqualValues(a, back))
	assert.Equal(t, a.Shape(), back.Shape())
}

func TestRemoveEmptyDimensionsRejectsNonEmpty(t *testing.T) {
	a := Zeros[float64](Shape{3, 1, 2, 4})

	_, err := RemoveEmptyDimensions(a, 2)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = RemoveEmptyDimensions(a, 4)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = RemoveEmptyDimensions(a, 1, 1)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = RemoveEmptyDimensionFlags(a, false, true)
	assert.ErrorIs(t, err, ErrArgument)

	b, err := RemoveEmptyDimensions(a, 1)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2, 4}, b.Shape())
}

func TestRemoveAllEmptyDimensions(t *testing.T) {
	a := MustFromSlice([]float64{4.5}, Shape{1, 1, 1})
	s := RemoveAllEmptyDimensions(a)
	assert.Equal(t, 0, s.Rank())

	v, err := Scalar(a)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = Scalar(Zeros[float64](Shape{2}))
	assert.ErrorIs(t, err, ErrArgument)

	b := RemoveAllEmptyDimensions(Zeros[float64](Shape{5, 1, 1, 8}))
	assert.Equal(t, Shape{5, 8}, b.Shape())
}
