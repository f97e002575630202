package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{3, 2})
	require.NoError(t, err)

	assert.Equal(t, Shape{3, 2}, a.Shape())
	assert.Equal(t, 2, a.Rank())
	assert.Equal(t, 3, a.NumSamples())
	assert.Equal(t, []int{2, 1}, a.Strides())
	assert.Equal(t, 6.0, a.At(2, 1))
	assert.Equal(t, Float64, a.DType())

	_, err = FromSlice([]float64{1, 2, 3}, Shape{2, 2})
	assert.ErrorIs(t, err, ErrArgument)

	_, err = FromSlice([]float64{}, Shape{-1})
	assert.ErrorIs(t, err, ErrArgument)
}

func TestFromSliceCopiesInput(t *testing.T) {
	data := []int32{1, 2, 3}
	a := MustFromSlice(data, Shape{3})
	data[0] = 100
	assert.Equal(t, int32(1), a.At(0))
}

func TestShapeIsCopied(t *testing.T) {
	a := Zeros[float64](Shape{2, 3})
	s := a.Shape()
	s[0] = 7
	assert.Equal(t, Shape{2, 3}, a.Shape())
}

func TestZeroLengthDimension(t *testing.T) {
	a := Zeros[float64](Shape{0, 4})
	assert.Equal(t, 0, a.NumElements())
	assert.Equal(t, 0, a.NumSamples())
	assert.Empty(t, a.Rows())
}

func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		ok    bool
	}{
		{"scalar", Shape{}, true},
		{"matrix", Shape{3, 2}, true},
		{"zero length", Shape{0, 1 << 40, 1 << 40}, true},
		{"negative", Shape{2, -1}, false},
		{"overflow", Shape{65536, 65536, 65536, 65536}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrArgument)
		})
	}

	_, err := FromSlice[float64](nil, Shape{65536, 65536, 65536, 65536})
	assert.ErrorIs(t, err, ErrArgument)
}

func TestFromRows(t *testing.T) {
	a, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, a.Shape())
	assert.Equal(t, []float64{3, 4}, a.Row(1))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, a.Rows())

	_, err = FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrArgument)

	_, err = FromRows[float64](nil)
	assert.ErrorIs(t, err, ErrArgument)
}

func TestSetAndClone(t *testing.T) {
	a := Zeros[float64](Shape{2, 2})
	a.Set(5, 1, 0)
	b := a.Clone()
	a.Set(9, 1, 0)

	assert.Equal(t, 9.0, a.At(1, 0))
	assert.Equal(t, 5.0, b.At(1, 0))
}

func TestAtPanicsOutOfBounds(t *testing.T) {
	a := Zeros[float64](Shape{2, 2})
	assert.Panics(t, func() { a.At(2, 0) })
	assert.Panics(t, func() { a.At(0) })
}

func TestReshape(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b, err := a.Reshape(3, 2)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
	assert.Equal(t, 4.0, b.At(1, 1))

	_, err = a.Reshape(4, 2)
	assert.ErrorIs(t, err, ErrArgument)
}

func TestRandomCreationIsSeeded(t *testing.T) {
	a := Randn(Shape{10, 3}, rand.New(rand.NewSource(7)))
	b := Randn(Shape{10, 3}, rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Data(), b.Data())

	u := Uniform(Shape{100}, -2, 3, rand.New(rand.NewSource(1)))
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 3.0)
	}
}

func TestLinspace(t *testing.T) {
	a := Linspace(-1, 1, 5)
	assert.InDeltaSlice(t, []float64{-1, -0.5, 0, 0.5, 1}, a.Data(), 1e-12)
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1).Data())
}

func TestShapeHelpers(t *testing.T) {
	s := Shape{5, 1, 1, 8}
	assert.Equal(t, 40, s.NumElements())
	assert.Equal(t, Shape{5, 8}, s.Squeeze())
	assert.Equal(t, Shape{1, 1, 8}, s.PerSample())
	assert.Equal(t, "(5, 1, 1, 8)", s.String())
	assert.Equal(t, 1, Shape{}.NumElements())
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dt   DataType
		name string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Int64, "int64"},
		{Uint8, "uint8"},
		{Bool, "bool"},
		{DataType(42), "DataType(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.dt.String())
		})
	}
}

type celsius float64

func TestTypeOfNamedTypes(t *testing.T) {
	assert.Equal(t, Float64, TypeOf[celsius]())
	assert.Equal(t, Uint8, TypeOf[uint8]())
	assert.Equal(t, Float64, Zeros[celsius](Shape{2}).DType())
}
