package tensor

import "fmt"

// Array is a dense, row-major, N-dimensional buffer of element type T.
//
// One generic type covers every rank the pipeline uses: rank 2 (samples, features)
// for parameter and latent data and rank 4 (samples, height, width, channels) for
// field data.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
//	v := x.At(2, 1) // 6
type Array[T DType] struct {
	shape   Shape
	strides []int
	data    []T
}

// Zeros creates an array filled with zero values.
// Panics if the shape has a negative dimension.
func Zeros[T DType](shape Shape) *Array[T] {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	shape = shape.Clone()
	return &Array[T]{
		shape:   shape,
		strides: shape.ComputeStrides(),
		data:    make([]T, shape.NumElements()),
	}
}

// Full creates an array filled with a specific value.
func Full[T DType](shape Shape, value T) *Array[T] {
	a := Zeros[T](shape)
	for i := range a.data {
		a.data[i] = value
	}
	return a
}

// FromSlice creates an array from a Go slice.
// The slice is copied into the array's memory.
func FromSlice[T DType](data []T, shape Shape) (*Array[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrArgument, shape, shape.NumElements(), len(data))
	}
	a := Zeros[T](shape)
	copy(a.data, data)
	return a, nil
}

// MustFromSlice is like FromSlice but panics on error. Intended for literals in tests
// and examples.
func MustFromSlice[T DType](data []T, shape Shape) *Array[T] {
	a, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return a
}

// FromRows creates a rank-2 array from a slice of equally long rows.
func FromRows[T DType](rows [][]T) (*Array[T], error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrArgument)
	}
	cols := len(rows[0])
	a := Zeros[T](Shape{len(rows), cols})
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, row 0 has %d", ErrArgument, i, len(row), cols)
		}
		copy(a.data[i*cols:(i+1)*cols], row)
	}
	return a, nil
}

// Shape returns a copy of the array's shape.
func (a *Array[T]) Shape() Shape {
	return a.shape.Clone()
}

// Rank returns the number of dimensions.
func (a *Array[T]) Rank() int {
	return len(a.shape)
}

// Len returns the length along dimension dim.
func (a *Array[T]) Len(dim int) int {
	return a.shape[dim]
}

// NumSamples returns the length of dimension 0, or 0 for a scalar.
func (a *Array[T]) NumSamples() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// NumElements returns the total number of elements.
func (a *Array[T]) NumElements() int {
	return len(a.data)
}

// DType returns the runtime data type of the elements.
func (a *Array[T]) DType() DataType {
	return TypeOf[T]()
}

// Data returns the row-major backing slice (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the array.
func (a *Array[T]) Data() []T {
	return a.data
}

// Strides returns the row-major strides.
func (a *Array[T]) Strides() []int {
	out := make([]int, len(a.strides))
	copy(out, a.strides)
	return out
}

// Offset converts a multi-dimensional index to a flat offset.
// Panics if the index has the wrong rank or is out of bounds.
func (a *Array[T]) Offset(indices ...int) int {
	if len(indices) != len(a.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(a.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, a.shape[i]))
		}
		offset += idx * a.strides[i]
	}
	return offset
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (a *Array[T]) At(indices ...int) T {
	return a.data[a.Offset(indices...)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (a *Array[T]) Set(value T, indices ...int) {
	a.data[a.Offset(indices...)] = value
}

// Clone creates a deep copy of the array.
func (a *Array[T]) Clone() *Array[T] {
	out := Zeros[T](a.shape)
	copy(out.data, a.data)
	return out
}

// Reshape returns a copy of the array with a new shape holding the same number of
// elements in the same row-major order.
func (a *Array[T]) Reshape(shape ...int) (*Array[T], error) {
	return FromSlice(a.data, Shape(shape))
}

// Row returns a copy of sample i flattened to a slice.
func (a *Array[T]) Row(i int) []T {
	if len(a.shape) == 0 {
		panic("Row: scalar array has no samples")
	}
	size := a.shape.PerSample().NumElements()
	out := make([]T, size)
	copy(out, a.data[i*size:(i+1)*size])
	return out
}

// Rows returns a copy of the array as one flattened slice per sample.
func (a *Array[T]) Rows() [][]T {
	rows := make([][]T, a.NumSamples())
	for i := range rows {
		rows[i] = a.Row(i)
	}
	return rows
}

// String returns a human-readable description of the array.
func (a *Array[T]) String() string {
	return fmt.Sprintf("Array[%s]%v", a.DType(), a.shape)
}
