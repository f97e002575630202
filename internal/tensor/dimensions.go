package tensor

import "fmt"

// AddEmptyDimensions lifts a to the rank len(flags). Every dimension whose flag is
// true gets length 1; the remaining dimensions take the lengths of a in order.
// Exactly len(flags)-a.Rank() flags must be true.
//
// Because inserted dimensions have length 1, the row-major element order is
// unchanged and value [i, 0, 0, j] of the result equals value [i, j] of a.
//
// Example:
//
//	a := tensor.Zeros[float64](tensor.Shape{3, 4})
//	b, _ := tensor.AddEmptyDimensions(a, false, true, true, false) // (3, 1, 1, 4)
func AddEmptyDimensions[T DType](a *Array[T], flags ...bool) (*Array[T], error) {
	numEmpty := countTrue(flags)
	if numEmpty != len(flags)-a.Rank() {
		return nil, fmt.Errorf("%w: lifting rank %d to rank %d needs %d empty dimensions, but %d were flagged",
			ErrArgument, a.Rank(), len(flags), len(flags)-a.Rank(), numEmpty)
	}

	shape := make(Shape, len(flags))
	src := 0
	for i, empty := range flags {
		if empty {
			shape[i] = 1
			continue
		}
		shape[i] = a.shape[src]
		src++
	}
	return FromSlice(a.data, shape)
}

// RemoveEmptyDimensions drops the listed dimensions from a. Each listed dimension
// must exist, appear once and have length 1.
func RemoveEmptyDimensions[T DType](a *Array[T], dims ...int) (*Array[T], error) {
	flags := make([]bool, a.Rank())
	for _, d := range dims {
		if d < 0 || d >= a.Rank() {
			return nil, fmt.Errorf("%w: dimension %d out of range for rank %d", ErrArgument, d, a.Rank())
		}
		if flags[d] {
			return nil, fmt.Errorf("%w: dimension %d listed twice", ErrArgument, d)
		}
		flags[d] = true
	}
	return RemoveEmptyDimensionFlags(a, flags...)
}

// RemoveEmptyDimensionFlags is the inverse of AddEmptyDimensions called with the
// same flags: one flag per dimension of a, flagged dimensions must have length 1.
func RemoveEmptyDimensionFlags[T DType](a *Array[T], flags ...bool) (*Array[T], error) {
	if len(flags) != a.Rank() {
		return nil, fmt.Errorf("%w: %d flags for an array of rank %d", ErrArgument, len(flags), a.Rank())
	}
	shape := make(Shape, 0, a.Rank())
	for i, empty := range flags {
		if !empty {
			shape = append(shape, a.shape[i])
			continue
		}
		if a.shape[i] != 1 {
			return nil, fmt.Errorf("%w: dimension %d of %v has length %d and cannot be removed",
				ErrArgument, i, a.shape, a.shape[i])
		}
	}
	return FromSlice(a.data, shape)
}

// RemoveAllEmptyDimensions drops every dimension of length 1. An array holding a
// single value becomes a scalar.
func RemoveAllEmptyDimensions[T DType](a *Array[T]) *Array[T] {
	out, err := FromSlice(a.data, a.shape.Squeeze())
	if err != nil {
		panic(err) // squeezing keeps the element count
	}
	return out
}

// Scalar returns the single value held by a, whatever its rank.
func Scalar[T DType](a *Array[T]) (T, error) {
	if len(a.data) != 1 {
		var zero T
		return zero, fmt.Errorf("%w: array of shape %v holds %d values, not one", ErrArgument, a.shape, len(a.data))
	}
	return a.data[0], nil
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
