package tensor

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Shape represents the dimensions of an array.
//
// Dimension 0 of every dataset is the sample count. Zero-length dimensions are
// allowed so that an empty subset (e.g. a validation set of 0 samples) keeps its
// per-sample shape.
type Shape []int

// NumElements returns the total number of elements in the array.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative and that the element count
// fits in an int.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: invalid dimension at index %d: %d (must be >= 0)", ErrArgument, i, dim)
		}
	}
	if slices.Contains(s, 0) {
		return nil
	}
	n := 1
	for _, dim := range s {
		if n > math.MaxInt/dim {
			return fmt.Errorf("%w: shape %v has too many elements", ErrArgument, s)
		}
		n *= dim
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape. The copy of a nil shape is empty, not nil.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// ComputeStrides returns the row-major strides: stride[i] is the product of
// the dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// Squeeze returns the shape without its length-1 dimensions.
// Two arrays with equal squeezed shapes hold the same logical data layout.
func (s Shape) Squeeze() Shape {
	out := make(Shape, 0, len(s))
	for _, dim := range s {
		if dim != 1 {
			out = append(out, dim)
		}
	}
	return out
}

// PerSample returns the shape of a single sample (all dimensions after the first).
func (s Shape) PerSample() Shape {
	if len(s) == 0 {
		return Shape{}
	}
	return s[1:].Clone()
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprint(dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
