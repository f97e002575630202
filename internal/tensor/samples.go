package tensor

import "fmt"

// SelectSamples gathers the samples at the given dim-0 indices into a new array,
// in the order given. The per-sample shape is preserved, so selecting zero indices
// yields an array of shape (0, ...).
func SelectSamples[T DType](a *Array[T], indices []int) (*Array[T], error) {
	if a.Rank() == 0 {
		return nil, fmt.Errorf("%w: cannot select samples of a scalar", ErrArgument)
	}
	n := a.shape[0]
	size := a.shape.PerSample().NumElements()

	outShape := a.Shape()
	outShape[0] = len(indices)
	out := Zeros[T](outShape)
	for k, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: sample index %d out of range [0, %d)", ErrArgument, idx, n)
		}
		copy(out.data[k*size:(k+1)*size], a.data[idx*size:(idx+1)*size])
	}
	return out, nil
}

// ConcatSamples stacks arrays with identical per-sample shapes along dimension 0.
func ConcatSamples[T DType](arrays ...*Array[T]) (*Array[T], error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrArgument)
	}
	perSample := arrays[0].shape.PerSample()
	total := 0
	for i, a := range arrays {
		if a.Rank() == 0 || !a.shape.PerSample().Equal(perSample) {
			return nil, fmt.Errorf("%w: array %d has shape %v, expected (n%s)",
				ErrArgument, i, a.shape, trimParen(perSample))
		}
		total += a.shape[0]
	}

	outShape := append(Shape{total}, perSample...)
	out := Zeros[T](outShape)
	offset := 0
	for _, a := range arrays {
		copy(out.data[offset:], a.data)
		offset += len(a.data)
	}
	return out, nil
}

// CheckSameSamples verifies that two paired datasets carry the same sample count.
func CheckSameSamples[T, U DType](x *Array[T], y *Array[U]) error {
	if x.Rank() == 0 || y.Rank() == 0 {
		return fmt.Errorf("%w: datasets must have a sample dimension", ErrArgument)
	}
	if x.shape[0] != y.shape[0] {
		return fmt.Errorf("%w: the first dimension of the input and output datasets must be the number of samples, "+
			"but was %d and %d respectively", ErrArgument, x.shape[0], y.shape[0])
	}
	return nil
}

func trimParen(s Shape) string {
	str := s.String()
	str = str[1 : len(str)-1]
	if str == "" {
		return ""
	}
	return ", " + str
}
