package tensor

import "fmt"

// Copy copies the values of src into dst. The arrays may differ in rank but must
// hold the same logical layout, i.e. equal shapes once length-1 dimensions are
// dropped. Both are walked in row-major order with one indexer each.
func Copy[T DType](dst, src *Array[T]) error {
	if err := checkLayout(dst, src); err != nil {
		return err
	}
	dix, six := IndexerFor(dst), IndexerFor(src)
	for !six.FinishedIterating() {
		dst.Set(src.At(six.CurrentIndex()...), dix.CurrentIndex()...)
		six.MoveNext()
		dix.MoveNext()
	}
	return nil
}

// EqualValues reports whether a and b hold the same logical layout and the same
// values in row-major order.
func EqualValues[T DType](a, b *Array[T]) bool {
	if checkLayout(a, b) != nil {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func checkLayout[T DType](a, b *Array[T]) error {
	if !a.shape.Squeeze().Equal(b.shape.Squeeze()) {
		return fmt.Errorf("%w: shapes %v and %v do not describe the same layout", ErrArgument, a.shape, b.shape)
	}
	return nil
}
