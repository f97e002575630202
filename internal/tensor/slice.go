package tensor

import "fmt"

// Range selects [Start, End) along one dimension. A nil bound means the start or
// the end of the dimension.
type Range struct {
	Start *int
	End   *int
}

// Span returns the range [start, end).
func Span(start, end int) Range {
	return Range{Start: &start, End: &end}
}

// From returns the range [start, len).
func From(start int) Range {
	return Range{Start: &start}
}

// To returns the range [0, end).
func To(end int) Range {
	return Range{End: &end}
}

// All returns the whole dimension.
func All() Range {
	return Range{}
}

// bounds resolves the range against a dimension of the given length.
func (r Range) bounds(length int) (int, int) {
	start, end := 0, length
	if r.Start != nil {
		start = *r.Start
	}
	if r.End != nil {
		end = *r.End
	}
	return start, end
}

// Slice returns a dense copy of the hyper-rectangle selected by ranges, one per
// dimension. Missing trailing ranges select the whole dimension. The rank of the
// result equals the rank of a.
//
// Example:
//
//	// rows 1..2, every column
//	sub, _ := tensor.Slice(a, tensor.Span(1, 3))
func Slice[T DType](a *Array[T], ranges ...Range) (*Array[T], error) {
	if len(ranges) > a.Rank() {
		return nil, fmt.Errorf("%w: %d ranges for an array of rank %d", ErrArgument, len(ranges), a.Rank())
	}

	starts := make([]int, a.Rank())
	lengths := make(Shape, a.Rank())
	for d := range a.shape {
		r := All()
		if d < len(ranges) {
			r = ranges[d]
		}
		start, end := r.bounds(a.shape[d])
		if end < start {
			return nil, fmt.Errorf("%w: dimension %d: end %d is before start %d", ErrArgument, d, end, start)
		}
		if start < 0 || end > a.shape[d] {
			return nil, fmt.Errorf("%w: dimension %d: range [%d, %d) outside [0, %d)",
				ErrArgument, d, start, end, a.shape[d])
		}
		starts[d] = start
		lengths[d] = end - start
	}

	out := Zeros[T](lengths)
	src, err := NewIndexer(lengths, starts)
	if err != nil {
		return nil, err
	}
	for i := 0; !src.FinishedIterating(); i++ {
		out.data[i] = a.At(src.CurrentIndex()...)
		src.MoveNext()
	}
	return out, nil
}
