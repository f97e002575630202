package tensor

import (
	"fmt"
	"math"
)

// Indexer is a cursor over an N-dimensional index space.
//
// Traversal is row-major: the last dimension moves fastest. The cursor starts at
// the lower bounds; every successful MoveNext advances it by one position. Once the
// space is exhausted MoveNext returns false, FinishedIterating reports true and
// CurrentIndex holds math.MaxInt in every component until Restart is called.
//
// Example:
//
//	ix, _ := tensor.NewIndexer([]int{2, 3}, nil)
//	for ok := !ix.FinishedIterating(); ok; ok = ix.MoveNext() {
//	    fmt.Println(ix.CurrentIndex()) // [0 0] [0 1] ... [1 2]
//	}
type Indexer struct {
	lengths     []int
	lowerBounds []int
	current     []int
	finished    bool
}

// NewIndexer creates an indexer over the given per-dimension lengths.
// A nil lowerBounds starts every dimension at 0.
func NewIndexer(lengths, lowerBounds []int) (*Indexer, error) {
	if lowerBounds == nil {
		lowerBounds = make([]int, len(lengths))
	}
	if len(lowerBounds) != len(lengths) {
		return nil, fmt.Errorf("%w: %d lower bounds for %d dimensions", ErrArgument, len(lowerBounds), len(lengths))
	}
	for i, l := range lengths {
		if l < 0 {
			return nil, fmt.Errorf("%w: negative length %d in dimension %d", ErrArgument, l, i)
		}
	}

	ix := &Indexer{
		lengths:     append([]int(nil), lengths...),
		lowerBounds: append([]int(nil), lowerBounds...),
		current:     make([]int, len(lengths)),
	}
	ix.Restart()
	return ix, nil
}

// IndexerFor creates a zero-based indexer over the shape of a.
func IndexerFor[T DType](a *Array[T]) *Indexer {
	ix, err := NewIndexer(a.shape, nil)
	if err != nil {
		panic(err) // array shapes are validated at construction
	}
	return ix
}

// Rank returns the number of dimensions the indexer walks.
func (ix *Indexer) Rank() int {
	return len(ix.lengths)
}

// Lengths returns the per-dimension lengths.
func (ix *Indexer) Lengths() []int {
	return append([]int(nil), ix.lengths...)
}

// LowerBounds returns the first index of every dimension.
func (ix *Indexer) LowerBounds() []int {
	return append([]int(nil), ix.lowerBounds...)
}

// NumPositions returns the number of positions in the index space.
func (ix *Indexer) NumPositions() int {
	return Shape(ix.lengths).NumElements()
}

// CurrentIndex returns the current position. The slice is owned by the indexer and
// changes on the next MoveNext.
func (ix *Indexer) CurrentIndex() []int {
	return ix.current
}

// FinishedIterating reports whether the index space has been exhausted.
func (ix *Indexer) FinishedIterating() bool {
	return ix.finished
}

// MoveNext advances to the next position. It returns false when no position is left,
// poisoning the current index.
func (ix *Indexer) MoveNext() bool {
	if ix.finished {
		return false
	}
	for d := len(ix.lengths) - 1; d >= 0; d-- {
		if ix.current[d] < ix.lowerBounds[d]+ix.lengths[d]-1 {
			ix.current[d]++
			return true
		}
		ix.current[d] = ix.lowerBounds[d]
	}
	ix.poison()
	return false
}

// Restart moves the cursor back to the lower bounds.
func (ix *Indexer) Restart() {
	copy(ix.current, ix.lowerBounds)
	ix.finished = false
	if ix.NumPositions() == 0 {
		ix.poison()
	}
}

// IsCompatible reports whether the indexer covers exactly the given shape.
func (ix *Indexer) IsCompatible(shape Shape) bool {
	return Shape(ix.lengths).Equal(shape)
}

// String describes the index space, e.g. "[0..2, 5..7]".
func (ix *Indexer) String() string {
	s := "["
	for i := range ix.lengths {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d..%d", ix.lowerBounds[i], ix.lowerBounds[i]+ix.lengths[i]-1)
	}
	return s + "]"
}

func (ix *Indexer) poison() {
	for i := range ix.current {
		ix.current[i] = math.MaxInt
	}
	ix.finished = true
}
