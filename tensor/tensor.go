// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for array element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the runtime element type of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of an array.
// Example: Shape{10, 1, 1, 50} holds 10 samples of a 1x1 image with 50 channels.
type Shape = tensor.Shape

// Array is a dense, row-major, N-dimensional buffer.
type Array[T DType] = tensor.Array[T]

// Indexer is a row-major cursor over an N-dimensional index space.
type Indexer = tensor.Indexer

// Range selects a half-open interval of one dimension for Slice.
type Range = tensor.Range

// ErrArgument reports a shape-contract violation.
var ErrArgument = tensor.ErrArgument

// Creation functions

// Zeros creates an array filled with zero values.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3})
func Zeros[T DType](shape Shape) *Array[T] {
	return tensor.Zeros[T](shape)
}

// Full creates an array filled with value.
func Full[T DType](shape Shape, value T) *Array[T] {
	return tensor.Full(shape, value)
}

// FromSlice creates an array from a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice[T DType](data []T, shape Shape) (*Array[T], error) {
	return tensor.FromSlice(data, shape)
}

// FromRows creates a rank-2 array from equally long rows.
func FromRows[T DType](rows [][]T) (*Array[T], error) {
	return tensor.FromRows(rows)
}

// Randn creates an array of samples from N(0, 1) drawn from rng.
func Randn(shape Shape, rng *rand.Rand) *Array[float64] {
	return tensor.Randn(shape, rng)
}

// Uniform creates an array of samples from U(lo, hi) drawn from rng.
func Uniform(shape Shape, lo, hi float64, rng *rand.Rand) *Array[float64] {
	return tensor.Uniform(shape, lo, hi, rng)
}

// Linspace returns n evenly spaced values from start to end inclusive.
func Linspace(start, end float64, n int) *Array[float64] {
	return tensor.Linspace(start, end, n)
}

// Shape adaptation

// AddEmptyDimensions inserts length-1 dimensions. flags has one entry per target
// dimension; true marks a new empty dimension, false consumes the next source
// dimension.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{3, 4})
//	y, _ := tensor.AddEmptyDimensions(x, false, true, true, false) // (3, 1, 1, 4)
func AddEmptyDimensions[T DType](a *Array[T], flags ...bool) (*Array[T], error) {
	return tensor.AddEmptyDimensions(a, flags...)
}

// RemoveEmptyDimensions drops the listed dimensions, each of which must have length 1.
func RemoveEmptyDimensions[T DType](a *Array[T], dims ...int) (*Array[T], error) {
	return tensor.RemoveEmptyDimensions(a, dims...)
}

// RemoveEmptyDimensionFlags is the inverse of AddEmptyDimensions with the same flags.
func RemoveEmptyDimensionFlags[T DType](a *Array[T], flags ...bool) (*Array[T], error) {
	return tensor.RemoveEmptyDimensionFlags(a, flags...)
}

// RemoveAllEmptyDimensions drops every length-1 dimension.
func RemoveAllEmptyDimensions[T DType](a *Array[T]) *Array[T] {
	return tensor.RemoveAllEmptyDimensions(a)
}

// Copy copies src into dst when both describe the same logical layout.
func Copy[T DType](dst, src *Array[T]) error {
	return tensor.Copy(dst, src)
}

// Slice returns a copy of the sub-array selected by one Range per dimension.
func Slice[T DType](a *Array[T], ranges ...Range) (*Array[T], error) {
	return tensor.Slice(a, ranges...)
}

// Span selects [start, end).
func Span(start, end int) Range { return tensor.Span(start, end) }

// All selects a whole dimension.
func All() Range { return tensor.All() }

// Samples

// SelectSamples gathers the samples at indices into a new array.
func SelectSamples[T DType](a *Array[T], indices []int) (*Array[T], error) {
	return tensor.SelectSamples(a, indices)
}

// ConcatSamples stacks arrays with equal per-sample shapes along dimension 0.
func ConcatSamples[T DType](arrays ...*Array[T]) (*Array[T], error) {
	return tensor.ConcatSamples(arrays...)
}

// Iteration

// NewIndexer creates a cursor over lengths. A nil lowerBounds starts at 0.
func NewIndexer(lengths, lowerBounds []int) (*Indexer, error) {
	return tensor.NewIndexer(lengths, lowerBounds)
}

// IndexerFor creates a cursor over every index of a.
func IndexerFor[T DType](a *Array[T]) *Indexer {
	return tensor.IndexerFor(a)
}
