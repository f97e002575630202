// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/tensor"
)

// TestLiftAndDrop verifies the public shape adaptation round trip.
func TestLiftAndDrop(t *testing.T) {
	x, err := tensor.FromRows([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}})
	require.NoError(t, err)

	lifted, err := tensor.AddEmptyDimensions(x, false, true, true, false)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 1, 1, 4}, lifted.Shape())
	assert.Equal(t, 7.0, lifted.At(1, 0, 0, 2))

	back, err := tensor.RemoveEmptyDimensions(lifted, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), back.Shape())
	assert.Equal(t, x.Data(), back.Data())

	_, err = tensor.RemoveEmptyDimensions(lifted, 3)
	assert.ErrorIs(t, err, tensor.ErrArgument)
}

// TestIndexerAPI verifies the Indexer alias exposes row-major iteration.
func TestIndexerAPI(t *testing.T) {
	ix, err := tensor.NewIndexer([]int{2, 2}, []int{1, 0})
	require.NoError(t, err)

	var visited [][]int
	for ok := !ix.FinishedIterating(); ok; ok = ix.MoveNext() {
		visited = append(visited, append([]int(nil), ix.CurrentIndex()...))
	}
	assert.Equal(t, [][]int{{1, 0}, {1, 1}, {2, 0}, {2, 1}}, visited)
	assert.True(t, ix.FinishedIterating())
}

// TestSliceAPI verifies Slice with public ranges.
func TestSliceAPI(t *testing.T) {
	x := tensor.Zeros[int32](tensor.Shape{4, 3})
	x.Set(9, 2, 1)
	s, err := tensor.Slice(x, tensor.Span(1, 3), tensor.All())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, s.Shape())
	assert.Equal(t, int32(9), s.At(1, 1))
	assert.Equal(t, tensor.Int32, s.DType())
}
