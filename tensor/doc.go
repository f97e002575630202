// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the shaped buffers exchanged by every surrogate stage.
//
// # Overview
//
// One generic type, Array[T], covers every rank the pipeline uses:
//   - rank 2 (samples, features) for parameter and latent data
//   - rank 4 (samples, height, width, channels) for field data
//
// Dimension 0 is always the sample count.
//
// # Basic Usage
//
//	import "github.com/born-ml/surrogate/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
//
//	    // (3, 2) -> (3, 1, 1, 2) for a convolutional stage
//	    lifted, _ := tensor.AddEmptyDimensions(x, false, true, true, false)
//
//	    // and back
//	    flat, _ := tensor.RemoveEmptyDimensions(lifted, 1, 2)
//	}
//
// # Shape Adaptation
//
// AddEmptyDimensions and RemoveEmptyDimensions never perform arithmetic, so a
// round trip returns the original values bit for bit. Removing a dimension whose
// length is not 1 fails with ErrArgument.
//
// # Supported Data Types
//
// The DType constraint admits float32, float64, int32, int64, uint8 and bool.
//
// # Iteration
//
// Indexer walks an N-dimensional index space in row-major order, optionally from
// non-zero lower bounds:
//
//	ix, _ := tensor.NewIndexer([]int{2, 3}, nil)
//	for ok := !ix.FinishedIterating(); ok; ok = ix.MoveNext() {
//	    fmt.Println(ix.CurrentIndex())
//	}
package tensor
