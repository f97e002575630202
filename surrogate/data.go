// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package surrogate

import (
	"github.com/born-ml/surrogate/internal/metrics"
	"github.com/born-ml/surrogate/internal/preprocess"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Splitting

// Splitter partitions datasets that share a sample count.
type Splitter = split.Splitter

// SplitConfig configures a Splitter.
type SplitConfig = split.Config

// Parts holds the three subsets of one dataset.
type Parts = split.Parts

// Subset names one part of a partition.
type Subset = split.Subset

// Partition subsets.
const (
	Training   = split.Training
	Test       = split.Test
	Validation = split.Validation
)

// Order decides where each subset lands on the sample axis.
type Order = split.Order

// Contiguous places the subsets as consecutive blocks in the given order.
func Contiguous(subsets ...Subset) Order {
	return split.Contiguous(subsets...)
}

// Interleaved scatters the subsets over the sample axis with a seeded shuffle.
func Interleaved(seed int64) Order {
	return split.Interleaved(seed)
}

// NewSplitter validates cfg and returns a Splitter.
//
// Example:
//
//	s, _ := surrogate.NewSplitter(surrogate.SplitConfig{
//	    MinTestFraction: 0.2,
//	    Order:           surrogate.Interleaved(42),
//	})
//	xs, ys, err := s.SplitPair(params, solutions)
func NewSplitter(cfg SplitConfig) (*Splitter, error) {
	return split.New(cfg)
}

// DefaultSplitter holds out 20% of the samples as a trailing test block.
func DefaultSplitter() *Splitter {
	return split.Default()
}

// Normalization

// Normalization selects a scaling scheme.
type Normalization = preprocess.Kind

// Normalizations.
const (
	NoNormalization = preprocess.Null
	MinMax          = preprocess.MinMax
	ZScore          = preprocess.ZScore
)

// Direction selects whether statistics are taken per column or per row.
type Direction = preprocess.Direction

// Directions.
const (
	PerColumn = preprocess.PerColumn
	PerRow    = preprocess.PerRow
)

// NormalizationParameters hold fitted offsets and scales and apply them.
type NormalizationParameters = preprocess.Parameters

// FitNormalization computes parameters of kind over data in direction dir.
func FitNormalization(kind Normalization, data *tensor.Array[float64], dir Direction) (*NormalizationParameters, error) {
	return preprocess.Fit(kind, data, dir)
}

// ParseNormalization validates a configuration name.
func ParseNormalization(s string) (Normalization, error) {
	return preprocess.ParseKind(s)
}

// Metrics

// ErrZeroNorm is returned when an expected sample has zero norm.
var ErrZeroNorm = metrics.ErrZeroNorm

// MeanRelativeNorm2Error averages ||expected - predicted|| / ||expected|| over samples.
func MeanRelativeNorm2Error(expected, predicted *tensor.Array[float64]) (float64, error) {
	return metrics.MeanRelativeNorm2Error(expected, predicted)
}

// MeanSquaredError averages the squared differences over all elements.
func MeanSquaredError(expected, predicted *tensor.Array[float64]) (float64, error) {
	return metrics.MeanSquaredError(expected, predicted)
}

// RootMeanSquaredError is the square root of MeanSquaredError.
func RootMeanSquaredError(expected, predicted *tensor.Array[float64]) (float64, error) {
	return metrics.RootMeanSquaredError(expected, predicted)
}
