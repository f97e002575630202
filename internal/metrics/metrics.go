// Package metrics computes error measures between expected and predicted datasets.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/surrogate/internal/tensor"
)

// ErrZeroNorm is returned when an expected sample has zero norm, which leaves the
// relative error undefined.
var ErrZeroNorm = errors.New("expected sample has zero norm")

// MeanRelativeNorm2Error returns the batch mean of ||predicted - expected||_2 / ||expected||_2,
// where each sample is flattened to a vector. Both arrays must have rank 2, 3 or 4 and
// identical shapes.
func MeanRelativeNorm2Error(expected, predicted *tensor.Array[float64]) (float64, error) {
	if err := checkPair(expected, predicted); err != nil {
		return 0, err
	}
	if r := expected.Rank(); r < 2 || r > 4 {
		return 0, fmt.Errorf("%w: relative norm error needs rank 2, 3 or 4, got %d", tensor.ErrArgument, r)
	}

	n := expected.NumSamples()
	if n == 0 {
		return 0, fmt.Errorf("%w: no samples", tensor.ErrArgument)
	}
	size := expected.Shape().PerSample().NumElements()
	e, p := expected.Data(), predicted.Data()

	var sum float64
	for i := 0; i < n; i++ {
		es, ps := e[i*size:(i+1)*size], p[i*size:(i+1)*size]
		norm := floats.Norm(es, 2)
		if norm == 0 {
			return 0, fmt.Errorf("%w: sample %d", ErrZeroNorm, i)
		}
		sum += floats.Distance(ps, es, 2) / norm
	}
	return sum / float64(n), nil
}

// MeanSquaredError returns the mean of (predicted - expected)^2 over all elements.
func MeanSquaredError(expected, predicted *tensor.Array[float64]) (float64, error) {
	if err := checkPair(expected, predicted); err != nil {
		return 0, err
	}
	if expected.NumElements() == 0 {
		return 0, fmt.Errorf("%w: no values", tensor.ErrArgument)
	}
	d := floats.Distance(predicted.Data(), expected.Data(), 2)
	return d * d / float64(expected.NumElements()), nil
}

// RootMeanSquaredError returns the square root of MeanSquaredError.
func RootMeanSquaredError(expected, predicted *tensor.Array[float64]) (float64, error) {
	mse, err := MeanSquaredError(expected, predicted)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

func checkPair(expected, predicted *tensor.Array[float64]) error {
	if expected.NumSamples() != predicted.NumSamples() {
		return fmt.Errorf("%w: expected %d samples, predicted %d",
			tensor.ErrArgument, expected.NumSamples(), predicted.NumSamples())
	}
	if !expected.Shape().Equal(predicted.Shape()) {
		return fmt.Errorf("%w: expected shape %v, predicted shape %v",
			tensor.ErrArgument, expected.Shape(), predicted.Shape())
	}
	return nil
}
