package nn

import (
	"math"
	"math/rand"
)

// Xavier returns n values drawn from the Glorot uniform distribution.
//
// Values are sampled from U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)),
// which keeps activation variance roughly constant across layers. This is the
// Keras default for dense and convolutional kernels.
func Xavier(fanIn, fanOut, n int, rng *rand.Rand) []float64 {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * limit
	}
	return out
}

// He returns n values from the He normal distribution N(0, 2/fanIn).
func He(fanIn, n int, rng *rand.Rand) []float64 {
	std := math.Sqrt(2.0 / float64(fanIn))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * std
	}
	return out
}
