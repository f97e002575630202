package tensor

import "math/rand"

// Ones creates a float64 array filled with ones.
func Ones(shape Shape) *Array[float64] {
	return Full(shape, 1.0)
}

// Randn creates a float64 array with values drawn from N(0, 1).
//
// The generator is passed explicitly so that every stochastic step of an
// experiment is reproducible from its seed.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	x := tensor.Randn(tensor.Shape{100, 3}, rng)
func Randn(shape Shape, rng *rand.Rand) *Array[float64] {
	a := Zeros[float64](shape)
	for i := range a.data {
		a.data[i] = rng.NormFloat64()
	}
	return a
}

// Uniform creates a float64 array with values drawn from U(lo, hi).
func Uniform(shape Shape, lo, hi float64, rng *rand.Rand) *Array[float64] {
	a := Zeros[float64](shape)
	for i := range a.data {
		a.data[i] = lo + (hi-lo)*rng.Float64()
	}
	return a
}

// Linspace creates a rank-1 array of n evenly spaced values in [start, end].
func Linspace(start, end float64, n int) *Array[float64] {
	a := Zeros[float64](Shape{n})
	if n == 1 {
		a.data[0] = start
		return a
	}
	step := (end - start) / float64(n-1)
	for i := range a.data {
		a.data[i] = start + float64(i)*step
	}
	return a
}
