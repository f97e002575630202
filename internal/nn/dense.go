package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Dense implements a fully connected layer.
//
// Performs the transformation: y = f(x @ W + b)
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, units]
//   - b is the bias vector with shape [units]
//   - f is the layer activation
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Dense struct {
	units int
	act   Activation

	inFeatures int
	weight     *Parameter // [in_features, units]
	bias       *Parameter // [units]

	x    *mat.Dense
	z, y []float64
}

// NewDense creates an unbuilt dense layer with the given number of units.
func NewDense(units int, act Activation) (*Dense, error) {
	if units <= 0 {
		return nil, fmt.Errorf("dense: units must be positive, got %d", units)
	}
	if err := act.validate(); err != nil {
		return nil, err
	}
	return &Dense{units: units, act: act}, nil
}

// Build implements Layer. The input must be a flat feature vector.
func (d *Dense) Build(in tensor.Shape, rng *rand.Rand) (tensor.Shape, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("dense: expected per-sample input of rank 1, got %v (add a flatten layer)", in)
	}
	d.inFeatures = in[0]
	d.weight = NewParameter("weight", tensor.Shape{d.inFeatures, d.units},
		Xavier(d.inFeatures, d.units, d.inFeatures*d.units, rng))
	d.bias = NewParameter("bias", tensor.Shape{d.units}, make([]float64, d.units))
	return tensor.Shape{d.units}, nil
}

// Forward computes y = f(x @ W + b) for a batch.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, units]
func (d *Dense) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("dense", x, tensor.Shape{d.inFeatures})
	n := x.NumSamples()
	if n == 0 {
		return batchOf(0, tensor.Shape{d.units})
	}

	d.x = mat.NewDense(n, d.inFeatures, x.Data())
	w := mat.NewDense(d.inFeatures, d.units, d.weight.Value())

	z := mat.NewDense(n, d.units, nil)
	z.Mul(d.x, w)
	b := d.bias.Value()
	z.Apply(func(_, j int, v float64) float64 { return v + b[j] }, z)

	d.z = z.RawMatrix().Data
	d.y = d.act.apply(d.z)
	return tensor.MustFromSlice(d.y, tensor.Shape{n, d.units})
}

// Backward accumulates dW = xᵀ·dz and db = Σ dz, and returns dx = dz·Wᵀ.
func (d *Dense) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	n := grad.NumSamples()
	if n == 0 {
		return batchOf(0, tensor.Shape{d.inFeatures})
	}

	dzData := append([]float64(nil), grad.Data()...)
	d.act.backward(dzData, d.z, d.y)
	dz := mat.NewDense(n, d.units, dzData)

	dw := mat.NewDense(d.inFeatures, d.units, d.weight.Grad())
	var step mat.Dense
	step.Mul(d.x.T(), dz)
	dw.Add(dw, &step)

	db := d.bias.Grad()
	for i := 0; i < n; i++ {
		for j, v := range dz.RawRowView(i) {
			db[j] += v
		}
	}

	w := mat.NewDense(d.inFeatures, d.units, d.weight.Value())
	dx := mat.NewDense(n, d.inFeatures, nil)
	dx.Mul(dz, w.T())
	return tensor.MustFromSlice(dx.RawMatrix().Data, tensor.Shape{n, d.inFeatures})
}

// Parameters returns the weight and bias.
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// Spec implements Layer.
func (d *Dense) Spec() LayerSpec {
	return DenseSpec(d.units, d.act)
}
