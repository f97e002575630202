package nn

import (
	"github.com/born-ml/surrogate/internal/tensor"
)

// Parameter represents a trainable weight with its gradient buffer.
//
// Value and Grad are flat row-major slices of the parameter's shape. They keep
// their identity for the lifetime of the parameter, so optimizers can hold them.
//
// Example:
//
//	w := nn.NewParameter("weight", tensor.Shape{784, 128}, values)
//	grad := w.Grad() // accumulated by Backward
type Parameter struct {
	name  string
	shape tensor.Shape
	value []float64
	grad  []float64
}

// NewParameter creates a parameter that owns value.
func NewParameter(name string, shape tensor.Shape, value []float64) *Parameter {
	if shape.NumElements() != len(value) {
		panic("parameter: value length does not match shape " + shape.String())
	}
	return &Parameter{
		name:  name,
		shape: shape.Clone(),
		value: value,
		grad:  make([]float64, len(value)),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.shape.Clone()
}

// Value returns the parameter values.
func (p *Parameter) Value() []float64 {
	return p.value
}

// Grad returns the accumulated gradient.
func (p *Parameter) Grad() []float64 {
	return p.grad
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	clear(p.grad)
}

// Array returns a copy of the values as an array of the parameter's shape.
func (p *Parameter) Array() *tensor.Array[float64] {
	return tensor.MustFromSlice(p.value, p.shape)
}
