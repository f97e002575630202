package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Activation is an element-wise nonlinearity applied after a layer's affine map.
// The empty string means Linear.
type Activation string

// Supported activations.
const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Sigmoid Activation = "sigmoid"
	Tanh    Activation = "tanh"
)

// ParseActivation validates an activation name.
func ParseActivation(s string) (Activation, error) {
	a := Activation(s)
	if err := a.validate(); err != nil {
		return "", err
	}
	if a == "" {
		return Linear, nil
	}
	return a, nil
}

func (a Activation) validate() error {
	switch a {
	case "", Linear, ReLU, Sigmoid, Tanh:
		return nil
	default:
		return fmt.Errorf("nn: unknown activation %q", string(a))
	}
}

// apply computes f(z) element-wise into a new slice.
func (a Activation) apply(z []float64) []float64 {
	y := make([]float64, len(z))
	switch a {
	case ReLU:
		for i, v := range z {
			y[i] = math.Max(0, v)
		}
	case Sigmoid:
		for i, v := range z {
			y[i] = 1 / (1 + math.Exp(-v))
		}
	case Tanh:
		for i, v := range z {
			y[i] = math.Tanh(v)
		}
	default:
		copy(y, z)
	}
	return y
}

// backward multiplies grad in place by f'(z), using the cached output y.
func (a Activation) backward(grad, z, y []float64) {
	switch a {
	case ReLU:
		for i := range grad {
			if z[i] <= 0 {
				grad[i] = 0
			}
		}
	case Sigmoid:
		for i := range grad {
			grad[i] *= y[i] * (1 - y[i])
		}
	case Tanh:
		for i := range grad {
			grad[i] *= 1 - y[i]*y[i]
		}
	}
}

// ActivationLayer applies an activation as a standalone layer.
//
// Example:
//
//	relu, _ := nn.NewActivationLayer(nn.ReLU)
//	output := relu.Forward(input) // All negative values become 0
type ActivationLayer struct {
	act  Activation
	in   tensor.Shape
	z, y []float64
}

// NewActivationLayer creates a standalone activation layer.
func NewActivationLayer(act Activation) (*ActivationLayer, error) {
	if err := act.validate(); err != nil {
		return nil, err
	}
	return &ActivationLayer{act: act}, nil
}

// Build implements Layer.
func (l *ActivationLayer) Build(in tensor.Shape, _ *rand.Rand) (tensor.Shape, error) {
	l.in = in.Clone()
	return in.Clone(), nil
}

// Forward implements Layer.
func (l *ActivationLayer) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("activation", x, l.in)
	l.z = x.Data()
	l.y = l.act.apply(l.z)
	return tensor.MustFromSlice(l.y, x.Shape())
}

// Backward implements Layer.
func (l *ActivationLayer) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	out := grad.Clone()
	l.act.backward(out.Data(), l.z, l.y)
	return out
}

// Parameters returns nil (activations have no trainable parameters).
func (l *ActivationLayer) Parameters() []*Parameter {
	return nil
}

// Spec implements Layer.
func (l *ActivationLayer) Spec() LayerSpec {
	return LayerSpec{Type: TypeActivation, Activation: l.act}
}
