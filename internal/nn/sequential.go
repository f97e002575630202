package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Sequential is a container that chains layers in sequence.
//
// The output of each layer is passed as input to the next one; Backward walks
// the chain in reverse.
//
// Example:
//
//	model, _ := nn.NewSequential(tensor.Shape{4}, rng,
//	    nn.DenseSpec(64, nn.ReLU),
//	    nn.DenseSpec(8, nn.Linear),
//	)
//	output := model.Forward(input)
type Sequential struct {
	layers []Layer
	in     tensor.Shape
	out    tensor.Shape
}

// NewSequential builds layers from specs for the given per-sample input shape.
func NewSequential(in tensor.Shape, rng *rand.Rand, specs ...LayerSpec) (*Sequential, error) {
	s := &Sequential{in: in.Clone(), out: in.Clone()}
	for i, spec := range specs {
		layer, err := NewLayer(spec)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := s.Add(layer, rng); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add builds layer on the current output shape and appends it.
func (s *Sequential) Add(layer Layer, rng *rand.Rand) error {
	out, err := layer.Build(s.out, rng)
	if err != nil {
		return fmt.Errorf("layer %d: %w", len(s.layers), err)
	}
	for _, p := range layer.Parameters() {
		p.name = fmt.Sprintf("%d.%s", len(s.layers), p.name)
	}
	s.layers = append(s.layers, layer)
	s.out = out
	return nil
}

// Forward passes x through every layer.
func (s *Sequential) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	for _, layer := range s.layers {
		x = layer.Forward(x)
	}
	return x
}

// Backward propagates grad through every layer in reverse order.
func (s *Sequential) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters, named "<index>.<name>".
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Len returns the number of layers.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at index.
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic(fmt.Sprintf("sequential: layer index %d out of range [0, %d)", index, len(s.layers)))
	}
	return s.layers[index]
}

// InputShape returns the per-sample input shape.
func (s *Sequential) InputShape() tensor.Shape {
	return s.in.Clone()
}

// OutputShape returns the per-sample output shape.
func (s *Sequential) OutputShape() tensor.Shape {
	return s.out.Clone()
}

// Specs returns the layer descriptions in order.
func (s *Sequential) Specs() []LayerSpec {
	specs := make([]LayerSpec, len(s.layers))
	for i, layer := range s.layers {
		specs[i] = layer.Spec()
	}
	return specs
}

// StateDict returns a copy of all parameter values keyed by parameter name.
func (s *Sequential) StateDict() map[string][]float64 {
	state := make(map[string][]float64)
	for _, p := range s.Parameters() {
		state[p.Name()] = append([]float64(nil), p.Value()...)
	}
	return state
}

// LoadStateDict copies values into the parameters. Every parameter must be
// present with a matching length.
func (s *Sequential) LoadStateDict(state map[string][]float64) error {
	for _, p := range s.Parameters() {
		v, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("missing parameter %s", p.Name())
		}
		if len(v) != len(p.Value()) {
			return fmt.Errorf("parameter %s: expected %d values, got %d", p.Name(), len(p.Value()), len(v))
		}
		copy(p.Value(), v)
	}
	return nil
}
