package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Flatten collapses every per-sample dimension into one feature axis.
type Flatten struct {
	in tensor.Shape
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Build implements Layer.
func (f *Flatten) Build(in tensor.Shape, _ *rand.Rand) (tensor.Shape, error) {
	f.in = in.Clone()
	return tensor.Shape{in.NumElements()}, nil
}

// Forward implements Layer.
func (f *Flatten) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("flatten", x, f.in)
	return tensor.MustFromSlice(x.Data(), tensor.Shape{x.NumSamples(), f.in.NumElements()})
}

// Backward implements Layer.
func (f *Flatten) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	return tensor.MustFromSlice(grad.Data(), append(tensor.Shape{grad.NumSamples()}, f.in...))
}

// Parameters returns nil.
func (f *Flatten) Parameters() []*Parameter { return nil }

// Spec implements Layer.
func (f *Flatten) Spec() LayerSpec { return FlattenSpec() }

// Reshape changes the per-sample shape without moving data.
type Reshape struct {
	in, out tensor.Shape
}

// NewReshape creates a reshape layer to the given per-sample shape.
func NewReshape(shape ...int) (*Reshape, error) {
	s := tensor.Shape(shape)
	if len(s) == 0 {
		return nil, fmt.Errorf("reshape: target shape is empty")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	return &Reshape{out: s.Clone()}, nil
}

// Build implements Layer.
func (r *Reshape) Build(in tensor.Shape, _ *rand.Rand) (tensor.Shape, error) {
	if in.NumElements() != r.out.NumElements() {
		return nil, fmt.Errorf("reshape: cannot reshape %v into %v", in, r.out)
	}
	r.in = in.Clone()
	return r.out.Clone(), nil
}

// Forward implements Layer.
func (r *Reshape) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("reshape", x, r.in)
	return tensor.MustFromSlice(x.Data(), append(tensor.Shape{x.NumSamples()}, r.out...))
}

// Backward implements Layer.
func (r *Reshape) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	return tensor.MustFromSlice(grad.Data(), append(tensor.Shape{grad.NumSamples()}, r.in...))
}

// Parameters returns nil.
func (r *Reshape) Parameters() []*Parameter { return nil }

// Spec implements Layer.
func (r *Reshape) Spec() LayerSpec { return ReshapeSpec(r.out...) }
