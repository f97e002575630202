// Package nn is the float64 training engine behind the surrogate models.
//
// Networks are stacks of layers with hand-written backward passes. Every layer
// works on whole batches laid out as tensor.Array[float64] with the sample count
// in dimension 0; images use NHWC order (samples, height, width, channels).
//
// A layer is described by a LayerSpec. Specs are plain data: they are what
// configs hold and what checkpoints store, and Build turns them into layers with
// freshly initialized weights.
package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Layer is the base interface for all network layers.
//
// A layer is built once for a per-sample input shape. Forward caches what
// Backward needs, so calls must alternate Forward then Backward on the same batch.
type Layer interface {
	// Build allocates weights for the given per-sample input shape and returns
	// the per-sample output shape.
	Build(in tensor.Shape, rng *rand.Rand) (tensor.Shape, error)

	// Forward computes the layer output for a batch.
	Forward(x *tensor.Array[float64]) *tensor.Array[float64]

	// Backward takes the loss gradient w.r.t. the output, accumulates parameter
	// gradients and returns the gradient w.r.t. the input.
	Backward(grad *tensor.Array[float64]) *tensor.Array[float64]

	// Parameters returns the trainable parameters (nil for stateless layers).
	Parameters() []*Parameter

	// Spec returns the description the layer was created from.
	Spec() LayerSpec
}

// Padding selects how convolutions treat borders.
type Padding string

// Supported paddings.
const (
	Same  Padding = "same"
	Valid Padding = "valid"
)

// LayerSpec describes one layer. Only the fields of the given Type are used.
type LayerSpec struct {
	Type       string     `json:"type" yaml:"type"`
	Units      int        `json:"units,omitempty" yaml:"units,omitempty"`
	Filters    int        `json:"filters,omitempty" yaml:"filters,omitempty"`
	Kernel     [2]int     `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Strides    [2]int     `json:"strides,omitempty" yaml:"strides,omitempty"`
	Padding    Padding    `json:"padding,omitempty" yaml:"padding,omitempty"`
	Activation Activation `json:"activation,omitempty" yaml:"activation,omitempty"`
	Shape      []int      `json:"shape,omitempty" yaml:"shape,omitempty"`
	Size       [2]int     `json:"size,omitempty" yaml:"size,omitempty"`
}

// Layer type names used in LayerSpec.Type.
const (
	TypeDense           = "dense"
	TypeConv2D          = "conv2d"
	TypeConv2DTranspose = "conv2d_transpose"
	TypeFlatten         = "flatten"
	TypeReshape         = "reshape"
	TypeMaxPool2D       = "maxpool2d"
	TypeUpSampling2D    = "upsampling2d"
	TypeActivation      = "activation"
)

// DenseSpec describes a dense layer.
func DenseSpec(units int, act Activation) LayerSpec {
	return LayerSpec{Type: TypeDense, Units: units, Activation: act}
}

// Conv2DSpec describes a 2D convolution.
func Conv2DSpec(filters int, kernel, strides [2]int, padding Padding, act Activation) LayerSpec {
	return LayerSpec{Type: TypeConv2D, Filters: filters, Kernel: kernel, Strides: strides, Padding: padding, Activation: act}
}

// Conv2DTransposeSpec describes a 2D transposed convolution.
func Conv2DTransposeSpec(filters int, kernel, strides [2]int, padding Padding, act Activation) LayerSpec {
	return LayerSpec{Type: TypeConv2DTranspose, Filters: filters, Kernel: kernel, Strides: strides, Padding: padding, Activation: act}
}

// FlattenSpec describes a flatten layer.
func FlattenSpec() LayerSpec { return LayerSpec{Type: TypeFlatten} }

// ReshapeSpec describes a reshape to the given per-sample shape.
func ReshapeSpec(shape ...int) LayerSpec { return LayerSpec{Type: TypeReshape, Shape: shape} }

// NewLayer creates an unbuilt layer from its spec.
func NewLayer(spec LayerSpec) (Layer, error) {
	switch strings.ToLower(spec.Type) {
	case TypeDense:
		return NewDense(spec.Units, spec.Activation)
	case TypeConv2D:
		return NewConv2D(spec.Filters, spec.Kernel, spec.Strides, spec.Padding, spec.Activation)
	case TypeConv2DTranspose:
		return NewConv2DTranspose(spec.Filters, spec.Kernel, spec.Strides, spec.Padding, spec.Activation)
	case TypeFlatten:
		return NewFlatten(), nil
	case TypeReshape:
		return NewReshape(spec.Shape...)
	case TypeMaxPool2D:
		return NewMaxPool2D(spec.Size, spec.Strides)
	case TypeUpSampling2D:
		return NewUpSampling2D(spec.Size)
	case TypeActivation:
		return NewActivationLayer(spec.Activation)
	default:
		return nil, fmt.Errorf("nn: unknown layer type %q", spec.Type)
	}
}

// batchOf returns an output array for n samples of the per-sample shape.
func batchOf(n int, perSample tensor.Shape) *tensor.Array[float64] {
	return tensor.Zeros[float64](append(tensor.Shape{n}, perSample...))
}

// checkInput panics when a batch does not match the shape the layer was built for.
func checkInput(layer string, x *tensor.Array[float64], perSample tensor.Shape) {
	if !x.Shape().PerSample().Equal(perSample) {
		panic(fmt.Sprintf("%s: expected per-sample shape %v, got batch %v", layer, perSample, x.Shape()))
	}
}
