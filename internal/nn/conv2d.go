package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/surrogate/internal/parallel"
	"github.com/born-ml/surrogate/internal/tensor"
)

// convOutput returns the output length and leading padding of a convolution
// along one axis, following the Keras rules for "same" and "valid".
func convOutput(in, kernel, stride int, padding Padding) (out, padBefore int) {
	if padding == Same {
		out = (in + stride - 1) / stride
		total := max((out-1)*stride+kernel-in, 0)
		return out, total / 2
	}
	return (in-kernel)/stride + 1, 0
}

// convTransposeOutput is the inverse of convOutput: the output length of a
// transposed convolution whose adjoint convolution maps out back to in.
func convTransposeOutput(in, kernel, stride int, padding Padding) (out, padBefore int) {
	if padding == Same {
		return in * stride, max(kernel-stride, 0) / 2
	}
	return (in-1)*stride + kernel, 0
}

// convWindow holds the geometry shared by Conv2D and Conv2DTranspose. Positions
// on the "small" side (conv output, transpose input) map to the "large" side
// through large = small*stride + k - pad.
type convWindow struct {
	filters int
	kernel  [2]int
	strides [2]int
	padding Padding
	act     Activation

	inH, inW, inC    int
	outH, outW, outC int
	padTop, padLeft  int

	weight *Parameter // [kernel_h, kernel_w, in_channels, filters]
	bias   *Parameter // [filters]
}

func newConvWindow(layer string, filters int, kernel, strides [2]int, padding Padding, act Activation) (convWindow, error) {
	if filters <= 0 {
		return convWindow{}, fmt.Errorf("%s: filters must be positive, got %d", layer, filters)
	}
	if kernel[0] <= 0 || kernel[1] <= 0 {
		return convWindow{}, fmt.Errorf("%s: kernel size must be positive, got %v", layer, kernel)
	}
	if strides == [2]int{} {
		strides = [2]int{1, 1}
	}
	if strides[0] <= 0 || strides[1] <= 0 {
		return convWindow{}, fmt.Errorf("%s: strides must be positive, got %v", layer, strides)
	}
	switch padding {
	case "":
		padding = Valid
	case Same, Valid:
	default:
		return convWindow{}, fmt.Errorf("%s: padding must be %q or %q, got %q", layer, Same, Valid, padding)
	}
	if err := act.validate(); err != nil {
		return convWindow{}, err
	}
	return convWindow{filters: filters, kernel: kernel, strides: strides, padding: padding, act: act}, nil
}

func (c *convWindow) allocate(rng *rand.Rand) {
	kh, kw := c.kernel[0], c.kernel[1]
	n := kh * kw * c.inC * c.filters
	c.weight = NewParameter("weight", tensor.Shape{kh, kw, c.inC, c.filters},
		Xavier(kh*kw*c.inC, kh*kw*c.filters, n, rng))
	c.bias = NewParameter("bias", tensor.Shape{c.filters}, make([]float64, c.filters))
}

func (c *convWindow) wIndex(ki, kj, ci, co int) int {
	return ((ki*c.kernel[1]+kj)*c.inC+ci)*c.filters + co
}

func checkImage(layer string, in tensor.Shape) error {
	if len(in) != 3 {
		return fmt.Errorf("%s: expected per-sample input (height, width, channels), got %v", layer, in)
	}
	return nil
}

// Conv2D implements a 2D convolution over NHWC images.
//
// Output size per spatial axis:
//   - valid: (in - kernel) / stride + 1
//   - same:  ceil(in / stride), with zero padding split evenly (extra on the far side)
//
// Example:
//
//	conv, _ := nn.NewConv2D(16, [2]int{5, 1}, [2]int{1, 1}, nn.Same, nn.ReLU)
//	out, _ := conv.Build(tensor.Shape{1, 1, 40}, rng) // (1, 1, 16)
type Conv2D struct {
	convWindow
	x    []float64
	z, y []float64
	n    int
}

// NewConv2D creates an unbuilt Conv2D layer.
//
// Parameters:
//   - filters: Number of output channels
//   - kernel: Kernel (height, width)
//   - strides: Stride (height, width); zero means 1
//   - padding: Same or Valid; empty means Valid
//   - act: Activation applied to the output
func NewConv2D(filters int, kernel, strides [2]int, padding Padding, act Activation) (*Conv2D, error) {
	w, err := newConvWindow("conv2d", filters, kernel, strides, padding, act)
	if err != nil {
		return nil, err
	}
	return &Conv2D{convWindow: w}, nil
}

// Build implements Layer.
func (c *Conv2D) Build(in tensor.Shape, rng *rand.Rand) (tensor.Shape, error) {
	if err := checkImage("conv2d", in); err != nil {
		return nil, err
	}
	c.inH, c.inW, c.inC = in[0], in[1], in[2]
	c.outH, c.padTop = convOutput(c.inH, c.kernel[0], c.strides[0], c.padding)
	c.outW, c.padLeft = convOutput(c.inW, c.kernel[1], c.strides[1], c.padding)
	c.outC = c.filters
	if c.outH <= 0 || c.outW <= 0 {
		return nil, fmt.Errorf("conv2d: kernel %v does not fit input %v with %s padding", c.kernel, in, c.padding)
	}
	c.allocate(rng)
	return tensor.Shape{c.outH, c.outW, c.outC}, nil
}

// Forward applies the convolution to a batch of images.
//
// Input shape: [batch, in_height, in_width, in_channels]
// Output shape: [batch, out_height, out_width, filters]
func (c *Conv2D) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("conv2d", x, tensor.Shape{c.inH, c.inW, c.inC})
	c.n = x.NumSamples()
	c.x = x.Data()
	inSize, outSize := c.inH*c.inW*c.inC, c.outH*c.outW*c.outC
	z := make([]float64, c.n*outSize)
	w, b := c.weight.Value(), c.bias.Value()

	parallel.For(c.n, func(n int) {
		xs := c.x[n*inSize : (n+1)*inSize]
		zs := z[n*outSize : (n+1)*outSize]
		for oh := 0; oh < c.outH; oh++ {
			for ow := 0; ow < c.outW; ow++ {
				out := zs[(oh*c.outW+ow)*c.outC : (oh*c.outW+ow+1)*c.outC]
				copy(out, b)
				for ki := 0; ki < c.kernel[0]; ki++ {
					ih := oh*c.strides[0] + ki - c.padTop
					if ih < 0 || ih >= c.inH {
						continue
					}
					for kj := 0; kj < c.kernel[1]; kj++ {
						iw := ow*c.strides[1] + kj - c.padLeft
						if iw < 0 || iw >= c.inW {
							continue
						}
						for ci := 0; ci < c.inC; ci++ {
							v := xs[(ih*c.inW+iw)*c.inC+ci]
							if v == 0 {
								continue
							}
							row := w[c.wIndex(ki, kj, ci, 0) : c.wIndex(ki, kj, ci, 0)+c.outC]
							for co, wv := range row {
								out[co] += v * wv
							}
						}
					}
				}
			}
		}
	}, parallel.DefaultConfig())

	c.z = z
	c.y = c.act.apply(z)
	return tensor.MustFromSlice(c.y, tensor.Shape{c.n, c.outH, c.outW, c.outC})
}

// Backward accumulates kernel and bias gradients and returns the input gradient.
func (c *Conv2D) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	dz := append([]float64(nil), grad.Data()...)
	c.act.backward(dz, c.z, c.y)
	inSize, outSize := c.inH*c.inW*c.inC, c.outH*c.outW*c.outC
	w := c.weight.Value()
	dw, db := c.weight.Grad(), c.bias.Grad()

	// Each output channel owns its slice of dW and db.
	parallel.For(c.outC, func(co int) {
		for n := 0; n < c.n; n++ {
			xs := c.x[n*inSize : (n+1)*inSize]
			for oh := 0; oh < c.outH; oh++ {
				for ow := 0; ow < c.outW; ow++ {
					g := dz[n*outSize+(oh*c.outW+ow)*c.outC+co]
					db[co] += g
					if g == 0 {
						continue
					}
					for ki := 0; ki < c.kernel[0]; ki++ {
						ih := oh*c.strides[0] + ki - c.padTop
						if ih < 0 || ih >= c.inH {
							continue
						}
						for kj := 0; kj < c.kernel[1]; kj++ {
							iw := ow*c.strides[1] + kj - c.padLeft
							if iw < 0 || iw >= c.inW {
								continue
							}
							for ci := 0; ci < c.inC; ci++ {
								dw[c.wIndex(ki, kj, ci, co)] += xs[(ih*c.inW+iw)*c.inC+ci] * g
							}
						}
					}
				}
			}
		}
	}, parallel.Workers(parallel.DefaultConfig().NumWorkers))

	dx := make([]float64, c.n*inSize)
	parallel.For(c.n, func(n int) {
		dxs := dx[n*inSize : (n+1)*inSize]
		for oh := 0; oh < c.outH; oh++ {
			for ow := 0; ow < c.outW; ow++ {
				gs := dz[n*outSize+(oh*c.outW+ow)*c.outC : n*outSize+(oh*c.outW+ow+1)*c.outC]
				for ki := 0; ki < c.kernel[0]; ki++ {
					ih := oh*c.strides[0] + ki - c.padTop
					if ih < 0 || ih >= c.inH {
						continue
					}
					for kj := 0; kj < c.kernel[1]; kj++ {
						iw := ow*c.strides[1] + kj - c.padLeft
						if iw < 0 || iw >= c.inW {
							continue
						}
						for ci := 0; ci < c.inC; ci++ {
							row := w[c.wIndex(ki, kj, ci, 0) : c.wIndex(ki, kj, ci, 0)+c.outC]
							var sum float64
							for co, g := range gs {
								sum += row[co] * g
							}
							dxs[(ih*c.inW+iw)*c.inC+ci] += sum
						}
					}
				}
			}
		}
	}, parallel.DefaultConfig())

	return tensor.MustFromSlice(dx, tensor.Shape{c.n, c.inH, c.inW, c.inC})
}

// Parameters returns the kernel and bias.
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// Spec implements Layer.
func (c *Conv2D) Spec() LayerSpec {
	return Conv2DSpec(c.filters, c.kernel, c.strides, c.padding, c.act)
}

// Conv2DTranspose implements a transposed 2D convolution over NHWC images, the
// adjoint of Conv2D with the same kernel, strides and padding.
//
// Output size per spatial axis:
//   - valid: (in - 1) * stride + kernel
//   - same:  in * stride
type Conv2DTranspose struct {
	convWindow
	x    []float64
	z, y []float64
	n    int
}

// NewConv2DTranspose creates an unbuilt Conv2DTranspose layer. Arguments follow NewConv2D.
func NewConv2DTranspose(filters int, kernel, strides [2]int, padding Padding, act Activation) (*Conv2DTranspose, error) {
	w, err := newConvWindow("conv2d_transpose", filters, kernel, strides, padding, act)
	if err != nil {
		return nil, err
	}
	return &Conv2DTranspose{convWindow: w}, nil
}

// Build implements Layer.
func (c *Conv2DTranspose) Build(in tensor.Shape, rng *rand.Rand) (tensor.Shape, error) {
	if err := checkImage("conv2d_transpose", in); err != nil {
		return nil, err
	}
	c.inH, c.inW, c.inC = in[0], in[1], in[2]
	c.outH, c.padTop = convTransposeOutput(c.inH, c.kernel[0], c.strides[0], c.padding)
	c.outW, c.padLeft = convTransposeOutput(c.inW, c.kernel[1], c.strides[1], c.padding)
	c.outC = c.filters
	c.allocate(rng)
	return tensor.Shape{c.outH, c.outW, c.outC}, nil
}

// Forward scatters every input pixel through the kernel into the output.
//
// Input shape: [batch, in_height, in_width, in_channels]
// Output shape: [batch, out_height, out_width, filters]
func (c *Conv2DTranspose) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("conv2d_transpose", x, tensor.Shape{c.inH, c.inW, c.inC})
	c.n = x.NumSamples()
	c.x = x.Data()
	inSize, outSize := c.inH*c.inW*c.inC, c.outH*c.outW*c.outC
	z := make([]float64, c.n*outSize)
	w, b := c.weight.Value(), c.bias.Value()

	parallel.For(c.n, func(n int) {
		xs := c.x[n*inSize : (n+1)*inSize]
		zs := z[n*outSize : (n+1)*outSize]
		for p := 0; p < c.outH*c.outW; p++ {
			copy(zs[p*c.outC:(p+1)*c.outC], b)
		}
		for ih := 0; ih < c.inH; ih++ {
			for iw := 0; iw < c.inW; iw++ {
				for ki := 0; ki < c.kernel[0]; ki++ {
					oh := ih*c.strides[0] + ki - c.padTop
					if oh < 0 || oh >= c.outH {
						continue
					}
					for kj := 0; kj < c.kernel[1]; kj++ {
						ow := iw*c.strides[1] + kj - c.padLeft
						if ow < 0 || ow >= c.outW {
							continue
						}
						out := zs[(oh*c.outW+ow)*c.outC : (oh*c.outW+ow+1)*c.outC]
						for ci := 0; ci < c.inC; ci++ {
							v := xs[(ih*c.inW+iw)*c.inC+ci]
							if v == 0 {
								continue
							}
							row := w[c.wIndex(ki, kj, ci, 0) : c.wIndex(ki, kj, ci, 0)+c.outC]
							for co, wv := range row {
								out[co] += v * wv
							}
						}
					}
				}
			}
		}
	}, parallel.DefaultConfig())

	c.z = z
	c.y = c.act.apply(z)
	return tensor.MustFromSlice(c.y, tensor.Shape{c.n, c.outH, c.outW, c.outC})
}

// Backward accumulates kernel and bias gradients and returns the input gradient.
func (c *Conv2DTranspose) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	dz := append([]float64(nil), grad.Data()...)
	c.act.backward(dz, c.z, c.y)
	inSize, outSize := c.inH*c.inW*c.inC, c.outH*c.outW*c.outC
	w := c.weight.Value()
	dw, db := c.weight.Grad(), c.bias.Grad()

	parallel.For(c.outC, func(co int) {
		for n := 0; n < c.n; n++ {
			for p := 0; p < c.outH*c.outW; p++ {
				db[co] += dz[n*outSize+p*c.outC+co]
			}
			xs := c.x[n*inSize : (n+1)*inSize]
			for ih := 0; ih < c.inH; ih++ {
				for iw := 0; iw < c.inW; iw++ {
					for ki := 0; ki < c.kernel[0]; ki++ {
						oh := ih*c.strides[0] + ki - c.padTop
						if oh < 0 || oh >= c.outH {
							continue
						}
						for kj := 0; kj < c.kernel[1]; kj++ {
							ow := iw*c.strides[1] + kj - c.padLeft
							if ow < 0 || ow >= c.outW {
								continue
							}
							g := dz[n*outSize+(oh*c.outW+ow)*c.outC+co]
							if g == 0 {
								continue
							}
							for ci := 0; ci < c.inC; ci++ {
								dw[c.wIndex(ki, kj, ci, co)] += xs[(ih*c.inW+iw)*c.inC+ci] * g
							}
						}
					}
				}
			}
		}
	}, parallel.Workers(parallel.DefaultConfig().NumWorkers))

	dx := make([]float64, c.n*inSize)
	parallel.For(c.n, func(n int) {
		dxs := dx[n*inSize : (n+1)*inSize]
		for ih := 0; ih < c.inH; ih++ {
			for iw := 0; iw < c.inW; iw++ {
				for ki := 0; ki < c.kernel[0]; ki++ {
					oh := ih*c.strides[0] + ki - c.padTop
					if oh < 0 || oh >= c.outH {
						continue
					}
					for kj := 0; kj < c.kernel[1]; kj++ {
						ow := iw*c.strides[1] + kj - c.padLeft
						if ow < 0 || ow >= c.outW {
							continue
						}
						gs := dz[n*outSize+(oh*c.outW+ow)*c.outC : n*outSize+(oh*c.outW+ow+1)*c.outC]
						for ci := 0; ci < c.inC; ci++ {
							row := w[c.wIndex(ki, kj, ci, 0) : c.wIndex(ki, kj, ci, 0)+c.outC]
							var sum float64
							for co, g := range gs {
								sum += row[co] * g
							}
							dxs[(ih*c.inW+iw)*c.inC+ci] += sum
						}
					}
				}
			}
		}
	}, parallel.DefaultConfig())

	return tensor.MustFromSlice(dx, tensor.Shape{c.n, c.inH, c.inW, c.inC})
}

// Parameters returns the kernel and bias.
func (c *Conv2DTranspose) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// Spec implements Layer.
func (c *Conv2DTranspose) Spec() LayerSpec {
	return Conv2DTransposeSpec(c.filters, c.kernel, c.strides, c.padding, c.act)
}
