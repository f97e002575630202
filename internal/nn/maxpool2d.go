package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/surrogate/internal/tensor"
)

// MaxPool2D implements 2D max pooling over NHWC images with valid padding.
//
// Output size per spatial axis: (in - pool) / stride + 1.
//
// Example:
//
//	pool, _ := nn.NewMaxPool2D([2]int{2, 2}, [2]int{})
//	out, _ := pool.Build(tensor.Shape{28, 28, 1}, rng) // (14, 14, 1)
type MaxPool2D struct {
	size, strides [2]int
	inH, inW, ch  int
	outH, outW    int
	argmax        []int
	n             int
}

// NewMaxPool2D creates a max pooling layer. A zero stride defaults to the pool size.
func NewMaxPool2D(size, strides [2]int) (*MaxPool2D, error) {
	if size[0] <= 0 || size[1] <= 0 {
		return nil, fmt.Errorf("maxpool2d: pool size must be positive, got %v", size)
	}
	if strides == [2]int{} {
		strides = size
	}
	if strides[0] <= 0 || strides[1] <= 0 {
		return nil, fmt.Errorf("maxpool2d: strides must be positive, got %v", strides)
	}
	return &MaxPool2D{size: size, strides: strides}, nil
}

// Build implements Layer.
func (m *MaxPool2D) Build(in tensor.Shape, _ *rand.Rand) (tensor.Shape, error) {
	if err := checkImage("maxpool2d", in); err != nil {
		return nil, err
	}
	m.inH, m.inW, m.ch = in[0], in[1], in[2]
	m.outH, _ = convOutput(m.inH, m.size[0], m.strides[0], Valid)
	m.outW, _ = convOutput(m.inW, m.size[1], m.strides[1], Valid)
	if m.outH <= 0 || m.outW <= 0 {
		return nil, fmt.Errorf("maxpool2d: pool %v does not fit input %v", m.size, in)
	}
	return tensor.Shape{m.outH, m.outW, m.ch}, nil
}

// Forward takes the maximum over every window and remembers where it was.
func (m *MaxPool2D) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("maxpool2d", x, tensor.Shape{m.inH, m.inW, m.ch})
	m.n = x.NumSamples()
	src := x.Data()
	inSize := m.inH * m.inW * m.ch
	out := batchOf(m.n, tensor.Shape{m.outH, m.outW, m.ch})
	dst := out.Data()
	m.argmax = make([]int, len(dst))

	k := 0
	for n := 0; n < m.n; n++ {
		for oh := 0; oh < m.outH; oh++ {
			for ow := 0; ow < m.outW; ow++ {
				for c := 0; c < m.ch; c++ {
					best, bestIdx := math.Inf(-1), -1
					for i := 0; i < m.size[0]; i++ {
						for j := 0; j < m.size[1]; j++ {
							ih, iw := oh*m.strides[0]+i, ow*m.strides[1]+j
							idx := n*inSize + (ih*m.inW+iw)*m.ch + c
							if src[idx] > best || bestIdx < 0 {
								best, bestIdx = src[idx], idx
							}
						}
					}
					dst[k], m.argmax[k] = best, bestIdx
					k++
				}
			}
		}
	}
	return out
}

// Backward routes each gradient to the input position that won the max.
func (m *MaxPool2D) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	dx := batchOf(m.n, tensor.Shape{m.inH, m.inW, m.ch})
	d := dx.Data()
	for k, g := range grad.Data() {
		d[m.argmax[k]] += g
	}
	return dx
}

// Parameters returns nil.
func (m *MaxPool2D) Parameters() []*Parameter { return nil }

// Spec implements Layer.
func (m *MaxPool2D) Spec() LayerSpec {
	return LayerSpec{Type: TypeMaxPool2D, Size: m.size, Strides: m.strides}
}

// UpSampling2D repeats every pixel size[0] times along height and size[1]
// times along width (nearest-neighbour up-sampling).
type UpSampling2D struct {
	size         [2]int
	inH, inW, ch int
	n            int
}

// NewUpSampling2D creates an up-sampling layer.
func NewUpSampling2D(size [2]int) (*UpSampling2D, error) {
	if size[0] <= 0 || size[1] <= 0 {
		return nil, fmt.Errorf("upsampling2d: size must be positive, got %v", size)
	}
	return &UpSampling2D{size: size}, nil
}

// Build implements Layer.
func (u *UpSampling2D) Build(in tensor.Shape, _ *rand.Rand) (tensor.Shape, error) {
	if err := checkImage("upsampling2d", in); err != nil {
		return nil, err
	}
	u.inH, u.inW, u.ch = in[0], in[1], in[2]
	return tensor.Shape{u.inH * u.size[0], u.inW * u.size[1], u.ch}, nil
}

func (u *UpSampling2D) source(n, oh, ow, c int) int {
	return n*u.inH*u.inW*u.ch + ((oh/u.size[0])*u.inW+ow/u.size[1])*u.ch + c
}

// Forward implements Layer.
func (u *UpSampling2D) Forward(x *tensor.Array[float64]) *tensor.Array[float64] {
	checkInput("upsampling2d", x, tensor.Shape{u.inH, u.inW, u.ch})
	u.n = x.NumSamples()
	src := x.Data()
	outH, outW := u.inH*u.size[0], u.inW*u.size[1]
	out := batchOf(u.n, tensor.Shape{outH, outW, u.ch})
	dst := out.Data()
	k := 0
	for n := 0; n < u.n; n++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				for c := 0; c < u.ch; c++ {
					dst[k] = src[u.source(n, oh, ow, c)]
					k++
				}
			}
		}
	}
	return out
}

// Backward sums the gradients of every copy of a pixel.
func (u *UpSampling2D) Backward(grad *tensor.Array[float64]) *tensor.Array[float64] {
	dx := batchOf(u.n, tensor.Shape{u.inH, u.inW, u.ch})
	d, g := dx.Data(), grad.Data()
	outH, outW := u.inH*u.size[0], u.inW*u.size[1]
	k := 0
	for n := 0; n < u.n; n++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				for c := 0; c < u.ch; c++ {
					d[u.source(n, oh, ow, c)] += g[k]
					k++
				}
			}
		}
	}
	return dx
}

// Parameters returns nil.
func (u *UpSampling2D) Parameters() []*Parameter { return nil }

// Spec implements Layer.
func (u *UpSampling2D) Spec() LayerSpec {
	return LayerSpec{Type: TypeUpSampling2D, Size: u.size}
}
