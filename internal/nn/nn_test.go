package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/surrogate/internal/tensor"
)

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // test data
}

// checkGradients compares the analytic parameter and input gradients of model
// with central finite differences of an MSE loss against a random target.
func checkGradients(t *testing.T, model *Sequential, x *tensor.Array[float64]) {
	t.Helper()
	rng := newRNG(7)
	var loss MSELoss

	out := model.Forward(x)
	target := tensor.Randn(out.Shape(), rng)
	dx := model.Backward(loss.Backward(out, target)).Data()

	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
	for _, p := range model.Parameters() {
		analytic := append([]float64(nil), p.Grad()...)
		orig := append([]float64(nil), p.Value()...)
		numeric := fd.Gradient(nil, func(v []float64) float64 {
			copy(p.Value(), v)
			return loss.Forward(model.Forward(x), target)
		}, orig, settings)
		copy(p.Value(), orig)
		assert.InDeltaSlice(t, numeric, analytic, 1e-6, "parameter %s", p.Name())
	}

	numericX := fd.Gradient(nil, func(v []float64) float64 {
		return loss.Forward(model.Forward(tensor.MustFromSlice(v, x.Shape())), target)
	}, x.Data(), settings)
	assert.InDeltaSlice(t, numericX, dx, 1e-6, "input gradient")
}

func TestDenseForward(t *testing.T) {
	d, err := NewDense(2, Linear)
	require.NoError(t, err)
	out, err := d.Build(tensor.Shape{3}, newRNG(1))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, out)

	copy(d.weight.Value(), []float64{1, 0, 0, 1, 1, 1}) // [3, 2]
	copy(d.bias.Value(), []float64{0.5, -0.5})

	x := tensor.MustFromSlice([]float64{1, 2, 3, -1, 0, 1}, tensor.Shape{2, 3})
	y := d.Forward(x)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.Equal(t, []float64{4.5, 4.5, 0.5, 0.5}, y.Data())

	_, err = d.Build(tensor.Shape{2, 2}, newRNG(1))
	assert.Error(t, err)
}

func TestDenseGradients(t *testing.T) {
	model, err := NewSequential(tensor.Shape{3}, newRNG(3),
		DenseSpec(5, Tanh),
		DenseSpec(4, Sigmoid),
		DenseSpec(2, Linear),
	)
	require.NoError(t, err)
	checkGradients(t, model, tensor.Randn(tensor.Shape{4, 3}, newRNG(4)))
}

func TestConvGradients(t *testing.T) {
	model, err := NewSequential(tensor.Shape{5, 4, 2}, newRNG(5),
		Conv2DSpec(3, [2]int{3, 2}, [2]int{2, 1}, Same, Tanh),
		Conv2DTransposeSpec(2, [2]int{3, 3}, [2]int{2, 2}, Valid, Sigmoid),
		LayerSpec{Type: TypeMaxPool2D, Size: [2]int{2, 2}},
		LayerSpec{Type: TypeUpSampling2D, Size: [2]int{2, 1}},
		FlattenSpec(),
		DenseSpec(3, Linear),
	)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3}, model.OutputShape())
	checkGradients(t, model, tensor.Randn(tensor.Shape{2, 5, 4, 2}, newRNG(6)))
}

func TestConvShapes(t *testing.T) {
	tests := []struct {
		name    string
		spec    LayerSpec
		in, out tensor.Shape
	}{
		{"same stride 1", Conv2DSpec(8, [2]int{5, 1}, [2]int{1, 1}, Same, ReLU), tensor.Shape{1, 1, 40}, tensor.Shape{1, 1, 8}},
		{"valid", Conv2DSpec(4, [2]int{3, 3}, [2]int{1, 1}, Valid, ReLU), tensor.Shape{28, 28, 1}, tensor.Shape{26, 26, 4}},
		{"same stride 2", Conv2DSpec(4, [2]int{3, 3}, [2]int{2, 2}, Same, ReLU), tensor.Shape{7, 8, 1}, tensor.Shape{4, 4, 4}},
		{"transpose same", Conv2DTransposeSpec(6, [2]int{5, 1}, [2]int{1, 1}, Same, Linear), tensor.Shape{1, 1, 16}, tensor.Shape{1, 1, 6}},
		{"transpose stride 2", Conv2DTransposeSpec(2, [2]int{3, 3}, [2]int{2, 2}, Same, Linear), tensor.Shape{4, 4, 3}, tensor.Shape{8, 8, 2}},
		{"transpose valid", Conv2DTransposeSpec(2, [2]int{3, 3}, [2]int{2, 2}, Valid, Linear), tensor.Shape{4, 4, 3}, tensor.Shape{9, 9, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, err := NewLayer(tt.spec)
			require.NoError(t, err)
			out, err := layer.Build(tt.in, newRNG(1))
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)
		})
	}

	conv, err := NewConv2D(1, [2]int{5, 5}, [2]int{1, 1}, Valid, Linear)
	require.NoError(t, err)
	_, err = conv.Build(tensor.Shape{3, 3, 1}, newRNG(1))
	assert.Error(t, err)

	_, err = NewConv2D(0, [2]int{3, 3}, [2]int{1, 1}, Same, Linear)
	assert.Error(t, err)
	_, err = NewConv2D(1, [2]int{3, 3}, [2]int{1, 1}, "full", Linear)
	assert.Error(t, err)
}

func TestConv2DForward(t *testing.T) {
	conv, err := NewConv2D(1, [2]int{2, 2}, [2]int{1, 1}, Valid, Linear)
	require.NoError(t, err)
	_, err = conv.Build(tensor.Shape{3, 3, 1}, newRNG(1))
	require.NoError(t, err)
	copy(conv.weight.Value(), []float64{1, 1, 1, 1})
	conv.bias.Value()[0] = 1

	x := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 3, 3, 1})
	y := conv.Forward(x)
	assert.Equal(t, tensor.Shape{1, 2, 2, 1}, y.Shape())
	assert.Equal(t, []float64{13, 17, 25, 29}, y.Data())
}

// A transposed convolution with the same geometry and transposed kernel is the
// adjoint of the convolution: <conv(x), y> == <x, convT(y)>.
func TestConv2DTransposeIsAdjoint(t *testing.T) {
	for _, k := range []int{2, 3, 4} {
		conv, err := NewConv2D(3, [2]int{k, k}, [2]int{2, 2}, Same, Linear)
		require.NoError(t, err)
		out, err := conv.Build(tensor.Shape{4, 4, 2}, newRNG(1))
		require.NoError(t, err)

		convT, err := NewConv2DTranspose(2, [2]int{k, k}, [2]int{2, 2}, Same, Linear)
		require.NoError(t, err)
		back, err := convT.Build(out, newRNG(2))
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{4, 4, 2}, back)

		w, wt := conv.weight.Value(), convT.weight.Value()
		for ki := 0; ki < k; ki++ {
			for kj := 0; kj < k; kj++ {
				for a := 0; a < 2; a++ {
					for b := 0; b < 3; b++ {
						wt[convT.wIndex(ki, kj, b, a)] = w[conv.wIndex(ki, kj, a, b)]
					}
				}
			}
		}

		x := tensor.Randn(tensor.Shape{1, 4, 4, 2}, newRNG(3))
		y := tensor.Randn(append(tensor.Shape{1}, out...), newRNG(4))
		lhs := floats.Dot(conv.Forward(x).Data(), y.Data())
		rhs := floats.Dot(x.Data(), convT.Forward(y).Data())
		assert.InDelta(t, lhs, rhs, 1e-9, "kernel %d", k)
	}
}

func TestPoolingForward(t *testing.T) {
	pool, err := NewMaxPool2D([2]int{2, 2}, [2]int{})
	require.NoError(t, err)
	out, err := pool.Build(tensor.Shape{2, 4, 1}, newRNG(1))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 1}, out)

	x := tensor.MustFromSlice([]float64{1, 5, 2, 0, 3, 4, 8, 7}, tensor.Shape{1, 2, 4, 1})
	assert.Equal(t, []float64{5, 8}, pool.Forward(x).Data())
	dx := pool.Backward(tensor.MustFromSlice([]float64{1, 2}, tensor.Shape{1, 1, 2, 1}))
	assert.Equal(t, []float64{0, 1, 0, 0, 0, 0, 2, 0}, dx.Data())

	up, err := NewUpSampling2D([2]int{2, 1})
	require.NoError(t, err)
	out, err = up.Build(tensor.Shape{1, 2, 1}, newRNG(1))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 1}, out)
	y := up.Forward(tensor.MustFromSlice([]float64{3, 4}, tensor.Shape{1, 1, 2, 1}))
	assert.Equal(t, []float64{3, 4, 3, 4}, y.Data())
}

func TestActivations(t *testing.T) {
	relu, err := NewActivationLayer(ReLU)
	require.NoError(t, err)
	_, err = relu.Build(tensor.Shape{4}, nil)
	require.NoError(t, err)

	y := relu.Forward(tensor.MustFromSlice([]float64{-1, 0, 2, -3}, tensor.Shape{1, 4}))
	assert.Equal(t, []float64{0, 0, 2, 0}, y.Data())
	g := relu.Backward(tensor.Full(tensor.Shape{1, 4}, 1.0))
	assert.Equal(t, []float64{0, 0, 1, 0}, g.Data())

	act, err := ParseActivation("")
	require.NoError(t, err)
	assert.Equal(t, Linear, act)
	_, err = ParseActivation("softmax")
	assert.Error(t, err)
}

func TestMSELoss(t *testing.T) {
	var mse MSELoss
	p := tensor.MustFromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	y := tensor.MustFromSlice([]float64{1, 0, 3, 2}, tensor.Shape{2, 2})
	assert.InDelta(t, 2.0, mse.Forward(p, y), 1e-12)
	assert.Equal(t, []float64{0, 1, 0, 1}, mse.Backward(p, y).Data())

	_, err := NewLoss("huber")
	assert.Error(t, err)
}

func TestSequential(t *testing.T) {
	model, err := NewSequential(tensor.Shape{1, 1, 6}, newRNG(1),
		Conv2DSpec(4, [2]int{5, 1}, [2]int{1, 1}, Same, ReLU),
		FlattenSpec(),
		DenseSpec(2, Linear),
		DenseSpec(3, ReLU),
		ReshapeSpec(1, 1, 3),
	)
	require.NoError(t, err)
	assert.Equal(t, 5, model.Len())
	assert.Equal(t, tensor.Shape{1, 1, 3}, model.OutputShape())

	var names []string
	for _, p := range model.Parameters() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"0.weight", "0.bias", "2.weight", "2.bias", "3.weight", "3.bias"}, names)

	state := model.StateDict()
	other, err := NewSequential(tensor.Shape{1, 1, 6}, newRNG(2), model.Specs()...)
	require.NoError(t, err)
	require.NoError(t, other.LoadStateDict(state))
	x := tensor.Randn(tensor.Shape{3, 1, 1, 6}, newRNG(3))
	assert.Equal(t, model.Forward(x).Data(), other.Forward(x).Data())

	delete(state, "2.bias")
	assert.Error(t, other.LoadStateDict(state))
	assert.Panics(t, func() { model.Layer(5) })

	_, err = NewSequential(tensor.Shape{2, 2}, newRNG(1), DenseSpec(3, Linear))
	assert.Error(t, err)
	_, err = NewSequential(tensor.Shape{4}, newRNG(1), LayerSpec{Type: "lstm"})
	assert.Error(t, err)
	_, err = NewSequential(tensor.Shape{4}, newRNG(1), ReshapeSpec(3))
	assert.Error(t, err)
}
