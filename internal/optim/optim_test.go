package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/internal/optim"
)

// param is a minimal trainable value for optimizer tests.
type param struct {
	name  string
	value []float64
	grad  []float64
}

func newParam(values ...float64) *param {
	return &param{name: "x", value: values, grad: make([]float64, len(values))}
}

func (p *param) Name() string     { return p.name }
func (p *param) Value() []float64 { return p.value }
func (p *param) Grad() []float64  { return p.grad }

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	x := newParam(2.0)
	optimizer := optim.NewSGD([]optim.Parameter{x}, optim.SGDConfig{LR: 0.1})

	x.grad[0] = 1.0
	optimizer.Step()

	// x_new = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, x.value[0], 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	x := newParam(2.0)
	optimizer := optim.NewSGD([]optim.Parameter{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	x.grad[0] = 1.0
	optimizer.Step() // v = 1, x = 1.9
	optimizer.Step() // v = 1.9, x = 1.71

	assert.InDelta(t, 1.71, x.value[0], 1e-12)
}

// TestAdam_FirstStep checks the bias-corrected first update, which moves each
// coordinate by lr regardless of gradient magnitude.
func TestAdam_FirstStep(t *testing.T) {
	x := newParam(1.0, -1.0)
	optimizer := optim.NewAdam([]optim.Parameter{x}, optim.AdamConfig{LR: 0.01, Eps: 1e-12})

	x.grad[0] = 5.0
	x.grad[1] = -0.001
	optimizer.Step()

	assert.InDelta(t, 0.99, x.value[0], 1e-9)
	assert.InDelta(t, -0.99, x.value[1], 1e-6)
	assert.Equal(t, 1, optimizer.GetTimestep())
}

// TestRMSProp_FirstStep checks v_1 = (1-rho) g².
func TestRMSProp_FirstStep(t *testing.T) {
	x := newParam(0.0)
	optimizer := optim.NewRMSProp([]optim.Parameter{x}, optim.RMSPropConfig{LR: 0.01, Eps: 1e-12})

	x.grad[0] = 2.0
	optimizer.Step()

	want := -0.01 * 2.0 / math.Sqrt(0.1*4.0)
	assert.InDelta(t, want, x.value[0], 1e-9)
}

// TestOptimizers_MinimizeQuadratic drives f(x) = (x-3)² to its minimum.
func TestOptimizers_MinimizeQuadratic(t *testing.T) {
	for _, name := range []string{"sgd", "adam", "rmsprop"} {
		t.Run(name, func(t *testing.T) {
			x := newParam(0.0)
			optimizer, err := optim.New(name, []optim.Parameter{x}, 0.01)
			require.NoError(t, err)

			for i := 0; i < 3000; i++ {
				x.grad[0] = 2 * (x.value[0] - 3)
				optimizer.Step()
				optimizer.ZeroGrad()
			}
			assert.InDelta(t, 3.0, x.value[0], 0.05)
			assert.Equal(t, 0.0, x.grad[0])
		})
	}
}

func TestDefaults(t *testing.T) {
	x := newParam(0)
	assert.Equal(t, 0.01, optim.NewSGD([]optim.Parameter{x}, optim.SGDConfig{}).GetLR())
	assert.Equal(t, 0.001, optim.NewAdam([]optim.Parameter{x}, optim.AdamConfig{}).GetLR())
	assert.Equal(t, 0.001, optim.NewRMSProp([]optim.Parameter{x}, optim.RMSPropConfig{}).GetLR())

	o := optim.NewAdam([]optim.Parameter{x}, optim.AdamConfig{})
	o.SetLR(0.5)
	assert.Equal(t, 0.5, o.GetLR())

	_, err := optim.New("lbfgs", nil, 0)
	assert.ErrorIs(t, err, optim.ErrUnknownOptimizer)
}
