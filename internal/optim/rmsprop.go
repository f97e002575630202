package optim

import "math"

// RMSProp divides the learning rate by a running average of recent gradient magnitudes.
//
// Update rule:
//
//	v_t = rho * v_{t-1} + (1-rho) * gradient²
//	param = param - lr * gradient / (sqrt(v_t) + eps)
type RMSProp struct {
	params []Parameter
	lr     float64
	rho    float64
	eps    float64
	v      [][]float64
}

// RMSPropConfig holds configuration for RMSProp optimizer.
type RMSPropConfig struct {
	LR  float64 // Learning rate (default: 0.001)
	Rho float64 // Discount factor of the running average (default: 0.9)
	Eps float64 // Term for numerical stability (default: 1e-7)
}

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(params []Parameter, config RMSPropConfig) *RMSProp {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}

	r := &RMSProp{
		params: params,
		lr:     config.LR,
		rho:    config.Rho,
		eps:    config.Eps,
		v:      make([][]float64, len(params)),
	}
	for i, p := range params {
		r.v[i] = make([]float64, len(p.Value()))
	}
	return r
}

// Step performs a single optimization step.
func (r *RMSProp) Step() {
	for i, param := range r.params {
		value, grad := param.Value(), param.Grad()
		v := r.v[i]
		for j := range value {
			g := grad[j]
			v[j] = r.rho*v[j] + (1.0-r.rho)*g*g
			value[j] -= r.lr * g / (math.Sqrt(v[j]) + r.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (r *RMSProp) ZeroGrad() {
	zeroGrad(r.params)
}

// GetLR returns the current learning rate.
func (r *RMSProp) GetLR() float64 {
	return r.lr
}

// SetLR updates the learning rate.
func (r *RMSProp) SetLR(lr float64) {
	r.lr = lr
}
