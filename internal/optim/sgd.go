package optim

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []Parameter
	lr         float64
	momentum   float64
	velocities [][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	s := &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
	}
	if s.momentum != 0 {
		s.velocities = make([][]float64, len(params))
		for i, p := range params {
			s.velocities[i] = make([]float64, len(p.Value()))
		}
	}
	return s
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	for i, param := range s.params {
		value, grad := param.Value(), param.Grad()
		if s.momentum == 0 {
			for j := range value {
				value[j] -= s.lr * grad[j]
			}
			continue
		}

		velocity := s.velocities[i]
		for j := range value {
			velocity[j] = s.momentum*velocity[j] + grad[j]
			value[j] -= s.lr * velocity[j]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
