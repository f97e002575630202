// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - RMSProp: Root Mean Square Propagation
//
// Optimizers work on float64 parameters that carry their own gradient buffer.
// The training loop back-propagates into those buffers, calls Step, then ZeroGrad.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for epoch := range epochs {
//	    model.Forward(input)
//	    model.Backward(lossGrad)
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOptimizer is returned by New for an unsupported optimizer name.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Parameter is a trainable value with its accumulated gradient.
// Value and Grad must have the same length and stay the same slices for the
// lifetime of the optimizer.
type Parameter interface {
	Name() string
	Value() []float64
	Grad() []float64
}

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step applies the accumulated gradients to all parameters.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called after each step to prevent gradient accumulation
	// across batches.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// New creates an optimizer by name: "sgd", "adam" or "rmsprop".
// A zero learning rate selects the optimizer's default.
func New(name string, params []Parameter, lr float64) (Optimizer, error) {
	switch strings.ToLower(name) {
	case "sgd":
		return NewSGD(params, SGDConfig{LR: lr}), nil
	case "adam", "":
		return NewAdam(params, AdamConfig{LR: lr}), nil
	case "rmsprop":
		return NewRMSProp(params, RMSPropConfig{LR: lr}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, name)
	}
}

// zeroGrad clears the gradient buffers of params.
func zeroGrad(params []Parameter) {
	for _, p := range params {
		clear(p.Grad())
	}
}
