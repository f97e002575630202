// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - RMSProp: Root Mean Square Propagation
//   - Optimizer interface for custom optimizers
//
// Optimizers work on any Parameter: a float64 value slice with a gradient buffer
// of the same length. nn.Parameter implements it.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/surrogate/nn"
//	    "github.com/born-ml/surrogate/optim"
//	)
//
//	func main() {
//	    model, _ := nn.NewSequential(tensor.Shape{3}, rng, nn.DenseSpec(1, nn.Linear))
//
//	    params := make([]optim.Parameter, 0)
//	    for _, p := range model.Parameters() {
//	        params = append(params, p)
//	    }
//	    optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.001})
//
//	    // Training loop
//	    for epoch := range 10 {
//	        pred := model.Forward(x)
//	        model.Backward(criterion.Backward(pred, y))
//	        optimizer.Step()
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// # Choosing by Name
//
// Configuration files name optimizers; New resolves the name:
//
//	optimizer, err := optim.New("rmsprop", params, 1e-3)
package optim
