// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the float64 network engine behind the surrogate models.
//
// # Overview
//
// This package contains:
//   - Layers: Dense, Conv2D, Conv2DTranspose, MaxPool2D, UpSampling2D, Flatten, Reshape
//   - Activations: ReLU, Sigmoid, Tanh, Linear
//   - Loss functions: MSELoss
//   - Models: Sequential, FeedForward, Autoencoder
//   - Initialization: Xavier, He
//
// Images are NHWC: (samples, height, width, channels).
//
// # Basic Usage
//
//	import "github.com/born-ml/surrogate/nn"
//
//	func main() {
//	    net, _ := nn.NewFeedForward(nn.FeedForwardConfig{
//	        Layers:         nn.DenseStack(2, 32, 1, nn.Tanh),
//	        NormalizationX: nn.MinMax,
//	        Train:          nn.DefaultTrainConfig(),
//	    })
//	    _ = net.Train(x, y)
//	    pred, _ := net.Predict(x)
//
//	    // d pred / d x in physical units, one (outputs, inputs) array per sample
//	    jac, _ := net.InputGradients(x)
//	}
//
// # Layers
//
// Layers are described by LayerSpec values, which is also how they are stored in
// checkpoints:
//
//	specs := []nn.LayerSpec{
//	    nn.Conv2DSpec(16, [2]int{5, 1}, [2]int{1, 1}, nn.Same, nn.ReLU),
//	    nn.FlattenSpec(),
//	    nn.DenseSpec(8, nn.Linear),
//	}
//	model, _ := nn.NewSequential(tensor.Shape{1, 1, 50}, rng, specs...)
//
// # Training
//
// Training runs mini-batch gradient descent with analytic back-propagation and
// one of the optimizers of package optim. All randomness (weight initialization
// and shuffling) comes from TrainConfig.Seed, so equal configs train equal
// networks.
//
// # Persistence
//
// Save and Load write .born checkpoints: a JSON header with the layer specs and
// normalization parameters followed by raw float64 weights protected by SHA-256.
package nn
