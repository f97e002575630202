// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/surrogate/internal/nn"
	"github.com/born-ml/surrogate/internal/preprocess"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Core interfaces

// Layer is a differentiable building block of a Sequential model.
type Layer = nn.Layer

// Network is the capability surrogate stages train through.
type Network = nn.Network

// Loss measures predictions against targets and differentiates the measure.
type Loss = nn.Loss

// Parameter is a trainable weight with its gradient buffer.
type Parameter = nn.Parameter

// ErrNotTrained is returned by prediction and persistence before training.
var ErrNotTrained = nn.ErrNotTrained

// Layer descriptions

// LayerSpec describes one layer; it is also the checkpoint form of a layer.
type LayerSpec = nn.LayerSpec

// Padding selects how convolutions treat borders.
type Padding = nn.Padding

// Padding modes.
const (
	Same  Padding = nn.Same
	Valid Padding = nn.Valid
)

// Activation names an element-wise nonlinearity.
type Activation = nn.Activation

// Activations.
const (
	Linear  Activation = nn.Linear
	ReLU    Activation = nn.ReLU
	Sigmoid Activation = nn.Sigmoid
	Tanh    Activation = nn.Tanh
)

// ParseActivation validates a configuration name.
func ParseActivation(s string) (Activation, error) {
	return nn.ParseActivation(s)
}

// DenseSpec describes a fully connected layer.
func DenseSpec(units int, act Activation) LayerSpec {
	return nn.DenseSpec(units, act)
}

// Conv2DSpec describes a 2D convolution over NHWC images.
func Conv2DSpec(filters int, kernel, strides [2]int, padding Padding, act Activation) LayerSpec {
	return nn.Conv2DSpec(filters, kernel, strides, padding, act)
}

// Conv2DTransposeSpec describes a transposed 2D convolution over NHWC images.
func Conv2DTransposeSpec(filters int, kernel, strides [2]int, padding Padding, act Activation) LayerSpec {
	return nn.Conv2DTransposeSpec(filters, kernel, strides, padding, act)
}

// FlattenSpec describes a layer that flattens each sample.
func FlattenSpec() LayerSpec {
	return nn.FlattenSpec()
}

// ReshapeSpec describes a layer that reshapes each sample.
func ReshapeSpec(shape ...int) LayerSpec {
	return nn.ReshapeSpec(shape...)
}

// DenseStack describes hidden dense layers of one width followed by a linear output.
func DenseStack(hidden, width, outputs int, act Activation) []LayerSpec {
	return nn.DenseStack(hidden, width, outputs, act)
}

// NewLayer creates an unbuilt layer from its description.
func NewLayer(spec LayerSpec) (Layer, error) {
	return nn.NewLayer(spec)
}

// Layers

// Dense is a fully connected layer.
type Dense = nn.Dense

// Conv2D is a 2D convolution.
type Conv2D = nn.Conv2D

// Conv2DTranspose is a transposed 2D convolution.
type Conv2DTranspose = nn.Conv2DTranspose

// MaxPool2D is 2D max pooling.
type MaxPool2D = nn.MaxPool2D

// UpSampling2D is nearest-neighbour 2D up-sampling.
type UpSampling2D = nn.UpSampling2D

// Flatten flattens each sample.
type Flatten = nn.Flatten

// Reshape reshapes each sample.
type Reshape = nn.Reshape

// NewDense creates a fully connected layer.
//
// Example:
//
//	layer, _ := nn.NewDense(64, nn.ReLU)
func NewDense(units int, act Activation) (*Dense, error) {
	return nn.NewDense(units, act)
}

// NewConv2D creates a 2D convolution with a [height, width] kernel.
func NewConv2D(filters int, kernel, strides [2]int, padding Padding, act Activation) (*Conv2D, error) {
	return nn.NewConv2D(filters, kernel, strides, padding, act)
}

// NewConv2DTranspose creates a transposed 2D convolution.
func NewConv2DTranspose(filters int, kernel, strides [2]int, padding Padding, act Activation) (*Conv2DTranspose, error) {
	return nn.NewConv2DTranspose(filters, kernel, strides, padding, act)
}

// NewMaxPool2D creates a max pooling layer. Zero strides default to the pool size.
func NewMaxPool2D(size, strides [2]int) (*MaxPool2D, error) {
	return nn.NewMaxPool2D(size, strides)
}

// NewUpSampling2D creates a nearest-neighbour up-sampling layer.
func NewUpSampling2D(size [2]int) (*UpSampling2D, error) {
	return nn.NewUpSampling2D(size)
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// NewReshape creates a reshape layer.
func NewReshape(shape ...int) (*Reshape, error) {
	return nn.NewReshape(shape...)
}

// Losses

// MSELoss is the mean squared error over all elements.
type MSELoss = nn.MSELoss

// NewLoss creates a loss by name. Only "mse" is supported.
func NewLoss(name string) (Loss, error) {
	return nn.NewLoss(name)
}

// Models

// Sequential chains built layers.
type Sequential = nn.Sequential

// NewSequential builds specs in order for samples of shape in.
//
// Example:
//
//	rng := rand.New(rand.NewSource(0))
//	model, err := nn.NewSequential(tensor.Shape{3}, rng,
//	    nn.DenseSpec(16, nn.Tanh),
//	    nn.DenseSpec(1, nn.Linear),
//	)
func NewSequential(in tensor.Shape, rng *rand.Rand, specs ...LayerSpec) (*Sequential, error) {
	return nn.NewSequential(in, rng, specs...)
}

// TrainConfig controls mini-batch training.
type TrainConfig = nn.TrainConfig

// History records the loss of every epoch.
type History = nn.History

// DefaultTrainConfig returns 10 shuffled epochs of Adam over batches of 32.
func DefaultTrainConfig() TrainConfig {
	return nn.DefaultTrainConfig()
}

// Normalization selects how FeedForward and Autoencoder scale their data.
type Normalization = preprocess.Kind

// Normalizations.
const (
	NoNormalization Normalization = preprocess.Null
	MinMax          Normalization = preprocess.MinMax
	ZScore          Normalization = preprocess.ZScore
)

// FeedForward is a normalized network from inputs to outputs.
type FeedForward = nn.FeedForward

// FeedForwardConfig configures a FeedForward network.
type FeedForwardConfig = nn.FeedForwardConfig

// NewFeedForward validates cfg and returns an untrained network.
func NewFeedForward(cfg FeedForwardConfig) (*FeedForward, error) {
	return nn.NewFeedForward(cfg)
}

// Autoencoder trains an encoder and a decoder to reproduce their input.
type Autoencoder = nn.Autoencoder

// AutoencoderConfig configures an Autoencoder.
type AutoencoderConfig = nn.AutoencoderConfig

// NewAutoencoder validates cfg and returns an untrained autoencoder.
func NewAutoencoder(cfg AutoencoderConfig) (*Autoencoder, error) {
	return nn.NewAutoencoder(cfg)
}

// Initialization

// Xavier draws n weights from the Glorot uniform distribution.
func Xavier(fanIn, fanOut, n int, rng *rand.Rand) []float64 {
	return nn.Xavier(fanIn, fanOut, n, rng)
}

// He draws n weights from the He normal distribution.
func He(fanIn, n int, rng *rand.Rand) []float64 {
	return nn.He(fanIn, n, rng)
}
