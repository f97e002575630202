// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package surrogate

import (
	"github.com/born-ml/surrogate/internal/surrogate"
)

// Model is a trainable, evaluatable surrogate or surrogate stage.
type Model = surrogate.Model

// ErrNotTrained is returned by prediction and persistence before training.
var ErrNotTrained = surrogate.ErrNotTrained

// Error names reported by the models.
const (
	CAEError       = surrogate.CAEError
	SurrogateError = surrogate.SurrogateError
	FFNNError      = surrogate.FFNNError
	EncoderError   = surrogate.EncoderError
	DecoderError   = surrogate.DecoderError
)

// Checkpoint files written by CAEFFNN.Save.
const (
	CAEFile  = surrogate.CAEFile
	FFNNFile = surrogate.FFNNFile
)

// Configuration

// Config configures every surrogate model.
type Config = surrogate.Config

// CAEConfig configures the convolutional autoencoder.
type CAEConfig = surrogate.CAEConfig

// FFNNConfig configures the latent-space regressor.
type FFNNConfig = surrogate.FFNNConfig

// DefaultConfig returns the reference CAE-FFNN hyperparameters.
func DefaultConfig() Config {
	return surrogate.DefaultConfig()
}

// Models

// CAEFFNN is the full surrogate: parameters to latent code to solution.
type CAEFFNN = surrogate.CAEFFNN

// NewCAEFFNN validates cfg and returns an untrained surrogate.
func NewCAEFFNN(cfg Config) (*CAEFFNN, error) {
	return surrogate.NewCAEFFNN(cfg)
}

// FFNN trains only the feed forward stage on (input, output) pairs.
type FFNN = surrogate.FFNN

// NewFFNN returns an untrained feed forward stage.
func NewFFNN(cfg Config) (*FFNN, error) {
	return surrogate.NewFFNN(cfg)
}

// Encoder trains only the convolutional encoder towards given latent codes.
type Encoder = surrogate.Encoder

// NewEncoder returns an untrained encoder stage.
func NewEncoder(cfg Config) (*Encoder, error) {
	return surrogate.NewEncoder(cfg)
}

// Decoder trains only the convolutional decoder from given latent codes.
type Decoder = surrogate.Decoder

// NewDecoder returns an untrained decoder stage.
func NewDecoder(cfg Config) (*Decoder, error) {
	return surrogate.NewDecoder(cfg)
}

// CAE trains only the autoencoder to reproduce its output data.
type CAE = surrogate.CAE

// NewCAE returns an untrained autoencoder stage.
func NewCAE(cfg Config) (*CAE, error) {
	return surrogate.NewCAE(cfg)
}
