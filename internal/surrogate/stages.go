package surrogate

import (
	"context"

	"github.com/born-ml/surrogate/internal/nn"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/tensor"
)

// FFNN is the latent regressor stage: a dense network from parameters
// (samples, p) to latent vectors (samples, LatentSize).
type FFNN struct {
	cfg Config
	net *nn.FeedForward
}

// NewFFNN creates an untrained latent regressor.
func NewFFNN(cfg Config) (*FFNN, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FFNN{cfg: cfg}, nil
}

// ErrorNames implements Model.
func (m *FFNN) ErrorNames() []string { return []string{FFNNError} }

// TrainAndEvaluate implements Model.
func (m *FFNN) TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error) {
	if err := checkDatasets(input, output); err != nil {
		return nil, err
	}
	if err := checkWidth("regressor output", output, m.cfg.LatentSize); err != nil {
		return nil, err
	}
	xs, ys, err := splitterOrDefault(splitter).SplitPair(input, output)
	if err != nil {
		return nil, err
	}

	net, err := nn.NewFeedForward(nn.FeedForwardConfig{
		Layers: m.cfg.FFNN.layers(m.cfg.LatentSize),
		Train:  m.cfg.ffnnTraining(),
	})
	if err != nil {
		return nil, err
	}
	logger := m.cfg.logger(ffnnPrefix)
	if err := timed(logger, "training feed forward neural network", func() error {
		return net.TrainContext(ctx, xs.Training, ys.Training)
	}); err != nil {
		return nil, err
	}

	pred, err := net.Predict(xs.Test)
	if err != nil {
		return nil, err
	}
	e, err := relativeError(FFNNError, ys.Test, pred)
	if err != nil {
		return nil, err
	}
	m.net = net
	return map[string]float64{FFNNError: e}, nil
}

// Predict maps parameters to latent vectors.
func (m *FFNN) Predict(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if m.net == nil {
		return nil, ErrNotTrained
	}
	return m.net.Predict(x)
}

// Encoder is the encoder stage trained on its own: a convolutional network from
// solutions (samples, d) to given latent codes (samples, LatentSize).
type Encoder struct {
	cfg Config
	net *nn.FeedForward
}

// NewEncoder creates an untrained encoder stage.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg}, nil
}

// ErrorNames implements Model.
func (m *Encoder) ErrorNames() []string { return []string{EncoderError} }

// TrainAndEvaluate implements Model. input holds solutions, output latent codes.
func (m *Encoder) TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error) {
	if err := checkDatasets(input, output); err != nil {
		return nil, err
	}
	if err := checkWidth("encoder output", output, m.cfg.LatentSize); err != nil {
		return nil, err
	}
	xs, ys, err := splitterOrDefault(splitter).SplitPair(input, output)
	if err != nil {
		return nil, err
	}
	train, err := liftSolutions(xs.Training)
	if err != nil {
		return nil, err
	}
	test, err := liftSolutions(xs.Test)
	if err != nil {
		return nil, err
	}

	net, err := nn.NewFeedForward(nn.FeedForwardConfig{
		Layers: m.cfg.CAE.encoderLayers(m.cfg.LatentSize),
		Train:  m.cfg.caeTraining(),
	})
	if err != nil {
		return nil, err
	}
	logger := m.cfg.logger(caePrefix)
	if err := timed(logger, "training convolutional encoder", func() error {
		return net.TrainContext(ctx, train, ys.Training)
	}); err != nil {
		return nil, err
	}

	pred, err := net.Predict(test)
	if err != nil {
		return nil, err
	}
	e, err := relativeError(EncoderError, ys.Test, pred)
	if err != nil {
		return nil, err
	}
	m.net = net
	return map[string]float64{EncoderError: e}, nil
}

// Decoder is the decoder stage trained on its own: a transposed-convolutional
// network from latent codes (samples, LatentSize) to solutions (samples, d).
type Decoder struct {
	cfg Config
	net *nn.FeedForward
}

// NewDecoder creates an untrained decoder stage.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg}, nil
}

// ErrorNames implements Model.
func (m *Decoder) ErrorNames() []string { return []string{DecoderError} }

// TrainAndEvaluate implements Model. input holds latent codes, output solutions.
func (m *Decoder) TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error) {
	if err := checkDatasets(input, output); err != nil {
		return nil, err
	}
	if err := checkWidth("decoder input", input, m.cfg.LatentSize); err != nil {
		return nil, err
	}
	xs, ys, err := splitterOrDefault(splitter).SplitPair(input, output)
	if err != nil {
		return nil, err
	}
	train, err := liftSolutions(ys.Training)
	if err != nil {
		return nil, err
	}
	test, err := liftSolutions(ys.Test)
	if err != nil {
		return nil, err
	}

	net, err := nn.NewFeedForward(nn.FeedForwardConfig{
		Layers: m.cfg.CAE.decoderLayers(output.Len(1)),
		Train:  m.cfg.caeTraining(),
	})
	if err != nil {
		return nil, err
	}
	logger := m.cfg.logger(caePrefix)
	if err := timed(logger, "training convolutional decoder", func() error {
		return net.TrainContext(ctx, xs.Training, train)
	}); err != nil {
		return nil, err
	}

	pred, err := net.Predict(xs.Test)
	if err != nil {
		return nil, err
	}
	e, err := relativeError(DecoderError, test, pred)
	if err != nil {
		return nil, err
	}
	m.net = net
	return map[string]float64{DecoderError: e}, nil
}

// CAE is the autoencoder stage: encoder and decoder trained together to
// reconstruct the solutions in output. input only pairs samples for splitting.
type CAE struct {
	cfg Config
	ae  *nn.Autoencoder
}

// NewCAE creates an untrained autoencoder stage.
func NewCAE(cfg Config) (*CAE, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CAE{cfg: cfg}, nil
}

// ErrorNames implements Model.
func (m *CAE) ErrorNames() []string { return []string{CAEError} }

// TrainAndEvaluate implements Model.
func (m *CAE) TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error) {
	if err := checkDatasets(input, output); err != nil {
		return nil, err
	}
	_, ys, err := splitterOrDefault(splitter).SplitPair(input, output)
	if err != nil {
		return nil, err
	}
	ae, caeErr, err := trainCAE(ctx, m.cfg, ys.Training, ys.Test)
	if err != nil {
		return nil, err
	}
	m.ae = ae
	return map[string]float64{CAEError: caeErr}, nil
}

// Autoencoder returns the trained autoencoder, or nil before training.
func (m *CAE) Autoencoder() *nn.Autoencoder {
	return m.ae
}

// trainCAE trains an autoencoder on the training solutions and returns its
// reconstruction error on the test solutions. Both are (samples, d).
func trainCAE(ctx context.Context, cfg Config, train, test *tensor.Array[float64]) (*nn.Autoencoder, float64, error) {
	ae, err := nn.NewAutoencoder(nn.AutoencoderConfig{
		Encoder: cfg.CAE.encoderLayers(cfg.LatentSize),
		Decoder: cfg.CAE.decoderLayers(train.Len(1)),
		Train:   cfg.caeTraining(),
	})
	if err != nil {
		return nil, 0, err
	}
	liftedTrain, err := liftSolutions(train)
	if err != nil {
		return nil, 0, err
	}
	liftedTest, err := liftSolutions(test)
	if err != nil {
		return nil, 0, err
	}

	logger := cfg.logger(caePrefix)
	if err := timed(logger, "training convolutional autoencoder", func() error {
		return ae.TrainContext(ctx, liftedTrain)
	}); err != nil {
		return nil, 0, err
	}

	var caeErr float64
	if err := timed(logger, "testing convolutional autoencoder", func() error {
		recon, err := ae.Predict(liftedTest)
		if err != nil {
			return err
		}
		caeErr, err = relativeError(CAEError, liftedTest, recon)
		return err
	}); err != nil {
		return nil, 0, err
	}
	logger.Printf("mean error = mean over samples of norm2(CAE(u) - u) / norm2(u) = %g", caeErr)
	return ae, caeErr, nil
}
