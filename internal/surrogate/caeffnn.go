package surrogate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/surrogate/internal/nn"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Checkpoint file names written by CAEFFNN.Save inside its directory.
const (
	CAEFile  = "cae.born"
	FFNNFile = "ffnn.born"
)

// CAEFFNN maps parameters to full solution vectors through a latent space.
//
// Training runs in two phases. A convolutional autoencoder is first fitted to the
// training solutions. Its encoder then produces the latent targets the
// feed-forward regressor is fitted to. Prediction chains the regressor with the
// decoder. A CAEFFNN is not safe for concurrent use.
type CAEFFNN struct {
	cfg  Config
	cae  *nn.Autoencoder
	ffnn *nn.FeedForward
}

var _ Model = (*CAEFFNN)(nil)

// NewCAEFFNN creates an untrained composite surrogate.
func NewCAEFFNN(cfg Config) (*CAEFFNN, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CAEFFNN{cfg: cfg}, nil
}

// Config returns the surrogate configuration.
func (m *CAEFFNN) Config() Config {
	return m.cfg
}

// ErrorNames implements Model.
func (m *CAEFFNN) ErrorNames() []string {
	return []string{CAEError, SurrogateError}
}

// TrainAndEvaluate implements Model. input holds parameters (samples, p) and
// output solutions (samples, d). The reported errors are the autoencoder's
// reconstruction error and the error of the full parameter-to-solution pipeline,
// both on the test part.
func (m *CAEFFNN) TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDatasets(input, output); err != nil {
		return nil, err
	}
	xs, ys, err := splitterOrDefault(splitter).SplitPair(input, output)
	if err != nil {
		return nil, err
	}

	cae, caeErr, err := trainCAE(ctx, m.cfg, ys.Training, ys.Test)
	if err != nil {
		return nil, err
	}

	ffnn, err := nn.NewFeedForward(nn.FeedForwardConfig{
		Layers: m.cfg.FFNN.layers(m.cfg.LatentSize),
		Train:  m.cfg.ffnnTraining(),
	})
	if err != nil {
		return nil, err
	}
	logger := m.cfg.logger(ffnnPrefix)
	var latent *tensor.Array[float64]
	if err := timed(logger, "preparing latent targets with the fitted encoder", func() error {
		lifted, err := liftSolutions(ys.Training)
		if err != nil {
			return err
		}
		latent, err = cae.Encode(lifted)
		return err
	}); err != nil {
		return nil, err
	}
	if err := timed(logger, "training feed forward neural network", func() error {
		return ffnn.TrainContext(ctx, xs.Training, latent)
	}); err != nil {
		return nil, err
	}

	var surrogateErr float64
	if err := timed(logger, "testing full surrogate", func() error {
		pred, err := chain(ffnn, cae, xs.Test)
		if err != nil {
			return err
		}
		expected, err := liftSolutions(ys.Test)
		if err != nil {
			return err
		}
		surrogateErr, err = relativeError(SurrogateError, expected, pred)
		return err
	}); err != nil {
		return nil, err
	}
	logger.Printf("mean error = mean over samples of norm2(surrogate(theta) - u) / norm2(u) = %g", surrogateErr)

	m.cae, m.ffnn = cae, ffnn
	return map[string]float64{
		CAEError:       caeErr,
		SurrogateError: surrogateErr,
	}, nil
}

// chain maps parameters (samples, p) to lifted solutions (samples, 1, 1, d).
func chain(ffnn *nn.FeedForward, cae *nn.Autoencoder, params *tensor.Array[float64]) (*tensor.Array[float64], error) {
	latent, err := ffnn.Predict(params)
	if err != nil {
		return nil, err
	}
	return cae.Decode(latent)
}

// Predict maps one parameter vector to its solution vector.
func (m *CAEFFNN) Predict(input []float64) ([]float64, error) {
	x, err := tensor.FromSlice(input, tensor.Shape{len(input)})
	if err != nil {
		return nil, err
	}
	x, err = tensor.AddEmptyDimensions(x, true, false)
	if err != nil {
		return nil, err
	}
	full, err := m.predictLifted(x)
	if err != nil {
		return nil, err
	}
	out, err := tensor.RemoveEmptyDimensions(full, 0, 1, 2)
	if err != nil {
		return nil, err
	}
	return out.Data(), nil
}

// PredictBatch maps parameters (samples, p) to solutions (samples, d).
func (m *CAEFFNN) PredictBatch(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if x.Rank() != 2 {
		return nil, fmt.Errorf("%w: parameters must be (samples, p), got %v", tensor.ErrArgument, x.Shape())
	}
	full, err := m.predictLifted(x)
	if err != nil {
		return nil, err
	}
	return dropSolutions(full)
}

func (m *CAEFFNN) predictLifted(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if m.cae == nil || m.ffnn == nil {
		return nil, ErrNotTrained
	}
	return chain(m.ffnn, m.cae, x)
}

// Dimensions returns the parameter and solution widths of the trained surrogate.
func (m *CAEFFNN) Dimensions() (params, solution int, err error) {
	if m.cae == nil || m.ffnn == nil {
		return 0, 0, ErrNotTrained
	}
	return m.ffnn.Model().InputShape()[0], m.cae.InputShape().NumElements(), nil
}

// Save writes both networks into dir, creating it if needed.
func (m *CAEFFNN) Save(dir string) error {
	if m.cae == nil || m.ffnn == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := m.cae.Save(filepath.Join(dir, CAEFile)); err != nil {
		return err
	}
	return m.ffnn.Save(filepath.Join(dir, FFNNFile))
}

// Load restores both networks from a directory written by Save.
func (m *CAEFFNN) Load(dir string) error {
	cae := &nn.Autoencoder{}
	if err := cae.Load(filepath.Join(dir, CAEFile)); err != nil {
		return err
	}
	ffnn := &nn.FeedForward{}
	if err := ffnn.Load(filepath.Join(dir, FFNNFile)); err != nil {
		return err
	}
	if !ffnn.Model().OutputShape().Equal(cae.LatentShape()) {
		return fmt.Errorf("%w: regressor produces %v, decoder expects %v",
			tensor.ErrArgument, ffnn.Model().OutputShape(), cae.LatentShape())
	}
	m.cae, m.ffnn = cae, ffnn
	return nil
}
