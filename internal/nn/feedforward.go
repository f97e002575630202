package nn

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/born-ml/surrogate/internal/preprocess"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Network is the capability the surrogate models need from a trained regressor.
type Network interface {
	// Train fits the network to (x, y). Dimension 0 of both is the sample count.
	Train(x, y *tensor.Array[float64]) error

	// Predict evaluates the network in physical (denormalized) units.
	Predict(x *tensor.Array[float64]) (*tensor.Array[float64], error)

	// InputGradients returns one (outputs, inputs) Jacobian per sample of x.
	InputGradients(x *tensor.Array[float64]) ([]*tensor.Array[float64], error)

	Save(path string) error
	Load(path string) error
}

// FeedForwardConfig describes a feed-forward regressor.
type FeedForwardConfig struct {
	// Layers lists the hidden layers and the output layer. The last layer must
	// produce as many features as the targets have.
	Layers []LayerSpec `json:"layers" yaml:"layers"`

	NormalizationX preprocess.Kind `json:"-" yaml:"-"`
	NormalizationY preprocess.Kind `json:"-" yaml:"-"`
	Train          TrainConfig     `json:"train" yaml:"train"`
}

// DenseStack returns hidden dense layers of equal width followed by a linear
// output layer.
func DenseStack(hidden, width, outputs int, act Activation) []LayerSpec {
	specs := make([]LayerSpec, 0, hidden+1)
	for range hidden {
		specs = append(specs, DenseSpec(width, act))
	}
	return append(specs, DenseSpec(outputs, Linear))
}

// FeedForward is a normalized supervised network.
//
// Inputs and targets may have any per-sample shape. Both are normalized per
// feature (samples flattened to rows) with the configured kinds before training;
// predictions are denormalized back. A FeedForward is not safe for
// concurrent use.
//
// Example:
//
//	net, _ := nn.NewFeedForward(nn.FeedForwardConfig{
//	    Layers: nn.DenseStack(2, 32, 1, nn.ReLU),
//	    Train:  nn.DefaultTrainConfig(),
//	})
//	_ = net.Train(x, y)
//	pred, _ := net.Predict(x)
type FeedForward struct {
	cfg   FeedForwardConfig
	model *Sequential
	normX *preprocess.Parameters
	normY *preprocess.Parameters
	hist  History
}

var _ Network = (*FeedForward)(nil)

// NewFeedForward validates cfg and returns an untrained network.
func NewFeedForward(cfg FeedForwardConfig) (*FeedForward, error) {
	if len(cfg.Layers) == 0 {
		return nil, fmt.Errorf("feedforward: no layers")
	}
	for i, spec := range cfg.Layers {
		if _, err := NewLayer(spec); err != nil {
			return nil, fmt.Errorf("feedforward: layer %d: %w", i, err)
		}
	}
	for _, kind := range []preprocess.Kind{cfg.NormalizationX, cfg.NormalizationY} {
		if _, err := preprocess.NewStrategy(kind); err != nil {
			return nil, fmt.Errorf("feedforward: %w", err)
		}
	}
	return &FeedForward{cfg: cfg}, nil
}

// Config returns the network configuration.
func (f *FeedForward) Config() FeedForwardConfig {
	return f.cfg
}

// Train implements Network.
func (f *FeedForward) Train(x, y *tensor.Array[float64]) error {
	return f.TrainContext(context.Background(), x, y)
}

// TrainContext is Train with cancellation between batches.
func (f *FeedForward) TrainContext(ctx context.Context, x, y *tensor.Array[float64]) error {
	if x.Rank() < 2 || y.Rank() < 2 {
		return fmt.Errorf("%w: feedforward needs (samples, ...) data, got %v and %v",
			tensor.ErrArgument, x.Shape(), y.Shape())
	}
	if err := tensor.CheckSameSamples(x, y); err != nil {
		return err
	}

	normX, xn, err := fitNormalize(f.cfg.NormalizationX, x)
	if err != nil {
		return fmt.Errorf("normalize inputs: %w", err)
	}
	normY, yn, err := fitNormalize(f.cfg.NormalizationY, y)
	if err != nil {
		return fmt.Errorf("normalize targets: %w", err)
	}

	rng := rand.New(rand.NewSource(f.cfg.Train.Seed)) //nolint:gosec // G404: training randomness, not security
	model, err := NewSequential(x.Shape().PerSample(), rng, f.cfg.Layers...)
	if err != nil {
		return fmt.Errorf("feedforward: %w", err)
	}
	if out := model.OutputShape(); !out.Equal(y.Shape().PerSample()) {
		return fmt.Errorf("%w: network produces %v per sample, targets are %v",
			tensor.ErrArgument, out, y.Shape().PerSample())
	}

	hist, err := fit(ctx, model, xn, yn, f.cfg.Train, rng)
	if err != nil {
		return err
	}
	f.model, f.normX, f.normY, f.hist = model, normX, normY, hist
	return nil
}

// History returns the per-epoch losses of the last Train call.
func (f *FeedForward) History() History {
	return f.hist
}

// Normalization returns the fitted input and target normalizations.
func (f *FeedForward) Normalization() (x, y *preprocess.Parameters) {
	return f.normX, f.normY
}

// Model returns the underlying layer stack, or nil before training.
func (f *FeedForward) Model() *Sequential {
	return f.model
}

func (f *FeedForward) checkInput(x *tensor.Array[float64]) error {
	if f.model == nil {
		return ErrNotTrained
	}
	if x.Rank() < 2 || !x.Shape().PerSample().Equal(f.model.InputShape()) {
		return fmt.Errorf("%w: expected samples of shape %v, got batch %v",
			tensor.ErrArgument, f.model.InputShape(), x.Shape())
	}
	return nil
}

// Predict implements Network.
func (f *FeedForward) Predict(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if err := f.checkInput(x); err != nil {
		return nil, err
	}
	xn, err := applyFlat(x, f.normX.Normalize)
	if err != nil {
		return nil, err
	}
	return applyFlat(f.model.Forward(xn), f.normY.Denormalize)
}

// InputGradients implements Network. It needs flat per-sample inputs and outputs.
//
// Derivatives are computed in normalized space by one backward pass per output
// and then rescaled by ratioY[i] / ratioX[j] to physical units.
func (f *FeedForward) InputGradients(x *tensor.Array[float64]) ([]*tensor.Array[float64], error) {
	if err := f.checkInput(x); err != nil {
		return nil, err
	}
	in, out := f.model.InputShape(), f.model.OutputShape()
	if len(in) != 1 || len(out) != 1 {
		return nil, fmt.Errorf("%w: input gradients need flat samples, network maps %v to %v",
			tensor.ErrArgument, in, out)
	}
	xn, err := f.normX.Normalize(x)
	if err != nil {
		return nil, err
	}
	n, inputs, outputs := x.Len(0), in[0], out[0]

	jacs := make([]*tensor.Array[float64], n)
	for i := range jacs {
		jacs[i] = tensor.Zeros[float64](tensor.Shape{outputs, inputs})
	}
	f.model.Forward(xn)
	for k := 0; k < outputs; k++ {
		seed := tensor.Zeros[float64](tensor.Shape{n, outputs})
		for i := 0; i < n; i++ {
			seed.Set(1, i, k)
		}
		dx := f.model.Backward(seed).Data()
		for i := 0; i < n; i++ {
			copy(jacs[i].Data()[k*inputs:(k+1)*inputs], dx[i*inputs:(i+1)*inputs])
		}
	}
	for _, p := range f.model.Parameters() {
		p.ZeroGrad()
	}

	for _, jac := range jacs {
		if err := preprocess.DescaleJacobian(jac, f.normX, f.normY); err != nil {
			return nil, err
		}
	}
	return jacs, nil
}

// Save implements Network.
func (f *FeedForward) Save(path string) error {
	if f.model == nil {
		return ErrNotTrained
	}
	return saveCheckpoint(path, checkpointModel{
		Kind:           kindFeedForward,
		InputShape:     f.model.InputShape(),
		Layers:         f.model.Specs(),
		NormalizationX: f.normX,
		NormalizationY: f.normY,
		Train:          f.cfg.Train,
	}, stage{"", f.model})
}

// Load implements Network. The configuration is replaced by the stored one,
// except for the logger.
func (f *FeedForward) Load(path string) error {
	ckpt, m, err := readCheckpoint(path, kindFeedForward)
	if err != nil {
		return err
	}
	if m.NormalizationX == nil || m.NormalizationY == nil {
		return fmt.Errorf("%s: missing normalization parameters", path)
	}
	model, err := restore(ckpt, "", m.InputShape, m.Layers)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger, prefix := f.cfg.Train.Logger, f.cfg.Train.LogPrefix
	f.cfg = FeedForwardConfig{
		Layers:         m.Layers,
		NormalizationX: m.NormalizationX.Kind(),
		NormalizationY: m.NormalizationY.Kind(),
		Train:          m.Train,
	}
	f.cfg.Train.Logger, f.cfg.Train.LogPrefix = logger, prefix
	f.model, f.normX, f.normY, f.hist = model, m.NormalizationX, m.NormalizationY, History{}
	return nil
}
