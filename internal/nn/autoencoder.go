package nn

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/born-ml/surrogate/internal/preprocess"
	"github.com/born-ml/surrogate/internal/tensor"
)

// AutoencoderConfig describes an encoder/decoder pair trained on reconstruction.
type AutoencoderConfig struct {
	// Encoder maps a sample to its latent vector; its last layer sets the
	// latent size.
	Encoder []LayerSpec `json:"encoder" yaml:"encoder"`

	// Decoder maps a latent vector back to the sample shape.
	Decoder []LayerSpec `json:"decoder" yaml:"decoder"`

	Normalization preprocess.Kind `json:"-" yaml:"-"`
	Train         TrainConfig     `json:"train" yaml:"train"`
}

// Autoencoder trains an encoder and a decoder jointly to reproduce their input.
//
// Samples may have any rank; normalization is fitted per feature on the samples
// flattened to (samples, features). An Autoencoder is not safe for concurrent use.
type Autoencoder struct {
	cfg     AutoencoderConfig
	encoder *Sequential
	decoder *Sequential
	norm    *preprocess.Parameters
	hist    History
}

// NewAutoencoder validates cfg and returns an untrained autoencoder.
func NewAutoencoder(cfg AutoencoderConfig) (*Autoencoder, error) {
	if len(cfg.Encoder) == 0 || len(cfg.Decoder) == 0 {
		return nil, fmt.Errorf("autoencoder: encoder and decoder need at least one layer each")
	}
	for i, spec := range append(append([]LayerSpec(nil), cfg.Encoder...), cfg.Decoder...) {
		if _, err := NewLayer(spec); err != nil {
			return nil, fmt.Errorf("autoencoder: layer %d: %w", i, err)
		}
	}
	if _, err := preprocess.NewStrategy(cfg.Normalization); err != nil {
		return nil, fmt.Errorf("autoencoder: %w", err)
	}
	return &Autoencoder{cfg: cfg}, nil
}

// Train fits the autoencoder to reconstruct x.
func (a *Autoencoder) Train(x *tensor.Array[float64]) error {
	return a.TrainContext(context.Background(), x)
}

// TrainContext is Train with cancellation between batches.
func (a *Autoencoder) TrainContext(ctx context.Context, x *tensor.Array[float64]) error {
	if x.Rank() < 2 {
		return fmt.Errorf("%w: autoencoder needs (samples, ...) data, got %v", tensor.ErrArgument, x.Shape())
	}
	norm, xn, err := fitNormalize(a.cfg.Normalization, x)
	if err != nil {
		return fmt.Errorf("normalize samples: %w", err)
	}

	rng := rand.New(rand.NewSource(a.cfg.Train.Seed)) //nolint:gosec // G404: training randomness, not security
	in := x.Shape().PerSample()
	encoder, err := NewSequential(in, rng, a.cfg.Encoder...)
	if err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	decoder, err := NewSequential(encoder.OutputShape(), rng, a.cfg.Decoder...)
	if err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if !decoder.OutputShape().Equal(in) {
		return fmt.Errorf("%w: decoder produces %v per sample, input is %v", tensor.ErrArgument, decoder.OutputShape(), in)
	}

	chain := &Sequential{
		layers: append(append([]Layer(nil), encoder.layers...), decoder.layers...),
		in:     encoder.InputShape(),
		out:    decoder.OutputShape(),
	}
	hist, err := fit(ctx, chain, xn, xn, a.cfg.Train, rng)
	if err != nil {
		return err
	}
	a.encoder, a.decoder, a.norm, a.hist = encoder, decoder, norm, hist
	return nil
}

// History returns the per-epoch reconstruction losses of the last Train call.
func (a *Autoencoder) History() History {
	return a.hist
}

// InputShape returns the per-sample shape the autoencoder was trained on.
func (a *Autoencoder) InputShape() tensor.Shape {
	if a.encoder == nil {
		return nil
	}
	return a.encoder.InputShape()
}

// LatentShape returns the per-sample shape of the encoder output.
func (a *Autoencoder) LatentShape() tensor.Shape {
	if a.encoder == nil {
		return nil
	}
	return a.encoder.OutputShape()
}

// Encode maps samples to latent vectors.
func (a *Autoencoder) Encode(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if a.encoder == nil {
		return nil, ErrNotTrained
	}
	if !x.Shape().PerSample().Equal(a.encoder.InputShape()) {
		return nil, fmt.Errorf("%w: encoder expects samples of shape %v, got batch %v",
			tensor.ErrArgument, a.encoder.InputShape(), x.Shape())
	}
	xn, err := applyFlat(x, a.norm.Normalize)
	if err != nil {
		return nil, err
	}
	return a.encoder.Forward(xn), nil
}

// Decode maps latent vectors back to samples in physical units.
func (a *Autoencoder) Decode(z *tensor.Array[float64]) (*tensor.Array[float64], error) {
	if a.decoder == nil {
		return nil, ErrNotTrained
	}
	if !z.Shape().PerSample().Equal(a.decoder.InputShape()) {
		return nil, fmt.Errorf("%w: decoder expects latents of shape %v, got batch %v",
			tensor.ErrArgument, a.decoder.InputShape(), z.Shape())
	}
	return applyFlat(a.decoder.Forward(z), a.norm.Denormalize)
}

// Predict reconstructs x through the encoder and decoder.
func (a *Autoencoder) Predict(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	z, err := a.Encode(x)
	if err != nil {
		return nil, err
	}
	return a.Decode(z)
}

// Save writes both stacks and the normalization to path.
func (a *Autoencoder) Save(path string) error {
	if a.encoder == nil {
		return ErrNotTrained
	}
	return saveCheckpoint(path, checkpointModel{
		Kind:           kindAutoencoder,
		InputShape:     a.encoder.InputShape(),
		Layers:         a.encoder.Specs(),
		Decoder:        a.decoder.Specs(),
		NormalizationX: a.norm,
		Train:          a.cfg.Train,
	}, stage{"encoder.", a.encoder}, stage{"decoder.", a.decoder})
}

// Load restores an autoencoder written by Save.
func (a *Autoencoder) Load(path string) error {
	ckpt, m, err := readCheckpoint(path, kindAutoencoder)
	if err != nil {
		return err
	}
	if m.NormalizationX == nil {
		return fmt.Errorf("%s: missing normalization parameters", path)
	}
	encoder, err := restore(ckpt, "encoder.", m.InputShape, m.Layers)
	if err != nil {
		return fmt.Errorf("%s: encoder: %w", path, err)
	}
	decoder, err := restore(ckpt, "decoder.", encoder.OutputShape(), m.Decoder)
	if err != nil {
		return fmt.Errorf("%s: decoder: %w", path, err)
	}
	logger, prefix := a.cfg.Train.Logger, a.cfg.Train.LogPrefix
	a.cfg = AutoencoderConfig{
		Encoder:       m.Layers,
		Decoder:       m.Decoder,
		Normalization: m.NormalizationX.Kind(),
		Train:         m.Train,
	}
	a.cfg.Train.Logger, a.cfg.Train.LogPrefix = logger, prefix
	a.encoder, a.decoder, a.norm, a.hist = encoder, decoder, m.NormalizationX, History{}
	return nil
}

// fitNormalize fits per-feature parameters on x and returns x normalized.
func fitNormalize(kind preprocess.Kind, x *tensor.Array[float64]) (*preprocess.Parameters, *tensor.Array[float64], error) {
	flat, err := flatten(x)
	if err != nil {
		return nil, nil, err
	}
	p, err := preprocess.Fit(kind, flat, preprocess.PerColumn)
	if err != nil {
		return nil, nil, err
	}
	out, err := applyFlat(x, p.Normalize)
	if err != nil {
		return nil, nil, err
	}
	return p, out, nil
}

// flatten views samples as a (samples, features) array.
func flatten(x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	return x.Reshape(x.NumSamples(), x.Shape().PerSample().NumElements())
}

// applyFlat applies a rank-2 transform to samples of any rank.
func applyFlat(x *tensor.Array[float64], f func(*tensor.Array[float64]) (*tensor.Array[float64], error)) (*tensor.Array[float64], error) {
	flat, err := flatten(x)
	if err != nil {
		return nil, err
	}
	out, err := f(flat)
	if err != nil {
		return nil, err
	}
	return out.Reshape(x.Shape()...)
}
