package surrogate

import (
	"errors"
	"fmt"
	"log"

	"github.com/born-ml/surrogate/internal/logging"
	"github.com/born-ml/surrogate/internal/nn"
)

// CAEConfig configures the convolutional autoencoder.
//
// Solution vectors of width d are treated as 1x1 images with d channels, so the
// kernel runs along the (unit) height axis with shape (KernelSize, 1).
type CAEConfig struct {
	BatchSize      int        `yaml:"batch_size"`
	Epochs         int        `yaml:"epochs"`
	LearningRate   float64    `yaml:"learning_rate"`
	KernelSize     int        `yaml:"kernel_size"`
	Strides        int        `yaml:"strides"`
	Padding        nn.Padding `yaml:"padding"`
	EncoderFilters []int      `yaml:"encoder_filters"`

	// DecoderFilters lists the hidden transposed convolutions. A linear output
	// layer back to the solution width is appended automatically.
	DecoderFilters []int  `yaml:"decoder_filters"`
	Optimizer      string `yaml:"optimizer"`
}

// FFNNConfig configures the latent-space regressor.
type FFNNConfig struct {
	BatchSize    int           `yaml:"batch_size"`
	Epochs       int           `yaml:"epochs"`
	HiddenLayers int           `yaml:"hidden_layers"`
	HiddenSize   int           `yaml:"hidden_size"`
	LearningRate float64       `yaml:"learning_rate"`
	Activation   nn.Activation `yaml:"activation"`
	Optimizer    string        `yaml:"optimizer"`
}

// Config configures every surrogate in this package.
type Config struct {
	CAE        CAEConfig  `yaml:"cae"`
	FFNN       FFNNConfig `yaml:"ffnn"`
	LatentSize int        `yaml:"latent_size"`

	// Seed drives weight initialization and shuffling of both networks.
	Seed    int64 `yaml:"seed"`
	Shuffle bool  `yaml:"shuffle"`

	// Logger receives progress lines prefixed with [CAE] and [FFNN]. Nil discards.
	Logger *log.Logger `yaml:"-"`
}

// DefaultConfig returns the reference CAE-FFNN hyperparameters.
func DefaultConfig() Config {
	return Config{
		CAE: CAEConfig{
			BatchSize:      10,
			Epochs:         40,
			LearningRate:   5e-4,
			KernelSize:     5,
			Strides:        1,
			Padding:        nn.Same,
			EncoderFilters: []int{128, 64, 32, 16},
			DecoderFilters: []int{32, 64, 128},
			Optimizer:      "adam",
		},
		FFNN: FFNNConfig{
			BatchSize:    20,
			Epochs:       3000,
			HiddenLayers: 6,
			HiddenSize:   64,
			LearningRate: 1e-4,
			Activation:   nn.ReLU,
			Optimizer:    "adam",
		},
		LatentSize: 8,
		Shuffle:    true,
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.LatentSize <= 0 {
		errs = append(errs, fmt.Errorf("latent size must be positive, got %d", c.LatentSize))
	}
	if c.CAE.KernelSize <= 0 {
		errs = append(errs, fmt.Errorf("cae kernel size must be positive, got %d", c.CAE.KernelSize))
	}
	// Strided kernels would shrink the unit height axis the solution lives on.
	if c.CAE.Strides != 1 {
		errs = append(errs, fmt.Errorf("cae stride must be 1, got %d", c.CAE.Strides))
	}
	if len(c.CAE.EncoderFilters) == 0 {
		errs = append(errs, errors.New("cae needs at least one encoder filter"))
	}
	if len(c.CAE.DecoderFilters) == 0 || c.CAE.DecoderFilters[0] < 2 {
		errs = append(errs, errors.New("cae needs decoder filters, the first at least 2"))
	}
	if c.FFNN.HiddenLayers < 0 || (c.FFNN.HiddenLayers > 0 && c.FFNN.HiddenSize <= 0) {
		errs = append(errs, fmt.Errorf("ffnn hidden layers %d of size %d", c.FFNN.HiddenLayers, c.FFNN.HiddenSize))
	}
	for _, e := range []int{c.CAE.Epochs, c.FFNN.Epochs} {
		if e < 0 {
			errs = append(errs, fmt.Errorf("epochs must not be negative, got %d", e))
		}
	}
	return errors.Join(errs...)
}

func (c Config) logger(prefix string) logging.Logger {
	return logging.New(c.Logger, prefix)
}

func (c CAEConfig) kernel() [2]int  { return [2]int{c.KernelSize, 1} }
func (c CAEConfig) strides() [2]int { return [2]int{c.Strides, 1} }

// encoderLayers maps a (1, 1, d) sample to a latent vector.
func (c CAEConfig) encoderLayers(latent int) []nn.LayerSpec {
	specs := make([]nn.LayerSpec, 0, len(c.EncoderFilters)+2)
	for _, f := range c.EncoderFilters {
		specs = append(specs, nn.Conv2DSpec(f, c.kernel(), c.strides(), c.Padding, nn.ReLU))
	}
	return append(specs, nn.FlattenSpec(), nn.DenseSpec(latent, nn.Linear))
}

// decoderLayers maps a latent vector back to a (1, 1, d) sample.
func (c CAEConfig) decoderLayers(solutionDim int) []nn.LayerSpec {
	width := c.DecoderFilters[0] / 2
	specs := []nn.LayerSpec{
		nn.DenseSpec(width, nn.ReLU),
		nn.ReshapeSpec(1, 1, width),
	}
	for _, f := range c.DecoderFilters {
		specs = append(specs, nn.Conv2DTransposeSpec(f, c.kernel(), c.strides(), c.Padding, nn.ReLU))
	}
	return append(specs, nn.Conv2DTransposeSpec(solutionDim, c.kernel(), c.strides(), c.Padding, nn.Linear))
}

func (c Config) caeTraining() nn.TrainConfig {
	return nn.TrainConfig{
		Epochs:       c.CAE.Epochs,
		BatchSize:    c.CAE.BatchSize,
		Shuffle:      c.Shuffle,
		Seed:         c.Seed,
		Optimizer:    c.CAE.Optimizer,
		LearningRate: c.CAE.LearningRate,
		Loss:         "mse",
		LogEvery:     10,
		Logger:       c.Logger,
		LogPrefix:    caePrefix,
	}
}

func (c Config) ffnnTraining() nn.TrainConfig {
	return nn.TrainConfig{
		Epochs:       c.FFNN.Epochs,
		BatchSize:    c.FFNN.BatchSize,
		Shuffle:      c.Shuffle,
		Seed:         c.Seed,
		Optimizer:    c.FFNN.Optimizer,
		LearningRate: c.FFNN.LearningRate,
		Loss:         "mse",
		LogEvery:     500,
		Logger:       c.Logger,
		LogPrefix:    ffnnPrefix,
	}
}

// layers maps parameters to outputs through the hidden dense stack.
func (c FFNNConfig) layers(outputs int) []nn.LayerSpec {
	act := c.Activation
	if act == "" {
		act = nn.ReLU
	}
	return nn.DenseStack(c.HiddenLayers, c.HiddenSize, outputs, act)
}
