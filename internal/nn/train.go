package nn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/born-ml/surrogate/internal/logging"
	"github.com/born-ml/surrogate/internal/optim"
	"github.com/born-ml/surrogate/internal/tensor"
)

// ErrNotTrained is returned when a network is used before Train or Load.
var ErrNotTrained = errors.New("network has not been trained")

// TrainConfig controls the mini-batch training loop.
type TrainConfig struct {
	Epochs       int     `json:"epochs" yaml:"epochs"`
	BatchSize    int     `json:"batch_size" yaml:"batch_size"` // <= 0 or > samples means full batch
	Shuffle      bool    `json:"shuffle" yaml:"shuffle"`
	Seed         int64   `json:"seed" yaml:"seed"` // weight init and shuffling
	Optimizer    string  `json:"optimizer" yaml:"optimizer"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	Loss         string  `json:"loss" yaml:"loss"`

	// LogEvery is the number of epochs between progress lines; zero logs the
	// last epoch only.
	LogEvery int `json:"-" yaml:"log_every"`

	// Logger receives progress lines tagged with LogPrefix. Nil discards.
	Logger    *log.Logger `json:"-" yaml:"-"`
	LogPrefix string      `json:"-" yaml:"-"`
}

// DefaultTrainConfig returns Keras-like defaults: 10 epochs of shuffled batches of
// 32 with Adam at 1e-3 on MSE.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       10,
		BatchSize:    32,
		Shuffle:      true,
		Optimizer:    "adam",
		LearningRate: 1e-3,
		Loss:         "mse",
	}
}

func (c TrainConfig) logger() logging.Logger {
	return logging.New(c.Logger, c.LogPrefix)
}

// History records the mean training loss of every epoch.
type History struct {
	Loss []float64
}

// Final returns the loss of the last epoch, or 0 if no epoch ran.
func (h History) Final() float64 {
	if len(h.Loss) == 0 {
		return 0
	}
	return h.Loss[len(h.Loss)-1]
}

// fit runs the training loop of model on (x, y). ctx is checked between batches.
func fit(ctx context.Context, model *Sequential, x, y *tensor.Array[float64], cfg TrainConfig, rng *rand.Rand) (History, error) {
	if err := tensor.CheckSameSamples(x, y); err != nil {
		return History{}, err
	}
	n := x.NumSamples()
	if n == 0 {
		return History{}, fmt.Errorf("%w: no training samples", tensor.ErrArgument)
	}

	params := model.Parameters()
	oparams := make([]optim.Parameter, len(params))
	for i, p := range params {
		oparams[i] = p
	}
	opt, err := optim.New(cfg.Optimizer, oparams, cfg.LearningRate)
	if err != nil {
		return History{}, err
	}
	loss, err := NewLoss(cfg.Loss)
	if err != nil {
		return History{}, err
	}

	batch := cfg.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	logger := cfg.logger()
	hist := History{Loss: make([]float64, 0, cfg.Epochs)}
	opt.ZeroGrad()
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if cfg.Shuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var total float64
		for start := 0; start < n; start += batch {
			if err := ctx.Err(); err != nil {
				return hist, fmt.Errorf("epoch %d: %w", epoch+1, err)
			}
			idx := order[start:min(start+batch, n)]
			xb, err := tensor.SelectSamples(x, idx)
			if err != nil {
				return hist, err
			}
			yb, err := tensor.SelectSamples(y, idx)
			if err != nil {
				return hist, err
			}

			pred := model.Forward(xb)
			total += loss.Forward(pred, yb) * float64(len(idx))
			model.Backward(loss.Backward(pred, yb))
			opt.Step()
			opt.ZeroGrad()
		}

		mean := total / float64(n)
		hist.Loss = append(hist.Loss, mean)
		last := epoch == cfg.Epochs-1
		if last || (cfg.LogEvery > 0 && (epoch+1)%cfg.LogEvery == 0) {
			logger.Printf("epoch %d/%d loss=%.6g", epoch+1, cfg.Epochs, mean)
		}
	}
	return hist, nil
}
