// Package surrogate composes encoders, latent regressors and decoders into
// trainable surrogate models behind one protocol.
//
// Every model, whether a full pipeline or a single stage, implements Model:
// it names the errors it reports and trains itself on a split of the data.
//
//	m, _ := surrogate.NewCAEFFNN(surrogate.DefaultConfig())
//	errs, err := m.TrainAndEvaluate(ctx, params, solutions, nil)
//	fmt.Println(errs["Surrogate error"])
//
// Solution vectors of width d are lifted to (samples, 1, 1, d) for the
// convolutional stages and dropped back to (samples, d) afterwards.
package surrogate

import (
	"context"
	"fmt"
	"time"

	"github.com/born-ml/surrogate/internal/logging"
	"github.com/born-ml/surrogate/internal/metrics"
	"github.com/born-ml/surrogate/internal/nn"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/tensor"
)

// ErrNotTrained is returned by prediction and persistence before training.
var ErrNotTrained = nn.ErrNotTrained

// Error names reported by the models of this package.
const (
	CAEError       = "CAE error"
	SurrogateError = "Surrogate error"
	FFNNError      = "FFNN error"
	EncoderError   = "Encoder error"
	DecoderError   = "Decoder error"
)

const (
	caePrefix  = "[CAE] "
	ffnnPrefix = "[FFNN] "
)

// Model is a trainable, evaluatable surrogate or surrogate stage.
type Model interface {
	// ErrorNames lists the keys TrainAndEvaluate reports, in a fixed order.
	ErrorNames() []string

	// TrainAndEvaluate splits (input, output) with splitter, trains on the
	// training part and returns one error per name measured on the test part.
	// A nil splitter selects the default 80/20 contiguous split.
	TrainAndEvaluate(ctx context.Context, input, output *tensor.Array[float64], splitter *split.Splitter) (map[string]float64, error)
}

// solutionFlags lifts (n, d) to (n, 1, 1, d).
var solutionFlags = []bool{false, true, true, false}

func liftSolutions(a *tensor.Array[float64]) (*tensor.Array[float64], error) {
	return tensor.AddEmptyDimensions(a, solutionFlags...)
}

func dropSolutions(a *tensor.Array[float64]) (*tensor.Array[float64], error) {
	return tensor.RemoveEmptyDimensionFlags(a, solutionFlags...)
}

// checkDatasets validates a rank-2 dataset pair with matching sample counts.
func checkDatasets(input, output *tensor.Array[float64]) error {
	if input.Rank() != 2 || output.Rank() != 2 {
		return fmt.Errorf("%w: datasets must be (samples, features), got %v and %v",
			tensor.ErrArgument, input.Shape(), output.Shape())
	}
	return tensor.CheckSameSamples(input, output)
}

func checkWidth(what string, a *tensor.Array[float64], want int) error {
	if a.Len(1) != want {
		return fmt.Errorf("%w: %s width is %d, latent size is %d", tensor.ErrArgument, what, a.Len(1), want)
	}
	return nil
}

func splitterOrDefault(s *split.Splitter) *split.Splitter {
	if s == nil {
		return split.Default()
	}
	return s
}

// timed runs f and logs how long it took.
func timed(logger logging.Logger, what string, f func() error) error {
	logger.Print(what)
	start := time.Now()
	if err := f(); err != nil {
		return err
	}
	logger.Printf("elapsed: %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// relativeError measures the mean relative L2 error of predictions on the test part.
func relativeError(name string, expected, predicted *tensor.Array[float64]) (float64, error) {
	e, err := metrics.MeanRelativeNorm2Error(expected, predicted)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return e, nil
}
