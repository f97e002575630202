package nn

import (
	"fmt"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Loss scores predictions against targets and provides the gradient w.r.t. the
// predictions.
type Loss interface {
	Forward(predictions, targets *tensor.Array[float64]) float64
	Backward(predictions, targets *tensor.Array[float64]) *tensor.Array[float64]
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²), averaged over every element.
//
// Example:
//
//	var mse nn.MSELoss
//	predictions := model.Forward(input)
//	loss := mse.Forward(predictions, targets)
type MSELoss struct{}

// NewLoss returns the loss with the given name. Only "mse" is supported.
func NewLoss(name string) (Loss, error) {
	switch name {
	case "", "mse":
		return MSELoss{}, nil
	default:
		return nil, fmt.Errorf("nn: unknown loss %q", name)
	}
}

// Forward computes the MSE loss.
func (MSELoss) Forward(predictions, targets *tensor.Array[float64]) float64 {
	checkLossShapes(predictions, targets)
	p, t := predictions.Data(), targets.Data()
	if len(p) == 0 {
		return 0
	}
	var sum float64
	for i := range p {
		d := p[i] - t[i]
		sum += d * d
	}
	return sum / float64(len(p))
}

// Backward returns 2 (predictions - targets) / N.
func (MSELoss) Backward(predictions, targets *tensor.Array[float64]) *tensor.Array[float64] {
	checkLossShapes(predictions, targets)
	grad := tensor.Zeros[float64](predictions.Shape())
	g, p, t := grad.Data(), predictions.Data(), targets.Data()
	scale := 2 / float64(max(len(p), 1))
	for i := range p {
		g[i] = scale * (p[i] - t[i])
	}
	return grad
}

func checkLossShapes(predictions, targets *tensor.Array[float64]) {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("mse: predictions %v and targets %v differ in shape", predictions.Shape(), targets.Shape()))
	}
}
