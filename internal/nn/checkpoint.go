package nn

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/born-ml/surrogate/internal/preprocess"
	"github.com/born-ml/surrogate/internal/serialization"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Model types stored in the checkpoint header.
const (
	kindFeedForward = "FeedForward"
	kindAutoencoder = "Autoencoder"
)

// checkpointModel is the JSON description stored in the header's Model field.
// Weights live in the tensor section, named "<prefix><layer>.<param>".
//
// A checkpoint includes:
//   - the per-sample input shape and the layer specs
//   - the fitted normalization parameters
//   - the training configuration the weights were produced with
type checkpointModel struct {
	Kind           string                 `json:"kind"`
	InputShape     tensor.Shape           `json:"input_shape"`
	Layers         []LayerSpec            `json:"layers"`
	Decoder        []LayerSpec            `json:"decoder,omitempty"`
	NormalizationX *preprocess.Parameters `json:"normalization_x,omitempty"`
	NormalizationY *preprocess.Parameters `json:"normalization_y,omitempty"`
	Train          TrainConfig            `json:"train"`
}

// stage pairs a layer stack with its tensor name prefix.
type stage struct {
	prefix string
	model  *Sequential
}

func saveCheckpoint(path string, m checkpointModel, stages ...stage) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	var tensors []serialization.Tensor
	params := 0
	for _, s := range stages {
		for _, p := range s.model.Parameters() {
			tensors = append(tensors, serialization.Tensor{
				Name:  s.prefix + p.Name(),
				Shape: p.Shape(),
				Data:  p.Value(),
			})
			params += len(p.Value())
		}
	}

	header := serialization.Header{
		ModelType: m.Kind,
		Metadata: map[string]string{
			"parameters": strconv.Itoa(params),
			"optimizer":  m.Train.Optimizer,
		},
		Model: raw,
	}
	return serialization.WriteFile(path, header, tensors)
}

func readCheckpoint(path, kind string) (*serialization.Checkpoint, checkpointModel, error) {
	ckpt, err := serialization.ReadFile(path)
	if err != nil {
		return nil, checkpointModel{}, err
	}
	if ckpt.Header.ModelType != kind {
		return nil, checkpointModel{}, fmt.Errorf("%s: checkpoint holds a %q, expected %q", path, ckpt.Header.ModelType, kind)
	}
	var m checkpointModel
	if err := json.Unmarshal(ckpt.Header.Model, &m); err != nil {
		return nil, checkpointModel{}, fmt.Errorf("%s: failed to decode model: %w", path, err)
	}
	return ckpt, m, nil
}

// restore rebuilds a layer stack from specs and copies the stored weights in.
func restore(ckpt *serialization.Checkpoint, prefix string, in tensor.Shape, specs []LayerSpec) (*Sequential, error) {
	// Build needs an rng; the initial weights are overwritten below.
	model, err := NewSequential(in, rand.New(rand.NewSource(0)), specs...) //nolint:gosec // G404: discarded init
	if err != nil {
		return nil, err
	}
	for _, p := range model.Parameters() {
		t, err := ckpt.Tensor(prefix + p.Name())
		if err != nil {
			return nil, err
		}
		if !tensor.Shape(t.Shape).Equal(p.Shape()) {
			return nil, fmt.Errorf("%w: tensor %s has shape %v, layer expects %v",
				tensor.ErrArgument, t.Name, t.Shape, p.Shape())
		}
		copy(p.Value(), t.Data)
	}
	return model, nil
}
