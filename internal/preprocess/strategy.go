package preprocess

import (
	"encoding/json"
	"fmt"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Strategy fits normalization parameters. It is the composition point used where a
// stage receives its normalization from configuration rather than a fixed Kind.
type Strategy interface {
	Kind() Kind
	Fit(data *tensor.Array[float64], dir Direction) (*Parameters, error)
}

// MinMaxNormalization scales every direction to [0, 1].
type MinMaxNormalization struct{}

// Kind returns MinMax.
func (MinMaxNormalization) Kind() Kind { return MinMax }

// Fit computes per-direction minimum and range.
func (MinMaxNormalization) Fit(data *tensor.Array[float64], dir Direction) (*Parameters, error) {
	return Fit(MinMax, data, dir)
}

// ZScoreNormalization scales every direction to zero mean and unit sample stddev.
type ZScoreNormalization struct{}

// Kind returns ZScore.
func (ZScoreNormalization) Kind() Kind { return ZScore }

// Fit computes per-direction mean and sample standard deviation.
func (ZScoreNormalization) Fit(data *tensor.Array[float64], dir Direction) (*Parameters, error) {
	return Fit(ZScore, data, dir)
}

// NullNormalization leaves data untouched.
type NullNormalization struct{}

// Kind returns Null.
func (NullNormalization) Kind() Kind { return Null }

// Fit returns identity parameters sized to the data.
func (NullNormalization) Fit(data *tensor.Array[float64], dir Direction) (*Parameters, error) {
	return Fit(Null, data, dir)
}

// NewStrategy returns the strategy for a kind.
func NewStrategy(kind Kind) (Strategy, error) {
	switch kind {
	case Null:
		return NullNormalization{}, nil
	case MinMax:
		return MinMaxNormalization{}, nil
	case ZScore:
		return ZScoreNormalization{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// DescaleJacobian rescales a Jacobian computed in normalized space to physical units.
// jac has shape (outputs, inputs); entry (i, j) is multiplied by ratioY[i] / ratioX[j].
// Both parameter sets must be fitted per column.
func DescaleJacobian(jac *tensor.Array[float64], x, y *Parameters) error {
	if x.direction != PerColumn || y.direction != PerColumn {
		return fmt.Errorf("%w: gradients can only be descaled with per-column parameters", tensor.ErrArgument)
	}
	if jac.Rank() != 2 || jac.Len(0) != y.Len() || jac.Len(1) != x.Len() {
		return fmt.Errorf("%w: jacobian of shape %v does not match %d outputs and %d inputs",
			tensor.ErrArgument, jac.Shape(), y.Len(), x.Len())
	}
	data := jac.Data()
	cols := x.Len()
	for i, ry := range y.scale {
		for j, rx := range x.scale {
			data[i*cols+j] *= ry / rx
		}
	}
	return nil
}

type parametersJSON struct {
	Kind       string    `json:"kind"`
	Direction  string    `json:"direction"`
	Offset     []float64 `json:"offset"`
	Scale      []float64 `json:"scale"`
	Degenerate []int     `json:"degenerate,omitempty"`
}

// MarshalJSON encodes the parameters for checkpoints.
func (p *Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(parametersJSON{
		Kind:       p.kind.String(),
		Direction:  p.direction.String(),
		Offset:     p.offset,
		Scale:      p.scale,
		Degenerate: p.degenerate,
	})
}

// UnmarshalJSON restores parameters written by MarshalJSON.
func (p *Parameters) UnmarshalJSON(b []byte) error {
	var raw parametersJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return err
	}
	dir, err := ParseDirection(raw.Direction)
	if err != nil {
		return err
	}
	if len(raw.Offset) != len(raw.Scale) {
		return fmt.Errorf("%w: %d offsets and %d scales", tensor.ErrArgument, len(raw.Offset), len(raw.Scale))
	}
	for i, s := range raw.Scale {
		if s == 0 {
			return fmt.Errorf("%w: zero scale in direction %d", tensor.ErrArgument, i)
		}
	}
	*p = Parameters{
		kind:       kind,
		direction:  dir,
		offset:     raw.Offset,
		scale:      raw.Scale,
		degenerate: raw.Degenerate,
	}
	return nil
}
