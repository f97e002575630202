package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/surrogate/internal/tensor"
)

// ErrUnknownKind is returned when parsing an unsupported normalization name.
var ErrUnknownKind = errors.New("unknown normalization")

// Kind selects a normalization strategy.
type Kind int

// Normalization kinds.
const (
	Null Kind = iota
	MinMax
	ZScore
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case MinMax:
		return "minmax"
	case ZScore:
		return "zscore"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "null", "minmax" or "zscore" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "none", "":
		return Null, nil
	case "minmax", "min-max":
		return MinMax, nil
	case "zscore", "z-score":
		return ZScore, nil
	default:
		return Null, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Direction selects the axis statistics are computed along.
type Direction int

// Normalization directions.
const (
	// PerColumn computes one statistic per column (feature) over all rows.
	PerColumn Direction = iota
	// PerRow computes one statistic per row (sample) over all columns.
	PerRow
)

// String returns the configuration name of the direction.
func (d Direction) String() string {
	if d == PerRow {
		return "row"
	}
	return "column"
}

// ParseDirection parses "row" or "column".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "column", "percolumn", "":
		return PerColumn, nil
	case "row", "perrow":
		return PerRow, nil
	default:
		return PerColumn, fmt.Errorf("%w: unknown direction %q", tensor.ErrArgument, s)
	}
}

// Parameters is the fitted, immutable state of a normalization.
// The zero value is not usable; obtain Parameters from Fit or Identity.
type Parameters struct {
	kind       Kind
	direction  Direction
	offset     []float64
	scale      []float64
	degenerate []int
}

// Fit computes normalization parameters of the given kind over a rank-2 dataset.
func Fit(kind Kind, data *tensor.Array[float64], dir Direction) (*Parameters, error) {
	if data.Rank() != 2 {
		return nil, fmt.Errorf("%w: normalization needs rank-2 data, got shape %v", tensor.ErrArgument, data.Shape())
	}
	if dir != PerColumn && dir != PerRow {
		return nil, fmt.Errorf("%w: unknown direction %d", tensor.ErrArgument, int(dir))
	}
	lanes := lanesOf(data, dir)

	p := &Parameters{
		kind:      kind,
		direction: dir,
		offset:    make([]float64, len(lanes)),
		scale:     make([]float64, len(lanes)),
	}
	for i, lane := range lanes {
		var offset, scale float64
		switch kind {
		case Null:
			offset, scale = 0, 1
		case MinMax:
			if len(lane) == 0 {
				return nil, fmt.Errorf("%w: cannot fit min-max on an empty direction", tensor.ErrArgument)
			}
			offset = floats.Min(lane)
			scale = floats.Max(lane) - offset
		case ZScore:
			if len(lane) == 0 {
				return nil, fmt.Errorf("%w: cannot fit z-score on an empty direction", tensor.ErrArgument)
			}
			if len(lane) == 1 {
				offset, scale = lane[0], 0
			} else {
				offset, scale = stat.MeanStdDev(lane, nil)
			}
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
		}

		if !(scale > 0) {
			scale = 1
			p.degenerate = append(p.degenerate, i)
		}
		p.offset[i] = offset
		p.scale[i] = scale
	}
	return p, nil
}

// Identity returns Null parameters for n directions.
func Identity(n int, dir Direction) *Parameters {
	p := &Parameters{
		kind:      Null,
		direction: dir,
		offset:    make([]float64, n),
		scale:     make([]float64, n),
	}
	for i := range p.scale {
		p.scale[i] = 1
	}
	return p
}

// Kind returns the normalization kind.
func (p *Parameters) Kind() Kind { return p.kind }

// Direction returns the direction the parameters were fitted along.
func (p *Parameters) Direction() Direction { return p.direction }

// Len returns the number of fitted directions.
func (p *Parameters) Len() int { return len(p.offset) }

// Offset returns a copy of the per-direction offsets (min or mean).
func (p *Parameters) Offset() []float64 { return append([]float64(nil), p.offset...) }

// ScalingRatio returns a copy of the per-direction scale (range, stddev or 1).
func (p *Parameters) ScalingRatio() []float64 { return append([]float64(nil), p.scale...) }

// Degenerate returns the directions whose range or variance was zero when fitted.
func (p *Parameters) Degenerate() []int { return append([]int(nil), p.degenerate...) }

// Normalize returns (x - offset) / scale for every element.
func (p *Parameters) Normalize(data *tensor.Array[float64]) (*tensor.Array[float64], error) {
	return p.apply(data, func(x, offset, scale float64) float64 { return (x - offset) / scale })
}

// Denormalize returns x*scale + offset for every element, inverting Normalize.
func (p *Parameters) Denormalize(data *tensor.Array[float64]) (*tensor.Array[float64], error) {
	return p.apply(data, func(x, offset, scale float64) float64 { return x*scale + offset })
}

func (p *Parameters) apply(data *tensor.Array[float64], f func(x, offset, scale float64) float64) (*tensor.Array[float64], error) {
	if p.kind == Null {
		return data.Clone(), nil
	}
	if data.Rank() != 2 {
		return nil, fmt.Errorf("%w: normalization needs rank-2 data, got shape %v", tensor.ErrArgument, data.Shape())
	}
	rows, cols := data.Len(0), data.Len(1)
	want := cols
	if p.direction == PerRow {
		want = rows
	}
	if want != len(p.offset) {
		return nil, fmt.Errorf("%w: parameters fitted on %d %ss, data of shape %v has %d",
			tensor.ErrArgument, len(p.offset), p.direction, data.Shape(), want)
	}

	out := tensor.Zeros[float64](data.Shape())
	src, dst := data.Data(), out.Data()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			k := c
			if p.direction == PerRow {
				k = r
			}
			dst[r*cols+c] = f(src[r*cols+c], p.offset[k], p.scale[k])
		}
	}
	return out, nil
}

// lanesOf returns the rows or the columns of a rank-2 array as separate slices.
func lanesOf(data *tensor.Array[float64], dir Direction) [][]float64 {
	if dir == PerRow {
		return data.Rows()
	}
	rows, cols := data.Len(0), data.Len(1)
	src := data.Data()
	lanes := make([][]float64, cols)
	for c := range lanes {
		lane := make([]float64, rows)
		for r := 0; r < rows; r++ {
			lane[r] = src[r*cols+c]
		}
		lanes[c] = lane
	}
	return lanes
}
