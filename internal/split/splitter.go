// Package split partitions datasets into training, test and validation subsets.
//
// A Splitter holds the configured minimum fractions and an ordering policy.
// SetupSplittingRules freezes the partition for a sample count; the same
// configuration and sample count always produce the same partition, so repeated
// trials and paired datasets stay consistent.
//
// Example:
//
//	s, _ := split.New(split.Config{MinTestFraction: 0.2})
//	_ = s.SetupSplittingRules(x.NumSamples())
//	xs, ys, _ := s.SplitPair(x, y)
//	train(xs.Training, ys.Training)
package split

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/born-ml/surrogate/internal/tensor"
)

// Subset names one part of a partition.
type Subset int

// Partition subsets.
const (
	Training Subset = iota
	Test
	Validation
)

// String returns the subset name.
func (s Subset) String() string {
	switch s {
	case Training:
		return "training"
	case Test:
		return "test"
	case Validation:
		return "validation"
	default:
		return fmt.Sprintf("Subset(%d)", int(s))
	}
}

// Order decides where each subset lands on the sample axis.
// Use Contiguous or Interleaved to build one; the zero value is
// Contiguous(Training, Test, Validation).
type Order struct {
	blocks      []Subset
	interleaved bool
	seed        int64
}

// Contiguous places the subsets as consecutive blocks in the given order.
// Subsets not listed follow in the default order Training, Test, Validation.
func Contiguous(subsets ...Subset) Order {
	return Order{blocks: subsets}
}

// Interleaved assigns samples to subsets through a permutation seeded with seed.
// Each subset keeps its samples in ascending index order.
func Interleaved(seed int64) Order {
	return Order{interleaved: true, seed: seed}
}

// IsInterleaved reports whether the order uses a seeded permutation.
func (o Order) IsInterleaved() bool { return o.interleaved }

// Seed returns the permutation seed of an interleaved order.
func (o Order) Seed() int64 { return o.seed }

// sequence returns the complete block order.
func (o Order) sequence() ([]Subset, error) {
	seq := make([]Subset, 0, 3)
	for _, s := range o.blocks {
		if s < Training || s > Validation {
			return nil, fmt.Errorf("%w: unknown subset %d", tensor.ErrArgument, int(s))
		}
		if slices.Contains(seq, s) {
			return nil, fmt.Errorf("%w: subset %s listed twice", tensor.ErrArgument, s)
		}
		seq = append(seq, s)
	}
	for _, s := range []Subset{Training, Test, Validation} {
		if !slices.Contains(seq, s) {
			seq = append(seq, s)
		}
	}
	return seq, nil
}

// Config configures a Splitter.
type Config struct {
	// MinTestFraction is the minimum share of samples in the test subset.
	MinTestFraction float64
	// MinValidationFraction is the minimum share of samples in the validation subset.
	// It may be 0.
	MinValidationFraction float64
	// Order places the subsets on the sample axis.
	Order Order
}

// DefaultConfig returns 20% test, no validation, training block first.
func DefaultConfig() Config {
	return Config{
		MinTestFraction: 0.2,
		Order:           Contiguous(Training, Test),
	}
}

// Splitter partitions datasets that share a sample count.
type Splitter struct {
	cfg      Config
	sequence []Subset
	rules    *Rules
}

// New validates cfg and creates a Splitter.
func New(cfg Config) (*Splitter, error) {
	ft, fv := cfg.MinTestFraction, cfg.MinValidationFraction
	if !(ft >= 0 && ft < 1) || !(fv >= 0 && fv < 1) {
		return nil, fmt.Errorf("%w: fractions must be in [0, 1), got test %v and validation %v", tensor.ErrArgument, ft, fv)
	}
	if ft+fv >= 1 {
		return nil, fmt.Errorf("%w: test and validation fractions sum to %v, leaving no training samples", tensor.ErrArgument, ft+fv)
	}
	seq, err := cfg.Order.sequence()
	if err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg, sequence: seq}, nil
}

// Default returns a Splitter with DefaultConfig.
func Default() *Splitter {
	s, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Config returns the splitter's configuration.
func (s *Splitter) Config() Config {
	return s.cfg
}

// SetupSplittingRules computes and freezes the partition of n samples.
// Calling it again replaces the rules.
func (s *Splitter) SetupSplittingRules(n int) error {
	r, err := NewRules(s.cfg, s.sequence, n)
	if err != nil {
		return err
	}
	s.rules = r
	return nil
}

// Rules returns the frozen rules, or nil before SetupSplittingRules.
func (s *Splitter) Rules() *Rules {
	return s.rules
}

// SplitDataset partitions a dataset whose first dimension equals the rule's sample count.
func (s *Splitter) SplitDataset(a *tensor.Array[float64]) (train, test, validation *tensor.Array[float64], err error) {
	if s.rules == nil {
		return nil, nil, nil, fmt.Errorf("%w: splitting rules have not been set up", tensor.ErrArgument)
	}
	return Apply(s.rules, a)
}

// Parts holds the three subsets of one dataset.
type Parts struct {
	Training   *tensor.Array[float64]
	Test       *tensor.Array[float64]
	Validation *tensor.Array[float64]
}

// SplitPair partitions two paired datasets with the same rules. If no rules are set
// up yet they are derived from the datasets' common sample count.
func (s *Splitter) SplitPair(x, y *tensor.Array[float64]) (xs, ys Parts, err error) {
	if err = tensor.CheckSameSamples(x, y); err != nil {
		return xs, ys, err
	}
	if s.rules == nil || s.rules.n != x.NumSamples() {
		if err = s.SetupSplittingRules(x.NumSamples()); err != nil {
			return xs, ys, err
		}
	}
	if xs.Training, xs.Test, xs.Validation, err = s.SplitDataset(x); err != nil {
		return xs, ys, err
	}
	ys.Training, ys.Test, ys.Validation, err = s.SplitDataset(y)
	return xs, ys, err
}

// Rules is a frozen partition of n samples into three disjoint index sets.
type Rules struct {
	n       int
	indices [3][]int
}

// NewRules derives the partition of n samples. The test subset holds
// ceil(n*MinTestFraction) samples, the validation subset ceil(n*MinValidationFraction)
// and the training subset the rest, which must not be empty.
func NewRules(cfg Config, sequence []Subset, n int) (*Rules, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: cannot split %d samples", tensor.ErrArgument, n)
	}
	var sizes [3]int
	sizes[Test] = atLeast(n, cfg.MinTestFraction)
	sizes[Validation] = atLeast(n, cfg.MinValidationFraction)
	sizes[Training] = n - sizes[Test] - sizes[Validation]
	if sizes[Training] <= 0 {
		return nil, fmt.Errorf("%w: %d samples leave no training samples after %d test and %d validation",
			tensor.ErrArgument, n, sizes[Test], sizes[Validation])
	}

	r := &Rules{n: n}
	if cfg.Order.interleaved {
		perm := rand.New(rand.NewSource(cfg.Order.seed)).Perm(n)
		offset := 0
		for _, s := range []Subset{Test, Validation, Training} {
			idx := append([]int(nil), perm[offset:offset+sizes[s]]...)
			slices.Sort(idx)
			r.indices[s] = idx
			offset += sizes[s]
		}
		return r, nil
	}

	offset := 0
	for _, s := range sequence {
		idx := make([]int, sizes[s])
		for i := range idx {
			idx[i] = offset + i
		}
		r.indices[s] = idx
		offset += sizes[s]
	}
	return r, nil
}

// atLeast returns the smallest sample count not below n*fraction. The tolerance keeps
// products such as 100*0.2 from rounding up to 21.
func atLeast(n int, fraction float64) int {
	return int(math.Ceil(float64(n)*fraction - 1e-9))
}

// NumSamples returns the sample count the rules were derived for.
func (r *Rules) NumSamples() int { return r.n }

// Indices returns the sample indices of a subset in ascending order.
func (r *Rules) Indices(s Subset) []int {
	return append([]int(nil), r.indices[s]...)
}

// Sizes returns the number of samples in each subset.
func (r *Rules) Sizes() (train, test, validation int) {
	return len(r.indices[Training]), len(r.indices[Test]), len(r.indices[Validation])
}

// Apply partitions a of any element type with the given rules.
func Apply[T tensor.DType](r *Rules, a *tensor.Array[T]) (train, test, validation *tensor.Array[T], err error) {
	if a.Rank() == 0 || a.Len(0) != r.n {
		return nil, nil, nil, fmt.Errorf("%w: splitting rules are set up for %d samples, dataset has shape %v",
			tensor.ErrArgument, r.n, a.Shape())
	}
	var parts [3]*tensor.Array[T]
	for s := range parts {
		if parts[s], err = tensor.SelectSamples(a, r.indices[s]); err != nil {
			return nil, nil, nil, err
		}
	}
	return parts[Training], parts[Test], parts[Validation], nil
}
