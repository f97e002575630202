package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/surrogate/internal/tensor"
)

// samples returns an (n, 2) dataset whose row i is [i, -i].
func samples(n int) *tensor.Array[float64] {
	a := tensor.Zeros[float64](tensor.Shape{n, 2})
	for i := 0; i < n; i++ {
		a.Set(float64(i), i, 0)
		a.Set(-float64(i), i, 1)
	}
	return a
}

func TestSizes(t *testing.T) {
	tests := []struct {
		name                    string
		n                       int
		test, validation        float64
		wantTrain, wantT, wantV int
	}{
		{"exact", 100, 0.2, 0, 80, 20, 0},
		{"rounds up", 7, 0.2, 0.1, 4, 2, 1},
		{"with validation", 100, 0.15, 0.15, 70, 15, 15},
		{"no test", 10, 0, 0, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Config{MinTestFraction: tt.test, MinValidationFraction: tt.validation})
			require.NoError(t, err)
			require.NoError(t, s.SetupSplittingRules(tt.n))

			train, test, val := s.Rules().Sizes()
			assert.Equal(t, tt.wantTrain, train)
			assert.Equal(t, tt.wantT, test)
			assert.Equal(t, tt.wantV, val)
		})
	}
}

func TestCompleteness(t *testing.T) {
	orders := map[string]Order{
		"contiguous":  Contiguous(),
		"test first":  Contiguous(Test, Validation, Training),
		"interleaved": Interleaved(42),
	}
	for name, order := range orders {
		for _, n := range []int{1, 2, 5, 17, 100, 1001} {
			s, err := New(Config{MinTestFraction: 0.2, MinValidationFraction: 0.1, Order: order})
			require.NoError(t, err)
			if n < 3 {
				// 20% test and 10% validation of tiny sets leave nothing to train on.
				assert.ErrorIs(t, s.SetupSplittingRules(n), tensor.ErrArgument, name)
				continue
			}
			require.NoError(t, s.SetupSplittingRules(n), name)

			seen := make([]int, n)
			for _, sub := range []Subset{Training, Test, Validation} {
				for _, i := range s.Rules().Indices(sub) {
					seen[i]++
				}
			}
			for i, c := range seen {
				assert.Equal(t, 1, c, "%s n=%d sample %d", name, n, i)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, order := range []Order{Contiguous(), Interleaved(7)} {
		a, err := New(Config{MinTestFraction: 0.25, MinValidationFraction: 0.1, Order: order})
		require.NoError(t, err)
		b, err := New(Config{MinTestFraction: 0.25, MinValidationFraction: 0.1, Order: order})
		require.NoError(t, err)
		require.NoError(t, a.SetupSplittingRules(100))
		require.NoError(t, b.SetupSplittingRules(100))

		for _, sub := range []Subset{Training, Test, Validation} {
			assert.Equal(t, a.Rules().Indices(sub), b.Rules().Indices(sub))
		}

		data := samples(100)
		tr1, te1, va1, err := a.SplitDataset(data)
		require.NoError(t, err)
		tr2, te2, va2, err := a.SplitDataset(data)
		require.NoError(t, err)
		assert.Equal(t, tr1.Data(), tr2.Data())
		assert.Equal(t, te1.Data(), te2.Data())
		assert.Equal(t, va1.Data(), va2.Data())
	}
}

func TestInterleavedSeedsDiffer(t *testing.T) {
	a, err := New(Config{MinTestFraction: 0.3, Order: Interleaved(1)})
	require.NoError(t, err)
	b, err := New(Config{MinTestFraction: 0.3, Order: Interleaved(2)})
	require.NoError(t, err)
	require.NoError(t, a.SetupSplittingRules(50))
	require.NoError(t, b.SetupSplittingRules(50))

	assert.NotEqual(t, a.Rules().Indices(Test), b.Rules().Indices(Test))
	assert.IsIncreasing(t, a.Rules().Indices(Test))
}

func TestContiguousOrder(t *testing.T) {
	s, err := New(Config{MinTestFraction: 0.2, MinValidationFraction: 0.2, Order: Contiguous(Test, Training)})
	require.NoError(t, err)
	require.NoError(t, s.SetupSplittingRules(10))

	assert.Equal(t, []int{0, 1}, s.Rules().Indices(Test))
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, s.Rules().Indices(Training))
	assert.Equal(t, []int{8, 9}, s.Rules().Indices(Validation))

	train, test, val, err := s.SplitDataset(samples(10))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -2}, train.Row(0))
	assert.Equal(t, []float64{1, -1}, test.Row(1))
	assert.Equal(t, tensor.Shape{2, 2}, val.Shape())
}

func TestDefaultSplitter(t *testing.T) {
	s := Default()
	require.NoError(t, s.SetupSplittingRules(10))
	train, test, val, err := s.SplitDataset(samples(10))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{8, 2}, train.Shape())
	assert.Equal(t, []float64{8, -8}, test.Row(0))
	assert.Equal(t, tensor.Shape{0, 2}, val.Shape())
}

func TestSplitDatasetChecksSampleCount(t *testing.T) {
	s := Default()
	_, _, _, err := s.SplitDataset(samples(10))
	assert.ErrorIs(t, err, tensor.ErrArgument, "rules not set up")

	require.NoError(t, s.SetupSplittingRules(10))
	_, _, _, err = s.SplitDataset(samples(9))
	assert.ErrorIs(t, err, tensor.ErrArgument)
}

func TestSplitPairKeepsCorrespondence(t *testing.T) {
	s, err := New(Config{MinTestFraction: 0.3, Order: Interleaved(5)})
	require.NoError(t, err)

	x := samples(20)
	y := tensor.Zeros[float64](tensor.Shape{20, 1, 1, 3})
	for i := 0; i < 20; i++ {
		y.Set(float64(i), i, 0, 0, 2)
	}

	xs, ys, err := s.SplitPair(x, y)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{6, 1, 1, 3}, ys.Test.Shape())
	for i := 0; i < xs.Test.NumSamples(); i++ {
		assert.Equal(t, xs.Test.At(i, 0), ys.Test.At(i, 0, 0, 2))
	}
	for i := 0; i < xs.Training.NumSamples(); i++ {
		assert.Equal(t, xs.Training.At(i, 0), ys.Training.At(i, 0, 0, 2))
	}

	_, _, err = s.SplitPair(x, samples(19))
	assert.ErrorIs(t, err, tensor.ErrArgument)
}

func TestApplyGeneric(t *testing.T) {
	s, err := New(Config{MinTestFraction: 0.5})
	require.NoError(t, err)
	require.NoError(t, s.SetupSplittingRules(4))

	labels := tensor.MustFromSlice([]int32{10, 11, 12, 13}, tensor.Shape{4})
	train, test, _, err := Apply(s.Rules(), labels)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 11}, train.Data())
	assert.Equal(t, []int32{12, 13}, test.Data())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative", Config{MinTestFraction: -0.1}},
		{"one", Config{MinTestFraction: 1}},
		{"sum", Config{MinTestFraction: 0.5, MinValidationFraction: 0.5}},
		{"duplicate subset", Config{Order: Contiguous(Test, Test)}},
		{"unknown subset", Config{Order: Contiguous(Subset(9))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, tensor.ErrArgument)
		})
	}
}
