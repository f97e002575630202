package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForBatch(t *testing.T) {
	cfg := DefaultConfig()

	batch, channels := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, channels)
	}

	ForBatch(batch, channels, func(b, c int) {
		results[b][c] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			assert.True(t, results[b][c], "missing result at [%d][%d]", b, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	order := make([]int, 0, 10)
	For(10, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestWorkers(t *testing.T) {
	assert.False(t, Workers(1).Enabled)
	assert.False(t, Workers(0).Enabled)
	assert.Equal(t, 1, Workers(0).NumWorkers)

	cfg := Workers(4)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.MinChunkSize)
}

func TestForErr(t *testing.T) {
	for _, cfg := range []Config{Sequential(), Workers(3)} {
		slots := make([]int, 20)
		err := ForErr(context.Background(), len(slots), func(_ context.Context, i int) error {
			slots[i] = i * i
			return nil
		}, cfg)
		require.NoError(t, err)
		for i, v := range slots {
			assert.Equal(t, i*i, v)
		}
	}
}

func TestForErr_StopsOnFailure(t *testing.T) {
	boom := errors.New("boom")

	for _, cfg := range []Config{Sequential(), Workers(2)} {
		var started int64
		err := ForErr(context.Background(), 1000, func(ctx context.Context, i int) error {
			atomic.AddInt64(&started, 1)
			if i == 3 {
				return boom
			}
			return ctx.Err()
		}, cfg)

		assert.ErrorIs(t, err, boom)
		assert.Less(t, atomic.LoadInt64(&started), int64(1000))
	}
}

func TestForErr_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ForErr(ctx, 5, func(context.Context, int) error { return nil }, Sequential())
	assert.ErrorIs(t, err, context.Canceled)

	err = ForErr(ctx, 5, func(context.Context, int) error { return nil }, Workers(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000
	data := make([]float64, n)

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			For(n, func(j int) { data[j] = float64(j) * 0.5 }, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			For(n, func(j int) { data[j] = float64(j) * 0.5 }, Sequential())
		}
	})
}
