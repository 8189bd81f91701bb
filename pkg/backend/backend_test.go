package backend

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markovkit/markovkit/pkg/errors"
)

func TestSequentialLaunch(t *testing.T) {
	s := NewSequential()
	assert.Equal(t, "sequential", s.Name())

	out := make([]int, 10)
	err := s.Launch(context.Background(), 10, func(i int) {
		out[i] = i * i
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, out)
}

func TestSequentialStageSharesHostMemory(t *testing.T) {
	s := NewSequential()
	table := []float64{0.25, 0.75}

	staged, err := s.Stage(table)
	require.NoError(t, err)

	staged[0] = 0.5
	assert.Equal(t, 0.5, table[0])
}

func TestSequentialLaunchCanceled(t *testing.T) {
	s := NewSequential()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Launch(ctx, 5, func(int) { t.Fatal("kernel ran after cancel") })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.Canceled))
}

func TestNewParallelValidation(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		p, err := NewParallel()
		require.NoError(t, err)
		assert.Equal(t, "parallel", p.Name())
	})

	t.Run("non-warp-multiple group size rejected", func(t *testing.T) {
		_, err := NewParallel(WithWorkGroupSize(100))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.InvalidLaunchConfig))
	})

	t.Run("zero group size rejected", func(t *testing.T) {
		_, err := NewParallel(WithWorkGroupSize(0))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.InvalidLaunchConfig))
	})

	t.Run("non-positive goroutine bound rejected", func(t *testing.T) {
		_, err := NewParallel(WithMaxGoroutines(0))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.InvalidLaunchConfig))
	})
}

func TestParallelLaunchCoversGrid(t *testing.T) {
	p, err := NewParallel(WithWorkGroupSize(32), WithMaxGoroutines(4))
	require.NoError(t, err)

	// Count so the last work group is ragged.
	const count = 32*3 + 7

	out := make([]int64, count)
	var calls atomic.Int64
	err = p.Launch(context.Background(), count, func(i int) {
		out[i] = int64(i) + 1
		calls.Add(1)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(count), calls.Load())
	for i, v := range out {
		assert.Equal(t, int64(i)+1, v)
	}
}

func TestParallelLaunchBarrier(t *testing.T) {
	p, err := NewParallel(WithWorkGroupSize(64), WithMaxGoroutines(8))
	require.NoError(t, err)

	// Outputs must be complete when Launch returns.
	out := make([]float64, 1000)
	require.NoError(t, p.Launch(context.Background(), 1000, func(i int) {
		out[i] = float64(i)
	}))
	for i, v := range out {
		require.Equal(t, float64(i), v)
	}
}

func TestParallelStage(t *testing.T) {
	t.Run("staged copy is independent of host", func(t *testing.T) {
		p, err := NewParallel()
		require.NoError(t, err)

		host := []float64{1.0, 2.0, 3.0}
		staged, err := p.Stage(host)
		require.NoError(t, err)
		assert.Equal(t, host, staged)

		host[0] = 99.0
		assert.Equal(t, 1.0, staged[0])
	})

	t.Run("index tables stage separately", func(t *testing.T) {
		p, err := NewParallel()
		require.NoError(t, err)

		idx, err := p.StageIndex([]int32{0, 2, 4})
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 2, 4}, idx)
	})

	t.Run("exhausted device memory fails allocation", func(t *testing.T) {
		p, err := NewParallel(WithDeviceCapacity(4, 4))
		require.NoError(t, err)

		_, err = p.Stage(make([]float64, 8))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.AllocationFailed))
	})

	t.Run("release reclaims staged memory", func(t *testing.T) {
		p, err := NewParallel(WithDeviceCapacity(4, 4))
		require.NoError(t, err)

		_, err = p.Stage(make([]float64, 4))
		require.NoError(t, err)
		_, err = p.Stage(make([]float64, 1))
		require.Error(t, err)

		p.Release()
		_, err = p.Stage(make([]float64, 4))
		assert.NoError(t, err)
	})
}
