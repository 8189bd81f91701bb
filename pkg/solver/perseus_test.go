package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markovkit/markovkit/internal/testutil"
	"github.com/markovkit/markovkit/pkg/backend"
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/expand"
)

func zeroSeed(states int) [][]float64 {
	return [][]float64{make([]float64, states)}
}

func TestPerseusTigerSolve(t *testing.T) {
	m := testutil.TigerPOMDP()
	beliefs, _, err := expand.Random(context.Background(), m, 8, testutil.NewRand(7))
	require.NoError(t, err)
	stored := [][]float64{{0.5, 0.5}, {1.0, 0.0}, {0.0, 1.0}}
	m.SetBeliefs(append(stored, beliefs...))

	p := NewPerseus(m, WithRand(testutil.NewRand(11)))
	pol, err := p.Complete(context.Background(), zeroSeed(m.States))
	require.NoError(t, err)
	require.NotNil(t, pol)
	require.Greater(t, pol.R, 0)

	// Under a uniform belief opening either door risks the tiger, so the
	// greedy action is to listen.
	value, action := pol.ValueAndAction([]float64{0.5, 0.5})
	assert.Equal(t, 0, action)
	assert.GreaterOrEqual(t, value, 0.0)

	// Certain beliefs open the far door.
	_, action = pol.ValueAndAction([]float64{1.0, 0.0})
	assert.Equal(t, 2, action)
	_, action = pol.ValueAndAction([]float64{0.0, 1.0})
	assert.Equal(t, 1, action)
}

func TestPerseusSweepMonotonicity(t *testing.T) {
	m := testutil.TigerPOMDP()
	beliefs, _, err := expand.Random(context.Background(), m, 6, testutil.NewRand(3))
	require.NoError(t, err)
	m.SetBeliefs(append([][]float64{{0.5, 0.5}}, beliefs...))

	p := NewPerseus(m, WithRand(testutil.NewRand(5)))
	require.NoError(t, p.Initialize(zeroSeed(m.States)))
	defer p.Uninitialize()

	for sweep := 0; sweep < 3; sweep++ {
		before := make([]float64, m.NumBeliefs())
		for i := range before {
			before[i], _ = p.bestAt(p.slots.current(), i)
		}

		for {
			status, err := p.Update(context.Background())
			require.NoError(t, err)
			if status == StatusConverged {
				break
			}
		}

		// A sweep only completes once every belief's value under the new
		// set has caught up with its value under the old set.
		for i := range before {
			after, _ := p.bestAt(p.slots.current(), i)
			assert.GreaterOrEqual(t, after, before[i]-1e-12,
				"belief %d regressed in sweep %d", i, sweep)
		}
	}
}

func TestPerseusConvergenceSetShrinks(t *testing.T) {
	m := testutil.TigerPOMDP()
	beliefs, _, err := expand.Random(context.Background(), m, 10, testutil.NewRand(9))
	require.NoError(t, err)
	m.SetBeliefs(beliefs)

	p := NewPerseus(m, WithRand(testutil.NewRand(13)))
	require.NoError(t, p.Initialize(zeroSeed(m.States)))
	defer p.Uninitialize()

	prev := p.ConvergenceSetSize()
	assert.Equal(t, m.NumBeliefs(), prev)

	for {
		status, err := p.Update(context.Background())
		require.NoError(t, err)
		if status == StatusConverged {
			assert.Equal(t, m.NumBeliefs(), p.ConvergenceSetSize())
			assert.Equal(t, 1, p.Horizon())
			break
		}
		assert.Less(t, p.ConvergenceSetSize(), prev)
		prev = p.ConvergenceSetSize()
	}
}

func TestPerseusOutOfCapacity(t *testing.T) {
	m := testutil.TigerPOMDP()
	// The two certain beliefs need two distinct vectors; cap the set at one.
	m.SetBeliefs([][]float64{{1.0, 0.0}, {0.0, 1.0}})

	p := NewPerseus(m, WithRand(testutil.NewRand(1)), WithMaxAlphaVectors(1))

	_, err := p.Execute(context.Background(), zeroSeed(m.States))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.OutOfCapacity))

	// Teardown after a fatal update must be safe.
	p.Uninitialize()
	p.Uninitialize()
}

func TestPerseusBackendEquivalence(t *testing.T) {
	m := testutil.TigerPOMDP()
	beliefs, _, err := expand.Random(context.Background(), m, 8, testutil.NewRand(21))
	require.NoError(t, err)
	m.SetBeliefs(append([][]float64{{0.5, 0.5}}, beliefs...))

	seqPol, err := NewPerseus(m, WithRand(testutil.NewRand(42))).
		Complete(context.Background(), zeroSeed(m.States))
	require.NoError(t, err)

	par, err := backend.NewParallel(backend.WithWorkGroupSize(32), backend.WithMaxGoroutines(4))
	require.NoError(t, err)
	parPol, err := NewPerseus(m, WithRand(testutil.NewRand(42)), WithBackend(par)).
		Complete(context.Background(), zeroSeed(m.States))
	require.NoError(t, err)

	uniform := []float64{0.5, 0.5}
	seqV, seqA := seqPol.ValueAndAction(uniform)
	parV, parA := parPol.ValueAndAction(uniform)
	assert.InDelta(t, seqV, parV, 1e-4)
	assert.Equal(t, seqA, parA)
}

func TestPerseusRecorder(t *testing.T) {
	m := testutil.TigerPOMDP()
	m.Horizon = 4

	var records []SweepRecord
	rec := recorderFunc(func(ctx context.Context, r SweepRecord) error {
		records = append(records, r)
		return nil
	})

	p := NewPerseus(m, WithRand(testutil.NewRand(2)), WithRecorder(rec))
	_, err := p.Complete(context.Background(), zeroSeed(m.States))
	require.NoError(t, err)

	require.Len(t, records, m.Horizon)
	for i, r := range records {
		assert.Equal(t, i+1, r.Horizon)
		assert.Greater(t, r.Updates, 0)
		assert.Greater(t, r.Vectors, 0)
		assert.NotEmpty(t, r.SolveID)
	}
}

type recorderFunc func(ctx context.Context, rec SweepRecord) error

func (f recorderFunc) RecordSweep(ctx context.Context, rec SweepRecord) error {
	return f(ctx, rec)
}

func TestPerseusLifecycle(t *testing.T) {
	m := testutil.TigerPOMDP()

	t.Run("update before initialize", func(t *testing.T) {
		p := NewPerseus(m)
		_, err := p.Update(context.Background())
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})

	t.Run("empty initial set", func(t *testing.T) {
		p := NewPerseus(m)
		err := p.Initialize(nil)
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})

	t.Run("wrong vector length", func(t *testing.T) {
		p := NewPerseus(m)
		err := p.Initialize([][]float64{make([]float64, m.States+1)})
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})

	t.Run("initial set over capacity", func(t *testing.T) {
		p := NewPerseus(m, WithMaxAlphaVectors(1))
		err := p.Initialize([][]float64{
			make([]float64, m.States),
			make([]float64, m.States),
		})
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})

	t.Run("policy produced once", func(t *testing.T) {
		p := NewPerseus(m, WithRand(testutil.NewRand(4)))
		require.NoError(t, p.Initialize(zeroSeed(m.States)))
		defer p.Uninitialize()

		for {
			status, err := p.Update(context.Background())
			require.NoError(t, err)
			if status == StatusConverged {
				break
			}
		}

		_, err := p.GetPolicy()
		require.NoError(t, err)
		_, err = p.GetPolicy()
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})
}

func TestPerseusCanceledContext(t *testing.T) {
	m := testutil.TigerPOMDP()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPerseus(m, WithRand(testutil.NewRand(6)))
	_, err := p.Execute(ctx, zeroSeed(m.States))
	assert.True(t, errors.HasCode(err, errors.Canceled))
}
