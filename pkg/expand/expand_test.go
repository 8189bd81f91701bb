package expand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markovkit/markovkit/internal/testutil"
	"github.com/markovkit/markovkit/pkg/errors"
)

func TestRandom(t *testing.T) {
	ctx := context.Background()

	t.Run("produces exactly the requested count", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		points, maxSupport, err := Random(ctx, m, 25, testutil.NewRand(1))
		require.NoError(t, err)
		assert.Len(t, points, 25)
		assert.Greater(t, maxSupport, 0)
		assert.LessOrEqual(t, maxSupport, m.States)
	})

	t.Run("every point is a distribution", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		points, _, err := Random(ctx, m, 50, testutil.NewRand(2))
		require.NoError(t, err)

		for _, b := range points {
			var sum float64
			for _, p := range b {
				assert.GreaterOrEqual(t, p, 0.0)
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-5)
		}
	})

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		first, _, err := Random(ctx, m, 20, testutil.NewRand(7))
		require.NoError(t, err)
		second, _, err := Random(ctx, m, 20, testutil.NewRand(7))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("installs cleanly as a belief set", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		points, maxSupport, err := Random(ctx, m, 30, testutil.NewRand(3))
		require.NoError(t, err)

		m.SetBeliefs(points)
		assert.Equal(t, 30, m.NumBeliefs())
		assert.Equal(t, maxSupport, m.MaxBeliefSupport)
		require.NoError(t, m.Validate())
	})

	t.Run("rejects a non-positive request", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		_, _, err := Random(ctx, m, 0, testutil.NewRand(1))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})

	t.Run("rejects a model without an initial belief", func(t *testing.T) {
		m := testutil.TigerPOMDP()
		m.Beliefs = nil
		_, _, err := Random(ctx, m, 5, testutil.NewRand(1))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})
}
