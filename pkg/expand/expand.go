// Package expand grows the stored belief set of a POMDP by simulating random
// trajectories from the model's initial belief. This is a best-effort
// exploration heuristic: it samples reachable beliefs but gives no coverage
// guarantee over the belief simplex.
package expand

import (
	"context"
	"math/rand"

	"github.com/markovkit/markovkit/pkg/belief"
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/logging"
	"github.com/markovkit/markovkit/pkg/model"
)

// Random generates exactly numDesired belief points by random exploration.
// Per point it draws a trajectory length uniformly in [0, horizon] and walks
// that many steps from the model's first stored belief: a uniform random
// action, an observation drawn by inverse-transform sampling over the
// cumulative observation probability, then a belief update. Every
// intermediate belief along a trajectory is recorded until the quota is met.
//
// It returns the new dense belief points together with the widest non-zero
// support seen, which sizes the sparse storage of the final belief set. The
// caller owns the RNG; pass a fixed-seed source for deterministic expansion.
func Random(ctx context.Context, m *model.POMDP, numDesired int, rng *rand.Rand) ([][]float64, int, error) {
	if numDesired <= 0 {
		return nil, 0, errors.WithFields(
			errors.New(errors.InvalidData, "requested belief point count must be positive"),
			errors.Fields{"requested": numDesired},
		)
	}
	if len(m.Beliefs) == 0 {
		return nil, 0, errors.New(errors.InvalidData, "model has no initial belief to expand from")
	}

	logger := logging.GetLogger()
	logger.Debug(ctx, "expanding belief set: requesting %d points over horizon %d", numDesired, m.Horizon)

	b0 := m.BeliefDense(0)

	points := make([][]float64, 0, numDesired)
	maxSupport := 0

	for len(points) < numDesired {
		// A fresh trajectory length per pass. Some domains drift beliefs away
		// from regions of the simplex never to return, so many short paths
		// beat one long one.
		h := rng.Intn(m.Horizon + 1)

		b := make([]float64, m.States)
		copy(b, b0)

		for t := 0; t < h; t++ {
			a := rng.Intn(m.Actions)

			// Inverse-transform sampling over the observation distribution:
			// take the first observation whose running probability mass
			// reaches the drawn threshold. The cumulative mass sums to one,
			// so a valid observation is always found.
			target := rng.Float64()
			current := 0.0
			o := 0
			for op := 0; op < m.Observations; op++ {
				current += belief.ObservationProbability(m, b, a, op)
				if current >= target {
					o = op
					break
				}
			}

			bp, err := belief.Update(m, b, a, o)
			if err != nil {
				return nil, 0, errors.Wrap(err, errors.DegenerateBelief, "belief expansion sampled an impossible observation")
			}
			b = bp

			support := 0
			for _, p := range b {
				if p > 0 {
					support++
				}
			}
			if support > maxSupport {
				maxSupport = support
			}

			recorded := make([]float64, m.States)
			copy(recorded, b)
			points = append(points, recorded)

			// Trajectories truncate as soon as the quota is met.
			if len(points) >= numDesired {
				break
			}
		}
	}

	logger.Debug(ctx, "belief expansion produced %d points, max support %d", len(points), maxSupport)

	return points, maxSupport, nil
}
