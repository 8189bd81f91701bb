package solver

import (
	"context"
	"math"

	"github.com/markovkit/markovkit/pkg/backend"
)

// backup performs one Bellman backup at stored belief bIndex against the
// prior-horizon alpha-vector set, returning the best candidate vector and
// its action. This is the engine's dominant cost:
// O(actions * observations * len(gamma) * successors) per call.
//
// The per-action candidates are independent, so they run as one kernel
// launch over actions; the final argmax across actions is host-side.
func backup(ctx context.Context, be backend.Backend, t *pomdpTables, bIndex int, gamma [][]float64) ([]float64, int, error) {
	candidates := make([][]float64, t.m)
	for a := range candidates {
		candidates[a] = make([]float64, t.n)
	}

	if err := be.Launch(ctx, t.m, func(a int) {
		candidateKernel(t, bIndex, gamma, a, candidates[a])
	}); err != nil {
		return nil, 0, err
	}

	bestValue := math.Inf(-1)
	bestAction := 0
	var best []float64
	for a, cand := range candidates {
		v := t.beliefDot(bIndex, cand)
		if v > bestValue {
			bestValue = v
			bestAction = a
			best = cand
		}
	}

	return best, bestAction, nil
}

// candidateKernel builds the action-a candidate vector for belief bIndex:
// the immediate reward plus, per observation, the contribution of the
// prior-horizon vector that maximizes expected continuation value at the
// belief. The winning vector's contribution is summed over all states, not
// just the belief's support, because the candidate must be valid at every
// future belief. With an empty prior set the continuation is zero and the
// candidate is the reward row alone.
func candidateKernel(t *pomdpTables, bIndex int, gamma [][]float64, a int, alpha []float64) {
	for s := 0; s < t.n; s++ {
		alpha[s] = t.rewards[s*t.m+a]
	}

	for o := 0; o < t.z; o++ {
		bestValue := math.Inf(-1)
		bestj := -1

		for j, prior := range gamma {
			var value float64
			for k := t.beliefStart[bIndex]; k < t.beliefStart[bIndex+1]; k++ {
				s := int(t.beliefState[k])

				var vtk float64
				row := s*t.m + a
				for l := t.rowStart[row]; l < t.rowStart[row+1]; l++ {
					sp := t.succ[l]
					vtk += t.obs[a*t.n*t.z+int(sp)*t.z+o] * t.prob[l] * prior[sp]
				}

				value += t.discount * vtk * t.beliefProb[k]
			}

			if value > bestValue {
				bestValue = value
				bestj = j
			}
		}

		if bestj < 0 {
			continue
		}

		prior := gamma[bestj]
		for s := 0; s < t.n; s++ {
			var vtk float64
			row := s*t.m + a
			for l := t.rowStart[row]; l < t.rowStart[row+1]; l++ {
				sp := t.succ[l]
				vtk += t.obs[a*t.n*t.z+int(sp)*t.z+o] * t.prob[l] * prior[sp]
			}
			alpha[s] += t.discount * vtk
		}
	}
}
