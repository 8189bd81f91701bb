// Package belief implements the POMDP belief-state operator: posterior
// updates after an (action, observation) pair and the observation
// probabilities that normalize them. All computation is restricted to the
// sparse successor rows of the model.
package belief

import (
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/model"
)

// Update computes the posterior belief after taking action a and observing o
// from belief b:
//
//	bp[sp] = O[a][sp][o] * sum_s T[s][a][sp] * b[s]
//
// followed by L1 normalization. It fails with DegenerateBelief when the
// normalizing constant is zero, meaning the observation has (near) zero
// probability under b and a; callers sampling observations must guard
// against picking such pairs.
func Update(m *model.POMDP, b []float64, a, o int) ([]float64, error) {
	bp := make([]float64, m.States)

	for s := 0; s < m.States; s++ {
		if b[s] == 0 {
			continue
		}
		tr := m.Transitions[s][a]
		for k, sp := range tr.Indices {
			bp[sp] += tr.Values[k] * b[s]
		}
	}

	var norm float64
	for sp := 0; sp < m.States; sp++ {
		bp[sp] *= m.Obs[a][sp][o]
		norm += bp[sp]
	}

	if norm <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.DegenerateBelief, "observation has zero probability under belief"),
			errors.Fields{"action": a, "observation": o},
		)
	}

	for sp := 0; sp < m.States; sp++ {
		bp[sp] /= norm
	}

	return bp, nil
}

// ObservationProbability returns the probability of observing o after taking
// action a from belief b:
//
//	sum_s b[s] * sum_sp T[s][a][sp] * O[a][sp][o]
func ObservationProbability(m *model.POMDP, b []float64, a, o int) float64 {
	var prob float64

	for s := 0; s < m.States; s++ {
		if b[s] == 0 {
			continue
		}
		var val float64
		tr := m.Transitions[s][a]
		for k, sp := range tr.Indices {
			val += tr.Values[k] * m.Obs[a][sp][o]
		}
		prob += val * b[s]
	}

	return prob
}

// Value evaluates an alpha-vector at stored belief i: the dot product over
// the belief's support.
func Value(m *model.POMDP, i int, alpha []float64) float64 {
	return m.Beliefs[i].Dot(alpha)
}

// Best returns the maximum value achievable at stored belief i over a set of
// alpha-vectors, along with the index of the maximizing vector. Ties keep
// the first vector in index order. With an empty set it returns the zero
// value and index -1.
func Best(m *model.POMDP, i int, set [][]float64) (float64, int) {
	best := 0.0
	bestIdx := -1
	for j, alpha := range set {
		v := m.Beliefs[i].Dot(alpha)
		if bestIdx < 0 || v > best {
			best = v
			bestIdx = j
		}
	}
	return best, bestIdx
}
