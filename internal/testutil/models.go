// Package testutil provides shared model fixtures for solver tests.
package testutil

import (
	"math/rand"

	"github.com/markovkit/markovkit/pkg/model"
)

// NewRand returns a deterministic RNG for tests.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TigerPOMDP builds the classic tiger problem: two hidden states (tiger
// behind the left or right door), actions listen / open-left / open-right,
// and a noisy listen observation that is 85% accurate. Opening a door resets
// the tiger uniformly at random.
func TigerPOMDP() *model.POMDP {
	uniform := model.SparseVector{Indices: []int{0, 1}, Values: []float64{0.5, 0.5}}
	stayLeft := model.SparseVector{Indices: []int{0}, Values: []float64{1.0}}
	stayRight := model.SparseVector{Indices: []int{1}, Values: []float64{1.0}}

	m := &model.POMDP{
		States:       2,
		Actions:      3,
		Observations: 2,
		Discount:     0.95,
		Horizon:      10,
		Transitions: [][]model.SparseVector{
			{stayLeft, uniform, uniform},
			{stayRight, uniform, uniform},
		},
		Obs: [][][]float64{
			{{0.85, 0.15}, {0.15, 0.85}},
			{{0.5, 0.5}, {0.5, 0.5}},
			{{0.5, 0.5}, {0.5, 0.5}},
		},
		Rewards: [][]float64{
			{-1.0, -100.0, 10.0},
			{-1.0, 10.0, -100.0},
		},
	}
	m.SetBeliefs([][]float64{{0.5, 0.5}})
	return m
}

// AbsorbingMDP builds a two-state MDP with one action where state 0 pays a
// unit reward and both states self-loop. Value iteration converges V[0]
// toward 1/(1-gamma).
func AbsorbingMDP(gamma float64, horizon int) *model.MDP {
	return &model.MDP{
		States:   2,
		Actions:  1,
		Discount: gamma,
		Horizon:  horizon,
		Transitions: [][]model.SparseVector{
			{{Indices: []int{0}, Values: []float64{1.0}}},
			{{Indices: []int{1}, Values: []float64{1.0}}},
		},
		Rewards: [][]float64{{1.0}, {0.0}},
	}
}

// DominantActionMDP builds a two-state, two-action MDP where action 0 pays
// strictly more than action 1 from every state. The optimal policy is
// pi[s] == 0 everywhere.
func DominantActionMDP(horizon int) *model.MDP {
	swap := func(s int) model.SparseVector {
		return model.SparseVector{Indices: []int{1 - s}, Values: []float64{1.0}}
	}
	stay := func(s int) model.SparseVector {
		return model.SparseVector{Indices: []int{s}, Values: []float64{1.0}}
	}
	return &model.MDP{
		States:   2,
		Actions:  2,
		Discount: 0.9,
		Horizon:  horizon,
		Transitions: [][]model.SparseVector{
			{stay(0), swap(0)},
			{stay(1), swap(1)},
		},
		Rewards: [][]float64{{10.0, 1.0}, {10.0, 1.0}},
	}
}
