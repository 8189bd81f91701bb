// Package policy holds the solver outputs: a piecewise-linear convex value
// function over beliefs (alpha-vectors with action tags) for POMDPs, and a
// dense value/action table for MDPs. Containers are allocated exactly once
// per successful solve and owned by the caller after return.
package policy

// AlphaVectors is the alpha-vector representation of a POMDP policy. Each of
// the R vectors is a dense length-N array tagged with the action that
// produced it.
type AlphaVectors struct {
	N int // number of states
	M int // number of actions
	R int // number of alpha-vectors

	Vectors [][]float64
	Actions []int
}

// ValueAndAction evaluates the policy at a dense belief: the maximum dot
// product across the alpha-vectors, and the action tag of the maximizing
// vector. Ties keep the first vector in index order.
func (p *AlphaVectors) ValueAndAction(b []float64) (float64, int) {
	bestValue := 0.0
	bestAction := 0
	found := false

	for i, alpha := range p.Vectors {
		var v float64
		for s, bs := range b {
			v += bs * alpha[s]
		}
		if !found || v > bestValue {
			bestValue = v
			bestAction = p.Actions[i]
			found = true
		}
	}

	return bestValue, bestAction
}

// ValueFunction is the dense MDP policy: the value and greedy action per
// state.
type ValueFunction struct {
	N int // number of states
	M int // number of actions

	V  []float64
	Pi []int
}

// ValueAndAction returns the stored value and greedy action at state s.
func (p *ValueFunction) ValueAndAction(s int) (float64, int) {
	return p.V[s], p.Pi[s]
}
