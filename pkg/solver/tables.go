package solver

import (
	"github.com/markovkit/markovkit/pkg/backend"
	"github.com/markovkit/markovkit/pkg/model"
)

// mdpTables is the flattened, backend-staged view of an MDP. The sparse
// transition rows use a compressed layout: row (s, a) occupies
// [rowStart[s*m+a], rowStart[s*m+a+1]) in succ/prob. Tables are staged once
// per solve; only the value/policy buffers evolve between sweeps.
type mdpTables struct {
	n, m     int
	discount float64

	rowStart []int32
	succ     []int32
	prob     []float64
	rewards  []float64
}

func stageMDP(be backend.Backend, m *model.MDP) (*mdpTables, error) {
	rowStart := make([]int32, m.States*m.Actions+1)
	var succ []int32
	var prob []float64
	rewards := make([]float64, m.States*m.Actions)

	for s := 0; s < m.States; s++ {
		for a := 0; a < m.Actions; a++ {
			rowStart[s*m.Actions+a] = int32(len(succ))
			tr := m.Transitions[s][a]
			for k, sp := range tr.Indices {
				succ = append(succ, int32(sp))
				prob = append(prob, tr.Values[k])
			}
			rewards[s*m.Actions+a] = m.Rewards[s][a]
		}
	}
	rowStart[m.States*m.Actions] = int32(len(succ))

	t := &mdpTables{n: m.States, m: m.Actions, discount: m.Discount}

	var err error
	if t.rowStart, err = be.StageIndex(rowStart); err != nil {
		return nil, err
	}
	if t.succ, err = be.StageIndex(succ); err != nil {
		return nil, err
	}
	if t.prob, err = be.Stage(prob); err != nil {
		return nil, err
	}
	if t.rewards, err = be.Stage(rewards); err != nil {
		return nil, err
	}

	return t, nil
}

// pomdpTables extends the layout with the dense observation table and the
// sparse stored belief set. obs is indexed a*n*z + sp*z + o.
type pomdpTables struct {
	n, m, z  int
	discount float64

	rowStart []int32
	succ     []int32
	prob     []float64
	obs      []float64
	rewards  []float64

	beliefStart []int32
	beliefState []int32
	beliefProb  []float64
}

func stagePOMDP(be backend.Backend, m *model.POMDP) (*pomdpTables, error) {
	rowStart := make([]int32, m.States*m.Actions+1)
	var succ []int32
	var prob []float64
	rewards := make([]float64, m.States*m.Actions)

	for s := 0; s < m.States; s++ {
		for a := 0; a < m.Actions; a++ {
			rowStart[s*m.Actions+a] = int32(len(succ))
			tr := m.Transitions[s][a]
			for k, sp := range tr.Indices {
				succ = append(succ, int32(sp))
				prob = append(prob, tr.Values[k])
			}
			rewards[s*m.Actions+a] = m.Rewards[s][a]
		}
	}
	rowStart[m.States*m.Actions] = int32(len(succ))

	obs := make([]float64, m.Actions*m.States*m.Observations)
	for a := 0; a < m.Actions; a++ {
		for sp := 0; sp < m.States; sp++ {
			copy(obs[a*m.States*m.Observations+sp*m.Observations:], m.Obs[a][sp])
		}
	}

	beliefStart := make([]int32, len(m.Beliefs)+1)
	var beliefState []int32
	var beliefProb []float64
	for i, b := range m.Beliefs {
		beliefStart[i] = int32(len(beliefState))
		for k, s := range b.Indices {
			beliefState = append(beliefState, int32(s))
			beliefProb = append(beliefProb, b.Values[k])
		}
	}
	beliefStart[len(m.Beliefs)] = int32(len(beliefState))

	t := &pomdpTables{n: m.States, m: m.Actions, z: m.Observations, discount: m.Discount}

	var err error
	if t.rowStart, err = be.StageIndex(rowStart); err != nil {
		return nil, err
	}
	if t.succ, err = be.StageIndex(succ); err != nil {
		return nil, err
	}
	if t.prob, err = be.Stage(prob); err != nil {
		return nil, err
	}
	if t.obs, err = be.Stage(obs); err != nil {
		return nil, err
	}
	if t.rewards, err = be.Stage(rewards); err != nil {
		return nil, err
	}
	if t.beliefStart, err = be.StageIndex(beliefStart); err != nil {
		return nil, err
	}
	if t.beliefState, err = be.StageIndex(beliefState); err != nil {
		return nil, err
	}
	if t.beliefProb, err = be.Stage(beliefProb); err != nil {
		return nil, err
	}

	return t, nil
}

// beliefDot evaluates an alpha-vector at stored belief i over its support.
func (t *pomdpTables) beliefDot(i int, alpha []float64) float64 {
	var sum float64
	for k := t.beliefStart[i]; k < t.beliefStart[i+1]; k++ {
		sum += t.beliefProb[k] * alpha[t.beliefState[k]]
	}
	return sum
}
