package model

import (
	"github.com/go-playground/validator/v10"

	"github.com/markovkit/markovkit/pkg/errors"
)

// POMDP is a sparse tabular partially observable Markov decision process.
// The solver treats it as read-only for the lifetime of a solve, so a single
// model may safely back concurrent kernels within one backend.
type POMDP struct {
	States       int `validate:"gt=0"`
	Actions      int `validate:"gt=0"`
	Observations int `validate:"gt=0"`

	// Discount may be 1 only in goal-absorbing settings.
	Discount float64 `validate:"gte=0,lte=1"`
	Horizon  int     `validate:"gte=1"`

	// Transitions[s][a] is the non-zero successor row for (s, a): successor
	// state indices with their transition probabilities.
	Transitions [][]SparseVector

	// Obs[a][sp][o] is the probability of observing o after reaching sp
	// under action a. Dense.
	Obs [][][]float64

	// Rewards[s][a]. Dense.
	Rewards [][]float64

	// Beliefs is the stored belief set. Its length bounds both the number of
	// belief points swept by the engine and the alpha-vector capacity.
	Beliefs []SparseVector

	// MaxBeliefSupport is the largest non-zero entry count seen across the
	// stored beliefs. Sized by belief expansion.
	MaxBeliefSupport int
}

var validate = validator.New()

// NumBeliefs returns the number of stored belief points, which is also the
// alpha-vector capacity of a solve.
func (m *POMDP) NumBeliefs() int {
	return len(m.Beliefs)
}

// BeliefDense expands stored belief i into a dense distribution over states.
func (m *POMDP) BeliefDense(i int) []float64 {
	return m.Beliefs[i].Dense(m.States)
}

// SetBeliefs installs an expanded belief set, converting each dense point to
// sparse storage and recording the widest support.
func (m *POMDP) SetBeliefs(dense [][]float64) {
	m.Beliefs = make([]SparseVector, len(dense))
	m.MaxBeliefSupport = 0
	for i, b := range dense {
		row := FromDense(b)
		m.Beliefs[i] = row
		if row.Len() > m.MaxBeliefSupport {
			m.MaxBeliefSupport = row.Len()
		}
	}
}

// Validate checks the scalar dimensions and the table shapes. All violations
// are reported as InvalidData; the solver refuses to initialize on any of
// them.
func (m *POMDP) Validate() error {
	if err := validate.Struct(m); err != nil {
		return errors.Wrap(err, errors.InvalidData, "invalid POMDP dimensions")
	}

	if len(m.Transitions) != m.States {
		return errors.WithFields(
			errors.New(errors.InvalidData, "transition table does not cover all states"),
			errors.Fields{"states": m.States, "rows": len(m.Transitions)},
		)
	}
	for s, row := range m.Transitions {
		if len(row) != m.Actions {
			return errors.WithFields(
				errors.New(errors.InvalidData, "transition row does not cover all actions"),
				errors.Fields{"state": s, "actions": m.Actions, "cols": len(row)},
			)
		}
		for a, tr := range row {
			if len(tr.Indices) != len(tr.Values) {
				return errors.WithFields(
					errors.New(errors.InvalidData, "sparse transition row is misaligned"),
					errors.Fields{"state": s, "action": a},
				)
			}
			for _, sp := range tr.Indices {
				if sp < 0 || sp >= m.States {
					return errors.WithFields(
						errors.New(errors.InvalidData, "successor state out of range"),
						errors.Fields{"state": s, "action": a, "successor": sp},
					)
				}
			}
		}
	}

	if len(m.Obs) != m.Actions {
		return errors.New(errors.InvalidData, "observation table does not cover all actions")
	}
	for a, byState := range m.Obs {
		if len(byState) != m.States {
			return errors.WithFields(
				errors.New(errors.InvalidData, "observation table does not cover all successor states"),
				errors.Fields{"action": a},
			)
		}
		for sp, byObs := range byState {
			if len(byObs) != m.Observations {
				return errors.WithFields(
					errors.New(errors.InvalidData, "observation row does not cover all observations"),
					errors.Fields{"action": a, "successor": sp},
				)
			}
		}
	}

	if len(m.Rewards) != m.States {
		return errors.New(errors.InvalidData, "reward table does not cover all states")
	}
	for s, row := range m.Rewards {
		if len(row) != m.Actions {
			return errors.WithFields(
				errors.New(errors.InvalidData, "reward row does not cover all actions"),
				errors.Fields{"state": s},
			)
		}
	}

	if len(m.Beliefs) == 0 {
		return errors.New(errors.InvalidData, "stored belief set is empty")
	}
	for i, b := range m.Beliefs {
		if len(b.Indices) != len(b.Values) {
			return errors.WithFields(
				errors.New(errors.InvalidData, "sparse belief is misaligned"),
				errors.Fields{"belief": i},
			)
		}
		for _, s := range b.Indices {
			if s < 0 || s >= m.States {
				return errors.WithFields(
					errors.New(errors.InvalidData, "belief support state out of range"),
					errors.Fields{"belief": i, "state": s},
				)
			}
		}
	}

	return nil
}
