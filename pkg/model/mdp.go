package model

import (
	"github.com/markovkit/markovkit/pkg/errors"
)

// MDP is a sparse tabular fully observable Markov decision process.
type MDP struct {
	States  int `validate:"gt=0"`
	Actions int `validate:"gt=0"`

	Discount float64 `validate:"gte=0,lt=1"`
	Horizon  int     `validate:"gte=1"`

	// Transitions[s][a] is the non-zero successor row for (s, a).
	Transitions [][]SparseVector

	// Rewards[s][a]. Dense.
	Rewards [][]float64
}

// Validate checks the scalar dimensions and the table shapes, reporting any
// violation as InvalidData.
func (m *MDP) Validate() error {
	if err := validate.Struct(m); err != nil {
		return errors.Wrap(err, errors.InvalidData, "invalid MDP dimensions")
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
				errors.Fields{"state": s},
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

	return nil
}
