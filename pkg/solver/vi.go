package solver

import (
	"context"
	"math"
	"time"

	"github.com/markovkit/markovkit/pkg/backend"
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/logging"
	"github.com/markovkit/markovkit/pkg/model"
	"github.com/markovkit/markovkit/pkg/policy"
)

// VI is fixed-horizon value iteration for MDPs. Each sweep applies the
// dense Bellman kernel to every state independently, which is what licenses
// the data-parallel launch; there is no per-sweep convergence check.
type VI struct {
	model   *model.MDP
	backend backend.Backend
	logger  *logging.Logger

	tables *mdpTables
	slots  *valueSlots
	pi     []int

	iteration      int
	initialized    bool
	policyProduced bool
}

// VIOption defines functional options for value iteration.
type VIOption func(*VI)

// WithVIBackend selects the execution backend for this solve.
func WithVIBackend(be backend.Backend) VIOption {
	return func(v *VI) {
		v.backend = be
	}
}

// NewVI creates a value-iteration solver over the given model.
func NewVI(m *model.MDP, opts ...VIOption) *VI {
	v := &VI{
		model:   m,
		backend: backend.NewSequential(),
		logger:  logging.GetLogger(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Initialize validates the model, stages the transition and reward tables
// on the backend once, and seeds both value buffers with the initial value
// function.
func (v *VI) Initialize(initialV []float64) error {
	if err := v.model.Validate(); err != nil {
		return err
	}
	if len(initialV) != v.model.States {
		return errors.WithFields(
			errors.New(errors.InvalidData, "initial value function has wrong length"),
			errors.Fields{"length": len(initialV), "states": v.model.States},
		)
	}
	if v.policyProduced {
		return errors.New(errors.InvalidData, "previous policy was not cleared before reinitializing")
	}

	tables, err := stageMDP(v.backend, v.model)
	if err != nil {
		return err
	}
	v.tables = tables

	v.slots = newValueSlots(initialV)
	v.pi = make([]int, v.model.States)
	v.iteration = 0
	v.initialized = true

	return nil
}

// Update applies one Bellman sweep from the current buffer into the other,
// then swaps ownership. Only the value and policy buffers move between
// sweeps; the model tables stay staged.
func (v *VI) Update(ctx context.Context) error {
	if !v.initialized {
		return errors.New(errors.InvalidData, "solver is not initialized")
	}

	t := v.tables
	V := v.slots.current()
	VPrime := v.slots.next()
	pi := v.pi

	if err := v.backend.Launch(ctx, t.n, func(s int) {
		bellmanKernel(t, V, VPrime, pi, s)
	}); err != nil {
		return err
	}

	v.slots.advance()
	v.iteration++

	return nil
}

// Execute runs the full solve: initialization, exactly horizon sweeps,
// policy extraction from the buffer matching horizon parity, and teardown.
func (v *VI) Execute(ctx context.Context, initialV []float64) (*policy.ValueFunction, error) {
	if _, ok := logging.GetSolveID(ctx); !ok {
		ctx = logging.WithSolveID(ctx)
	}

	if err := v.Initialize(initialV); err != nil {
		return nil, err
	}

	start := time.Now()
	for i := 0; i < v.model.Horizon; i++ {
		if err := v.Update(ctx); err != nil {
			return nil, err
		}
	}
	v.logger.Info(ctx, "value iteration finished %d sweeps over %d states in %s",
		v.iteration, v.model.States, time.Since(start))

	pol, err := v.GetPolicy()
	if err != nil {
		return nil, err
	}
	v.Uninitialize()

	return pol, nil
}

// Complete is the one-shot convenience entry point; it coincides with
// Execute because staging and release happen in Initialize/Uninitialize.
func (v *VI) Complete(ctx context.Context, initialV []float64) (*policy.ValueFunction, error) {
	return v.Execute(ctx, initialV)
}

// GetPolicy extracts the value function and greedy policy. It fails if a
// policy was already produced and not cleared by Uninitialize.
func (v *VI) GetPolicy() (*policy.ValueFunction, error) {
	if !v.initialized {
		return nil, errors.New(errors.InvalidData, "solver is not initialized")
	}
	if v.policyProduced {
		return nil, errors.New(errors.InvalidData, "policy already produced and not cleared")
	}

	pol := &policy.ValueFunction{
		N:  v.model.States,
		M:  v.model.Actions,
		V:  make([]float64, v.model.States),
		Pi: make([]int, v.model.States),
	}
	copy(pol.V, v.slots.current())
	copy(pol.Pi, v.pi)

	v.policyProduced = true
	return pol, nil
}

// Uninitialize releases all solve-scoped buffers and staged device memory.
func (v *VI) Uninitialize() {
	v.backend.Release()
	v.tables = nil
	v.slots = nil
	v.pi = nil
	v.iteration = 0
	v.initialized = false
	v.policyProduced = false
}

// Iteration returns the number of completed sweeps.
func (v *VI) Iteration() int {
	return v.iteration
}

// bellmanKernel computes the per-state Bellman update
//
//	VPrime[s] = max_a ( R[s][a] + gamma * sum_sp T[s][a][sp] * V[sp] )
//
// with the greedy action recorded in pi[s]. States are independent within a
// sweep; ties keep the first action in index order.
func bellmanKernel(t *mdpTables, V, VPrime []float64, pi []int, s int) {
	best := math.Inf(-1)
	bestAction := 0

	for a := 0; a < t.m; a++ {
		q := t.rewards[s*t.m+a]
		row := s*t.m + a
		for l := t.rowStart[row]; l < t.rowStart[row+1]; l++ {
			q += t.discount * t.prob[l] * V[t.succ[l]]
		}
		if q > best {
			best = q
			bestAction = a
		}
	}

	VPrime[s] = best
	pi[s] = bestAction
}
