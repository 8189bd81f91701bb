// Package solver implements value iteration for MDPs and the randomized
// Perseus point-based value-iteration engine for POMDPs. Both follow the
// same three-phase surface (Initialize, repeated Update, GetPolicy,
// Uninitialize) and run their numeric kernels on a pluggable backend.
package solver

import (
	"context"
	"math/rand"
	"time"

	"github.com/markovkit/markovkit/pkg/backend"
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/logging"
	"github.com/markovkit/markovkit/pkg/model"
	"github.com/markovkit/markovkit/pkg/policy"
)

// Perseus is the randomized point-based value-iteration engine. Each update
// backs up one belief sampled from the convergence set BTilde; a horizon
// sweep completes when BTilde empties, which is guaranteed within one backup
// per stored belief because every update removes at least the sampled index.
type Perseus struct {
	model    *model.POMDP
	backend  backend.Backend
	rng      *rand.Rand
	logger   *logging.Logger
	recorder Recorder

	// Alpha-vector capacity. Defaults to the stored belief count.
	capacity int

	tables *pomdpTables
	slots  *alphaSlots
	bTilde []int

	horizonIndex   int
	sweepUpdates   int
	sweepStart     time.Time
	initialized    bool
	policyProduced bool
}

// PerseusOption defines functional options for the Perseus engine.
type PerseusOption func(*Perseus)

// WithBackend selects the execution backend for this solve.
func WithBackend(be backend.Backend) PerseusOption {
	return func(p *Perseus) {
		p.backend = be
	}
}

// WithRand injects the random source used for belief sampling. Tests supply
// a fixed seed here; the default is time-seeded.
func WithRand(rng *rand.Rand) PerseusOption {
	return func(p *Perseus) {
		p.rng = rng
	}
}

// WithRecorder attaches a sweep telemetry recorder.
func WithRecorder(r Recorder) PerseusOption {
	return func(p *Perseus) {
		p.recorder = r
	}
}

// WithMaxAlphaVectors caps the accepted alpha-vector count per horizon.
// Exceeding the cap during a sweep is a fatal OutOfCapacity error.
func WithMaxAlphaVectors(capacity int) PerseusOption {
	return func(p *Perseus) {
		p.capacity = capacity
	}
}

// NewPerseus creates a Perseus engine over the given model.
func NewPerseus(m *model.POMDP, opts ...PerseusOption) *Perseus {
	p := &Perseus{
		model:    m,
		backend:  backend.NewSequential(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logging.GetLogger(),
		recorder: NoopRecorder{},
		capacity: m.NumBeliefs(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Initialize validates the model, stages its tables on the backend, seeds
// both alpha-vector slots with the initial value function, and fills BTilde
// with every stored belief index. The initial set seeds values only: the
// explored vector count starts at zero.
func (p *Perseus) Initialize(initial [][]float64) error {
	if err := p.model.Validate(); err != nil {
		return err
	}
	if p.capacity <= 0 {
		return errors.WithFields(
			errors.New(errors.InvalidData, "alpha-vector capacity must be positive"),
			errors.Fields{"capacity": p.capacity},
		)
	}
	if len(initial) == 0 || len(initial) > p.capacity {
		return errors.WithFields(
			errors.New(errors.InvalidData, "initial alpha-vector set must have between 1 and capacity rows"),
			errors.Fields{"rows": len(initial), "capacity": p.capacity},
		)
	}
	for i, row := range initial {
		if len(row) != p.model.States {
			return errors.WithFields(
				errors.New(errors.InvalidData, "initial alpha-vector has wrong length"),
				errors.Fields{"row": i, "length": len(row), "states": p.model.States},
			)
		}
	}
	if p.policyProduced {
		return errors.New(errors.InvalidData, "previous policy was not cleared before reinitializing")
	}

	tables, err := stagePOMDP(p.backend, p.model)
	if err != nil {
		return err
	}
	p.tables = tables

	p.slots = newAlphaSlots(p.capacity, p.model.States, initial)
	p.bTilde = p.fullBeliefIndexSet()
	p.horizonIndex = 0
	p.sweepUpdates = 0
	p.sweepStart = time.Now()
	p.initialized = true

	return nil
}

// Update performs one Perseus step: sample a belief from BTilde, back it up
// against the current horizon's set, accept or reject the candidate, and
// recompute BTilde. It returns StatusConverged when the sweep for the
// current horizon completes. After InvalidData or OutOfCapacity the solve
// must not be continued; only Uninitialize is safe.
func (p *Perseus) Update(ctx context.Context) (Status, error) {
	if !p.initialized {
		return StatusInProgress, errors.New(errors.InvalidData, "engine is not initialized")
	}

	// Sampling from BTilde rather than the full belief set is what keeps
	// the convergence check cheap.
	bIndex := p.bTilde[p.rng.Intn(len(p.bTilde))]

	cur := p.slots.current()
	next := p.slots.next()

	alpha, action, err := backup(ctx, p.backend, p.tables, bIndex, cur.view())
	if err != nil {
		return StatusInProgress, err
	}

	newValue := p.tables.beliefDot(bIndex, alpha)
	existing, bestIdx := p.bestAt(cur, bIndex)

	if next.count >= p.capacity {
		return StatusInProgress, errors.WithFields(
			errors.New(errors.OutOfCapacity, "accepted alpha-vector count would exceed capacity"),
			errors.Fields{"capacity": p.capacity, "horizon": p.horizonIndex},
		)
	}

	if newValue >= existing {
		next.add(alpha, action)
	} else if bestIdx >= 0 {
		// Perseus never discards belief-point coverage: rejecting novelty
		// still carries the best existing vector forward.
		next.add(cur.vectors[bestIdx], cur.actions[bestIdx])
	} else {
		// Empty explored set: fall back to the seeded initial vector.
		next.add(cur.vectors[0], cur.actions[0])
	}
	p.sweepUpdates++

	// Rebuild BTilde: a belief stays only while its value under the set
	// being constructed is still strictly below its value under the current
	// set. The sampled index is always removed, so the set strictly shrinks.
	newTilde := p.bTilde[:0]
	for i := 0; i < p.model.NumBeliefs(); i++ {
		vn, _ := p.bestAt(cur, i)
		vnp1, _ := p.bestAt(next, i)
		if vnp1 < vn {
			newTilde = append(newTilde, i)
		}
	}
	p.bTilde = newTilde

	if len(p.bTilde) > 0 {
		return StatusInProgress, nil
	}

	// Sweep complete. The outgoing set empties for reuse as the next
	// horizon's construction buffer, then the slots swap.
	p.horizonIndex++
	cur.count = 0
	p.bTilde = p.fullBeliefIndexSet()
	p.slots.advance()

	duration := time.Since(p.sweepStart)
	p.logger.Info(ctx, "horizon %d of %d converged after %d updates (%d vectors, %s)",
		p.horizonIndex, p.model.Horizon, p.sweepUpdates, next.count, duration)

	rec := SweepRecord{
		Horizon:  p.horizonIndex,
		Updates:  p.sweepUpdates,
		Vectors:  next.count,
		Duration: duration,
	}
	if id, ok := logging.GetSolveID(ctx); ok {
		rec.SolveID = string(id)
	}
	if err := p.recorder.RecordSweep(ctx, rec); err != nil {
		p.logger.Warn(ctx, "sweep record dropped: %v", err)
	}

	p.sweepUpdates = 0
	p.sweepStart = time.Now()

	return StatusConverged, nil
}

// Execute runs the full solve: initialization, one converged sweep per
// horizon step, policy extraction, and teardown.
func (p *Perseus) Execute(ctx context.Context, initial [][]float64) (*policy.AlphaVectors, error) {
	if _, ok := logging.GetSolveID(ctx); !ok {
		ctx = logging.WithSolveID(ctx)
	}

	if err := p.Initialize(initial); err != nil {
		return nil, err
	}

	for p.horizonIndex < p.model.Horizon {
		if err := errors.CheckContext(ctx, "perseus solve"); err != nil {
			return nil, err
		}
		for {
			status, err := p.Update(ctx)
			if err != nil {
				return nil, err
			}
			if status == StatusConverged {
				break
			}
		}
	}

	pol, err := p.GetPolicy()
	if err != nil {
		return nil, err
	}
	p.Uninitialize()

	return pol, nil
}

// Complete is the one-shot convenience entry point. The sequential and
// parallel backends stage and release their memory inside Initialize and
// Uninitialize, so Complete and Execute coincide.
func (p *Perseus) Complete(ctx context.Context, initial [][]float64) (*policy.AlphaVectors, error) {
	return p.Execute(ctx, initial)
}

// GetPolicy extracts the alpha-vector policy from the current slot. It
// fails if a policy was already produced and not cleared by Uninitialize.
func (p *Perseus) GetPolicy() (*policy.AlphaVectors, error) {
	if !p.initialized {
		return nil, errors.New(errors.InvalidData, "engine is not initialized")
	}
	if p.policyProduced {
		return nil, errors.New(errors.InvalidData, "policy already produced and not cleared")
	}

	cur := p.slots.current()

	pol := &policy.AlphaVectors{
		N:       p.model.States,
		M:       p.model.Actions,
		R:       cur.count,
		Vectors: make([][]float64, cur.count),
		Actions: make([]int, cur.count),
	}
	for i := 0; i < cur.count; i++ {
		pol.Vectors[i] = make([]float64, p.model.States)
		copy(pol.Vectors[i], cur.vectors[i])
		pol.Actions[i] = cur.actions[i]
	}

	p.policyProduced = true
	return pol, nil
}

// Uninitialize releases all solve-scoped buffers and staged device memory.
// It is safe to call after a failed Update.
func (p *Perseus) Uninitialize() {
	p.backend.Release()
	p.tables = nil
	p.slots = nil
	p.bTilde = nil
	p.horizonIndex = 0
	p.sweepUpdates = 0
	p.initialized = false
	p.policyProduced = false
}

// Horizon returns the index of the horizon currently being swept.
func (p *Perseus) Horizon() int {
	return p.horizonIndex
}

// ConvergenceSetSize returns the number of beliefs not yet proven improved
// in the current sweep.
func (p *Perseus) ConvergenceSetSize() int {
	return len(p.bTilde)
}

// bestAt returns the maximum value of the set's live vectors at stored
// belief i and the maximizing index, or (0, -1) for an empty set.
func (p *Perseus) bestAt(set *alphaSet, i int) (float64, int) {
	best := 0.0
	bestIdx := -1
	for j := 0; j < set.count; j++ {
		v := p.tables.beliefDot(i, set.vectors[j])
		if bestIdx < 0 || v > best {
			best = v
			bestIdx = j
		}
	}
	return best, bestIdx
}

func (p *Perseus) fullBeliefIndexSet() []int {
	all := make([]int, p.model.NumBeliefs())
	for i := range all {
		all[i] = i
	}
	return all
}
