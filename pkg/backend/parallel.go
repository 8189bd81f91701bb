package backend

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/markovkit/markovkit/pkg/errors"
)

// WarpSize is the hardware scheduling granularity the parallel backend
// models. Work-group sizes must be a multiple of it.
const WarpSize = 32

// ParallelConfig contains configuration options for the parallel backend.
type ParallelConfig struct {
	// WorkGroupSize is the number of work items per group. Must be a
	// positive multiple of WarpSize. Default: 256.
	WorkGroupSize int `json:"work_group_size"`

	// MaxGoroutines bounds the number of work groups in flight. Default: 10.
	MaxGoroutines int `json:"max_goroutines"`

	// DeviceWords and DeviceIndexes size the modeled accelerator memory, in
	// float64 and int32 entries respectively. Defaults: 1 << 24 each.
	DeviceWords   int `json:"device_words"`
	DeviceIndexes int `json:"device_indexes"`
}

// Parallel partitions kernel launches across a grid of uniformly sized work
// groups and stages read-only tables into a device arena once per solve.
type Parallel struct {
	config ParallelConfig
	arena  *deviceArena
}

// ParallelOption defines functional options for the parallel backend.
type ParallelOption func(*Parallel)

// WithWorkGroupSize sets the work-group size.
func WithWorkGroupSize(size int) ParallelOption {
	return func(p *Parallel) {
		p.config.WorkGroupSize = size
	}
}

// WithMaxGoroutines bounds concurrent work groups.
func WithMaxGoroutines(n int) ParallelOption {
	return func(p *Parallel) {
		p.config.MaxGoroutines = n
	}
}

// WithDeviceCapacity sizes the modeled device memory.
func WithDeviceCapacity(words, indexes int) ParallelOption {
	return func(p *Parallel) {
		p.config.DeviceWords = words
		p.config.DeviceIndexes = indexes
	}
}

// NewParallel creates a parallel backend. A work-group size that is not a
// positive multiple of WarpSize is a configuration error, reported as
// InvalidLaunchConfig rather than silently corrected.
func NewParallel(opts ...ParallelOption) (*Parallel, error) {
	p := &Parallel{
		config: ParallelConfig{
			WorkGroupSize: 256,
			MaxGoroutines: 10,
			DeviceWords:   1 << 24,
			DeviceIndexes: 1 << 24,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.config.WorkGroupSize <= 0 || p.config.WorkGroupSize%WarpSize != 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidLaunchConfig, "work-group size must be a positive multiple of the warp size"),
			errors.Fields{"work_group_size": p.config.WorkGroupSize, "warp_size": WarpSize},
		)
	}
	if p.config.MaxGoroutines <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidLaunchConfig, "max goroutines must be positive"),
			errors.Fields{"max_goroutines": p.config.MaxGoroutines},
		)
	}

	return p, nil
}

func (p *Parallel) Name() string {
	return "parallel"
}

// Launch partitions [0, count) into work groups and runs them on a bounded
// goroutine pool. Each group executes its work items in index order; the
// call returns after every group has completed.
func (p *Parallel) Launch(ctx context.Context, count int, body func(i int)) error {
	if err := errors.CheckContext(ctx, "kernel launch"); err != nil {
		return err
	}
	if count <= 0 {
		return nil
	}

	grid := pool.New().WithMaxGoroutines(p.config.MaxGoroutines)

	for start := 0; start < count; start += p.config.WorkGroupSize {
		start := start
		end := start + p.config.WorkGroupSize
		if end > count {
			end = count
		}
		grid.Go(func() {
			for i := start; i < end; i++ {
				body(i)
			}
		})
	}

	grid.Wait()
	return nil
}

// Stage transfers a host table into device memory.
func (p *Parallel) Stage(words []float64) ([]float64, error) {
	if err := p.ensureArena(); err != nil {
		return nil, err
	}
	region, err := p.arena.allocWords(len(words))
	if err != nil {
		return nil, err
	}
	if err := upload(region, words); err != nil {
		return nil, err
	}
	return region, nil
}

func (p *Parallel) StageIndex(idx []int32) ([]int32, error) {
	if err := p.ensureArena(); err != nil {
		return nil, err
	}
	region, err := p.arena.allocIndexes(len(idx))
	if err != nil {
		return nil, err
	}
	if err := upload(region, idx); err != nil {
		return nil, err
	}
	return region, nil
}

// Release reclaims all staged device memory.
func (p *Parallel) Release() {
	if p.arena != nil {
		p.arena.reset()
	}
}

func (p *Parallel) ensureArena() error {
	if p.arena != nil {
		return nil
	}
	arena, err := newDeviceArena(p.config.DeviceWords, p.config.DeviceIndexes)
	if err != nil {
		return err
	}
	p.arena = arena
	return nil
}
