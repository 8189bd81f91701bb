package backend

import (
	"context"

	"github.com/markovkit/markovkit/pkg/errors"
)

// Sequential executes kernels one work item at a time in-process. It is
// fully deterministic given deterministic kernel bodies.
type Sequential struct{}

// NewSequential returns the sequential backend.
func NewSequential() *Sequential {
	return &Sequential{}
}

func (s *Sequential) Name() string {
	return "sequential"
}

func (s *Sequential) Launch(ctx context.Context, count int, body func(i int)) error {
	if err := errors.CheckContext(ctx, "kernel launch"); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		body(i)
	}
	return nil
}

// Stage shares host memory directly; there is no device to transfer to.
func (s *Sequential) Stage(words []float64) ([]float64, error) {
	return words, nil
}

func (s *Sequential) StageIndex(idx []int32) ([]int32, error) {
	return idx, nil
}

func (s *Sequential) Release() {}
