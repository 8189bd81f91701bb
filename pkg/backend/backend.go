// Package backend provides the two execution strategies for solver kernels:
// a sequential in-process backend and a data-parallel backend that partitions
// work across uniformly sized work groups. Both expose identical observable
// semantics; a solve picks one backend and never mixes them mid-solve.
package backend

import (
	"context"
)

// Backend executes solver kernels.
//
// Launch runs body(i) for every index i in [0, count). It returns only after
// the entire grid has completed, giving kernel-launch barrier semantics:
// outputs of a launch may be read freely once Launch returns. Kernel bodies
// must write disjoint output slots and share no mutable state.
//
// Stage and StageIndex copy read-only model tables into backend-owned memory
// once per solve, returning the view kernels should read. The sequential
// backend shares host memory; the parallel backend transfers into its device
// arena. Release frees all staged memory at the end of a solve.
type Backend interface {
	Name() string
	Launch(ctx context.Context, count int, body func(i int)) error
	Stage(words []float64) ([]float64, error)
	StageIndex(idx []int32) ([]int32, error)
	Release()
}
