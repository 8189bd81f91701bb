// Package markovkit solves Markov decision processes (MDPs) and partially
// observable Markov decision processes (POMDPs) with value iteration and
// the randomized point-based Perseus algorithm.
//
// MarkovKit focuses on making it easy to:
//   - Describe sparse MDP and POMDP models and validate their shape
//   - Expand a belief set with random trajectory simulation
//   - Solve models on a sequential or data-parallel backend
//   - Extract value-function and alpha-vector policies
//   - Record per-sweep telemetry for later inspection
//
// Key Components:
//
//   - model: MDP and POMDP definitions with sparse transition rows and
//     dense observation and reward tables.
//
//   - belief: Bayesian belief updates, observation probabilities, and
//     alpha-vector evaluation at belief points.
//
//   - expand: Random-trajectory belief expansion for seeding the Perseus
//     solver with a representative belief set.
//
//   - solver: The value-iteration and Perseus engines. Both follow the
//     same three-phase surface: Initialize stages the model tables,
//     repeated Update steps run one kernel sweep or backup, and GetPolicy
//     plus Uninitialize extract the result and release solve memory.
//
//   - backend: Pluggable execution backends. Sequential runs kernels
//     in-place; Parallel partitions launches into warp-aligned work groups
//     over a bounded goroutine pool and stages tables in a device arena.
//
//   - policy: Extracted policies. AlphaVectors answers value and action
//     queries at any belief; ValueFunction does the same per state.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/markovkit/markovkit/pkg/model"
//	    "github.com/markovkit/markovkit/pkg/solver"
//	)
//
//	func main() {
//	    m := &model.POMDP{ /* states, actions, observations, tables */ }
//	    m.SetBeliefs([][]float64{{0.5, 0.5}})
//
//	    p := solver.NewPerseus(m)
//	    pol, err := p.Complete(context.Background(), [][]float64{make([]float64, m.States)})
//	    if err != nil {
//	        log.Fatalf("solve failed: %v", err)
//	    }
//
//	    value, action := pol.ValueAndAction([]float64{0.5, 0.5})
//	    fmt.Printf("value %.3f, action %d\n", value, action)
//	}
//
// Advanced Features:
//
//   - Structured Logging: Solve-scoped identifiers and per-sweep progress
//     entries with configurable severity and outputs.
//
//   - Error Handling: Coded errors distinguish model problems from
//     capacity exhaustion, degenerate beliefs, and backend failures.
//
//   - Run Logs: SQLite-backed sweep records via the runlog package.
//
//   - Configuration: YAML run configuration with validation, covering
//     backend selection and tuning, logging, and telemetry.
//
// For more examples and detailed documentation, visit:
// https://github.com/markovkit/markovkit
package markovkit
