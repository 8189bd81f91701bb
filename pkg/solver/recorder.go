package solver

import (
	"context"
	"time"
)

// SweepRecord captures one completed horizon sweep of the Perseus engine.
type SweepRecord struct {
	SolveID  string
	Horizon  int
	Updates  int
	Vectors  int
	Duration time.Duration
}

// Recorder receives per-sweep telemetry. Recorder failures are logged and
// never fail the solve.
type Recorder interface {
	RecordSweep(ctx context.Context, rec SweepRecord) error
}

// NoopRecorder discards all records.
type NoopRecorder struct{}

func (NoopRecorder) RecordSweep(ctx context.Context, rec SweepRecord) error {
	return nil
}
