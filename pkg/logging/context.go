package logging

import (
	"context"

	"github.com/google/uuid"
)

type solveIDKeyType struct{}

var solveIDKey = solveIDKeyType{}

// SolveID identifies one solve across its log entries and run-log rows.
type SolveID string

// WithSolveID attaches a fresh solve identifier to the context.
func WithSolveID(ctx context.Context) context.Context {
	return context.WithValue(ctx, solveIDKey, SolveID(uuid.New().String()))
}

// WithExistingSolveID attaches a caller-supplied solve identifier to the context.
func WithExistingSolveID(ctx context.Context, id SolveID) context.Context {
	return context.WithValue(ctx, solveIDKey, id)
}

// GetSolveID retrieves the solve identifier from the context.
func GetSolveID(ctx context.Context) (SolveID, bool) {
	id, ok := ctx.Value(solveIDKey).(SolveID)
	return id, ok
}
