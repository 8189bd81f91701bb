package solver

// Status is the outcome of one engine update step. StatusConverged is a
// meaningful step in the per-horizon loop, not a failure: it marks the end
// of the current horizon's sweep.
type Status int

const (
	StatusInProgress Status = iota
	StatusConverged
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in-progress"
	case StatusConverged:
		return "converged"
	default:
		return "unknown"
	}
}
