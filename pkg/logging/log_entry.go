package logging

// LogEntry represents a structured log record with fields relevant to solver runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Solver-specific fields
	SolveID string // Identifier of the solve this entry belongs to
	Horizon int    // Horizon index at the time of logging, -1 when unknown

	// General structured data
	Fields map[string]interface{}
}
