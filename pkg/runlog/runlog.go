// Package runlog persists sweep telemetry to a SQLite database so solve
// behavior can be inspected after the fact.
package runlog

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/solver"
)

// Store implements solver.Recorder on SQLite. One row is written per
// converged horizon sweep.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run-log database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.InvalidData, "run log path must not be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open run log database"),
			errors.Fields{"path": path},
		)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// WAL keeps sweep writes from stalling concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.Unknown, "failed to set synchronous pragma")
	}

	return s, nil
}

func (s *Store) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS sweeps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		solve_id TEXT NOT NULL,
		horizon INTEGER NOT NULL,
		updates INTEGER NOT NULL,
		vectors INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sweeps_solve_id ON sweeps(solve_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to initialize run log schema")
	}
	return nil
}

// RecordSweep appends one sweep row.
func (s *Store) RecordSweep(ctx context.Context, rec solver.SweepRecord) error {
	query := `
	INSERT INTO sweeps (solve_id, horizon, updates, vectors, duration_ns, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.SolveID, rec.Horizon, rec.Updates, rec.Vectors,
		rec.Duration.Nanoseconds(), time.Now().UnixNano())
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to record sweep"),
			errors.Fields{"solve_id": rec.SolveID, "horizon": rec.Horizon},
		)
	}
	return nil
}

// Sweeps returns the recorded sweeps for one solve in horizon order.
func (s *Store) Sweeps(ctx context.Context, solveID string) ([]solver.SweepRecord, error) {
	query := `
	SELECT solve_id, horizon, updates, vectors, duration_ns
	FROM sweeps WHERE solve_id = ? ORDER BY horizon
	`

	rows, err := s.db.QueryContext(ctx, query, solveID)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to query sweeps")
	}
	defer rows.Close()

	var recs []solver.SweepRecord
	for rows.Next() {
		var rec solver.SweepRecord
		var durationNs int64
		if err := rows.Scan(&rec.SolveID, &rec.Horizon, &rec.Updates, &rec.Vectors, &durationNs); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan sweep row")
		}
		rec.Duration = time.Duration(durationNs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to iterate sweep rows")
	}
	return recs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
