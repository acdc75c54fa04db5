package store

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Run is one recorded scenario execution.
type Run struct {
	ID           string
	Scenario     string
	ScenarioPath string
	Expression   string
	Pass         bool
	Seq          int64
}

// Sample is one exact scalar conversion of a run.
type Sample struct {
	Index  int
	Input  float64
	Output float64
}

// NewRunID generates a new run ID using UUIDv7.
// UUIDv7 embeds a timestamp, so IDs sort roughly by creation time.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WriteRun records a run and its samples in one transaction and returns the
// stored run. An empty run.ID is replaced with NewRunID. Seq is always
// assigned by the store as one past the highest recorded seq.
func (s *Store) WriteRun(ctx context.Context, run Run, samples []Sample) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM runs",
	).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, scenario_path, expression, pass, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Scenario,
		run.ScenarioPath,
		run.Expression,
		run.Pass,
		run.Seq,
	); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, idx, input, output)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: prepare samples: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			sample.Index,
			toBits(sample.Input),
			toBits(sample.Output),
		); err != nil {
			return Run{}, fmt.Errorf("write run: sample %d: %w", sample.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// toBits maps a float64 to the signed integer SQLite stores.
func toBits(v float64) int64 {
	return int64(math.Float64bits(v))
}

func fromBits(b int64) float64 {
	return math.Float64frombits(uint64(b))
}
