package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations[i] upgrades a run log from user_version i to i+1.
var migrations = []func(ctx context.Context, tx *sql.Tx) error{
	addScenarioIndex,
}

// currentSchemaVersion is the user_version of a fully migrated run log.
var currentSchemaVersion = len(migrations)

// runLogPragmas are applied to every connection before use.
var runLogPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store is a run log: the scenario runs recorded by "unitconv test --db"
// and read back by "unitconv replay".
type Store struct {
	db *sql.DB
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger    *slog.Logger
	mustExist bool
}

// WithLogger makes Open log the run log it opened and any migrations at
// debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// MustExist makes Open fail instead of creating a new run log. The error
// wraps fs.ErrNotExist.
func MustExist() Option {
	return func(o *openOptions) {
		o.mustExist = true
	}
}

// Open opens the run log at path, creating it unless MustExist is given,
// and migrates it to the current schema. path may be ":memory:".
//
// A run log written by a newer version (higher user_version) is rejected.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := openOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	if o.mustExist && path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open run log: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	// One connection: SQLite has a single writer, and an in-memory run log
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open run log: %w", err)
	}

	for _, pragma := range runLogPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("open run log: %q: %w", pragma, err)
		}
	}

	from, err := migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	o.logger.Debug("run log opened",
		"path", path,
		"schema_version", currentSchemaVersion,
		"migrated_from", from)

	return &Store{db: db}, nil
}

// Close closes the run log. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate creates missing tables and applies every pending migration, each
// in its own transaction together with its user_version bump. It returns
// the version the run log had before.
func migrate(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("migrate run log: read version: %w", err)
	}
	if version > currentSchemaVersion {
		return version, fmt.Errorf("migrate run log: schema version %d is newer than supported version %d",
			version, currentSchemaVersion)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return version, fmt.Errorf("migrate run log: create tables: %w", err)
	}

	for v := version; v < currentSchemaVersion; v++ {
		if err := applyMigration(ctx, db, v); err != nil {
			return version, fmt.Errorf("migrate run log: to version %d: %w", v+1, err)
		}
	}
	return version, nil
}

func applyMigration(ctx context.Context, db *sql.DB, from int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := migrations[from](ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", from+1)); err != nil {
		return err
	}
	return tx.Commit()
}

// addScenarioIndex indexes runs by scenario for ListRuns filters.
func addScenarioIndex(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_runs_scenario
		ON runs(scenario, seq)
	`)
	return err
}
