// Package catalog records conversion and remap runs in a SQLite database,
// giving the toolkit a queryable history of what was converted from where,
// how many rows were read, and how many were dropped.
package catalog

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/atfconv/atfconv/internal/errors"
)

// Run kinds.
const (
	KindConvert  = "convert"
	KindRemap    = "remap"
	KindGenerate = "generate"
)

// Run is one recorded toolkit invocation.
type Run struct {
	ID            string
	Kind          string
	Source        string
	Output        string
	Format        string
	RowsRead      int64
	EventsEmitted int64
	RowsSkipped   int64
	OriginResets  int64
	Duration      time.Duration
	CreatedAt     time.Time
}

// Catalog persists runs.
type Catalog interface {
	// RecordRun inserts a run. A blank run ID is assigned a fresh UUID.
	RecordRun(ctx context.Context, run *Run) error

	// GetRun retrieves a single run by ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Close closes the catalog database connection.
	Close() error
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	source         TEXT NOT NULL,
	output         TEXT NOT NULL,
	format         TEXT NOT NULL,
	rows_read      INTEGER NOT NULL,
	events_emitted INTEGER NOT NULL,
	rows_skipped   INTEGER NOT NULL,
	origin_resets  INTEGER NOT NULL,
	duration_ns    INTEGER NOT NULL,
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open creates or opens a run catalog at dbPath.
func Open(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeRecordFailed, "open catalog database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewCatalogError(errors.CodeRecordFailed, "initialize catalog schema", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

// RecordRun inserts a run record.
func (c *SQLiteCatalog) RecordRun(ctx context.Context, run *Run) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, kind, source, output, format,
			rows_read, events_emitted, rows_skipped, origin_resets,
			duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Source, run.Output, run.Format,
		run.RowsRead, run.EventsEmitted, run.RowsSkipped, run.OriginResets,
		run.Duration.Nanoseconds(), run.CreatedAt)
	if err != nil {
		return errors.NewCatalogError(errors.CodeRecordFailed, "insert run", err)
	}
	return nil
}

// GetRun retrieves a single run by ID.
func (c *SQLiteCatalog) GetRun(ctx context.Context, id string) (*Run, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT run_id, kind, source, output, format,
			rows_read, events_emitted, rows_skipped, origin_resets,
			duration_ns, created_at
		FROM runs WHERE run_id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCategoryCatalog, errors.CodeRunNotFound,
			"run "+id+" not found")
	}
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeRecordFailed, "query run", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *SQLiteCatalog) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, kind, source, output, format,
			rows_read, events_emitted, rows_skipped, origin_resets,
			duration_ns, created_at
		FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeRecordFailed, "list runs", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.NewCatalogError(errors.CodeRecordFailed, "scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogError(errors.CodeRecordFailed, "iterate runs", err)
	}
	return runs, nil
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (*Run, error) {
	var run Run
	var durationNs int64
	if err := s.Scan(&run.ID, &run.Kind, &run.Source, &run.Output, &run.Format,
		&run.RowsRead, &run.EventsEmitted, &run.RowsSkipped, &run.OriginResets,
		&durationNs, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationNs)
	return &run, nil
}
