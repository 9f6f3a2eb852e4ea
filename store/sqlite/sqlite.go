/*
Package sqlite provides a SQLite-backed implementation of generic.EventLog.

PURPOSE:
  Persists streams of encoded events in a single append-only table. The
  engine treats the log as an opaque collaborator; this package is the
  adapter the server wires in.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the events table
  - No DELETE statements on the events table
  - (stream, position) is the primary key

OPTIMISTIC CONCURRENCY:
  AppendToStream runs in one transaction: read the stream's current
  version, compare it with the expected version, insert every event at
  consecutive positions, commit. Two writers racing on the same version
  cannot both commit: the loser either sees the new version or trips the
  primary key, and both surface as *generic.ConcurrencyConflictError.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and a busy timeout.
  The pool holds a single connection, so appends are serialized in
  process and ":memory:" databases are not split across connections.

USAGE:
  log, err := sqlite.New("./data/bookkeeping.db")
  if err != nil {
      return err
  }
  defer log.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/bookkeeping-engine/generic"
)

// Store implements generic.EventLog using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite event log with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps ":memory:" to a single database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Events (append-only log)
	CREATE TABLE IF NOT EXISTS events (
		stream TEXT NOT NULL,
		position INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		data TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (stream, position)
	);

	CREATE INDEX IF NOT EXISTS idx_events_type
		ON events(event_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT LOG (generic.EventLog interface)
// =============================================================================

// ReadStream returns every event of stream ordered by position.
func (s *Store) ReadStream(ctx context.Context, stream string) ([]generic.RecordedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream, position, event_type, data, recorded_at
		FROM events
		WHERE stream = ?
		ORDER BY position ASC
	`, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to query stream: %w", err)
	}
	defer rows.Close()

	events := []generic.RecordedEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// AppendToStream appends events atomically if stream is at expectedVersion.
func (s *Store) AppendToStream(ctx context.Context, stream string, expectedVersion int, events []generic.EventData) (int, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var current int
	if err := sqlTx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE stream = ?", stream,
	).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to read stream version: %w", err)
	}

	if current != expectedVersion {
		return current, &generic.ConcurrencyConflictError{
			Stream:   stream,
			Expected: expectedVersion,
			Actual:   current,
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, e := range events {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO events (stream, position, event_type, data, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, stream, current+i, e.Type, string(e.Data), now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return 0, &generic.ConcurrencyConflictError{
					Stream:   stream,
					Expected: expectedVersion,
					Actual:   current + i + 1,
				}
			}
			return 0, fmt.Errorf("failed to append event: %w", err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit append: %w", err)
	}
	return current + len(events), nil
}

// version returns the number of events stored under stream.
func (s *Store) version(ctx context.Context, stream string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE stream = ?", stream).Scan(&n)
	return n, err
}

func scanEvent(rows *sql.Rows) (generic.RecordedEvent, error) {
	var (
		e          generic.RecordedEvent
		data       string
		recordedAt string
	)

	if err := rows.Scan(&e.Stream, &e.Position, &e.Type, &data, &recordedAt); err != nil {
		return e, fmt.Errorf("failed to scan event: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return e, fmt.Errorf("failed to parse recorded_at of %s/%d: %w", e.Stream, e.Position, err)
	}
	e.Data = []byte(data)
	e.RecordedAt = at
	return e, nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
