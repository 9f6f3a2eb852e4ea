/*
store.go - Event log interface

PURPOSE:
  Defines the interface between the engine and the append-only log.
  The log is an external collaborator: the engine only needs to read a
  whole stream and to append to a stream conditioned on its version.

APPEND-ONLY CONTRACT:
  - ReadStream(): every event of a stream, from position 0, in order
  - AppendToStream(): atomic, all-or-nothing, conditional on expected version
  - NO Update() or Delete() methods exist

OPTIMISTIC CONCURRENCY:
  A stream's version is the number of events it holds. AppendToStream
  succeeds only when the current version equals expectedVersion. Two
  writers that loaded the same version can never both succeed; the loser
  gets a *ConcurrencyConflictError and nothing it tried to write persists.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory log for tests and development
  - store/sqlite/sqlite.go: SQLite log

SEE ALSO:
  - unitofwork.go: The only caller that appends
*/
package generic

import "context"

// =============================================================================
// EVENT LOG - Interface for stream persistence (append-only)
// =============================================================================

// EventLog stores ordered, append-only streams of encoded events.
type EventLog interface {
	// ReadStream returns all events of stream from position 0.
	// A stream that was never written is empty, not an error.
	ReadStream(ctx context.Context, stream string) ([]RecordedEvent, error)

	// AppendToStream appends events atomically if the stream's current
	// version equals expectedVersion. It returns the new version.
	AppendToStream(ctx context.Context, stream string, expectedVersion int, events []EventData) (int, error)
}
