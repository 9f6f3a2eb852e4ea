/*
errors.go - Centralized error types for the generic engine

PURPOSE:
  All error kinds a command can fail with, in one place. Domain packages
  return these (or wrap them with more context) so the transport layer can
  map them to responses with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Concurrency - The stream moved since it was loaded
  2. Rejections  - NotFound, Duplicate, InvalidArgument
  3. Invariants  - Programming-contract failures (e.g. unbalanced entry)
  4. Wiring      - Unknown command, stream tracked twice

IDEMPOTENT NO-OPS ARE NOT ERRORS:
  Closing an already closed period succeeds and records nothing.

SEE ALSO:
  - unitofwork.go: Produces ConcurrencyConflictError
  - ledger/errors.go: Domain specific errors
  - api/handlers.go: Maps error kinds to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConcurrencyConflict is returned when an append's expected version does
	// not match the stream's actual version. Nothing was persisted.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrNotFound is returned when a command requires an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a command would create an entity that already exists.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidArgument is returned for malformed command input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation marks a broken programming contract. It should be
	// unreachable with correct domain code and is never a user validation failure.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrUnknownCommand is returned by the dispatcher for unregistered command types.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrStreamAlreadyTracked is returned when a unit of work is asked to
	// track the same stream twice.
	ErrStreamAlreadyTracked = errors.New("stream already tracked")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConcurrencyConflictError provides details about a failed conditional append.
type ConcurrencyConflictError struct {
	Stream   string
	Expected int
	Actual   int
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict on stream %q: expected version %d, actual %d",
		e.Stream, e.Expected, e.Actual)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateError names the entity that already exists.
type DuplicateError struct {
	Kind string
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// InvariantViolationError describes which invariant broke.
type InvariantViolationError struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s: %s", e.Invariant, e.Detail)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the command might succeed when re-issued by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsClientError returns true if the error is a rejection of the command input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Outcome classifies an error into a short label for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant"
	default:
		return "error"
	}
}
