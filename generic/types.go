/*
Package generic provides the domain-agnostic event-sourcing engine.

PURPOSE:
  This package contains the types and algorithms shared by every aggregate
  in the system. Whether the aggregate is a chart of accounts, an accounting
  period or a general ledger entry, the same engine folds its stream of
  events into state, buffers new facts and commits them against the log
  with optimistic concurrency.

KEY CONCEPTS IN THIS FILE (types.go):
  - Event: An immutable fact, identified only by (stream, position)
  - EventData: An encoded event ready to be appended
  - RecordedEvent: An encoded event read back from a stream
  - UnknownEvent: A stored event whose type this process does not know

DESIGN PRINCIPLES:
  1. Immutability: Events are never modified or deleted
  2. Determinism: Replaying the same events yields the same state
  3. Explicit wiring: Registries are built once and passed around, never global
  4. Optimistic concurrency: The log's conditional append is the only lock

USAGE:
  registry := generic.NewRegistry()
  generic.RegisterEvent[AccountDefined](registry)

  uow := generic.NewUnitOfWork(log, registry)
  chart := NewChartOfAccounts()
  if err := uow.Load(ctx, ChartOfAccountsStream, chart); err != nil {
      return err
  }
  chart.Define(1000, "Bank Checking Account")
  return uow.Commit(ctx)

SEE ALSO:
  - aggregate.go: Replay/record engine
  - registry.go: Event type registry and codec
  - store.go: Event log interface
  - unitofwork.go: Load → handle → append orchestration
  - pipeline.go: Per-command stage chains
*/
package generic

import (
	"encoding/json"
	"time"
)

// =============================================================================
// EVENT - Immutable fact
// =============================================================================

// Event is an immutable fact appended to a stream.
// EventType is the discriminator stored alongside the payload; it must be
// stable because it is how stored events are decoded on replay.
type Event interface {
	EventType() string
}

// NoStream is the expected version of a stream that has no events yet.
const NoStream = 0

// =============================================================================
// ENCODED EVENTS - What the log actually stores
// =============================================================================

// EventData is an encoded event, ready to be appended.
type EventData struct {
	Type string
	Data json.RawMessage
}

// RecordedEvent is an encoded event read back from a stream.
// Position is zero-based; the stream version is the number of events.
type RecordedEvent struct {
	Stream     string
	Position   int
	Type       string
	Data       json.RawMessage
	RecordedAt time.Time
}

// UnknownEvent is what the registry yields for a stored event type it was not
// told about. Aggregates never register a mutator for it, so it is counted
// toward the stream version and otherwise ignored.
type UnknownEvent struct {
	Type string
	Data json.RawMessage
}

func (e UnknownEvent) EventType() string { return e.Type }
