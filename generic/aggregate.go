/*
aggregate.go - Replay/record engine shared by every aggregate

PURPOSE:
  An Aggregate is an in-memory projection of one stream. Its state is
  built by folding events through a routing table from event type to
  mutator, starting from the zero value.

HISTORY VS CHANGES:
  - Replay() folds events that are already in the log. They count toward
    Version() but are not buffered as changes.
  - Record() applies a new fact and buffers it until the unit of work
    appends it.

UNREGISTERED EVENT TYPES:
  An event type with no mutator is still counted (replay) or buffered
  (record) so positions stay correct, but it never mutates state. Streams
  may carry facts that belong to other readers, such as a business
  transaction's own lifecycle events on its posting stream.

EXAMPLE:
  type AccountingPeriod struct {
      generic.Aggregate
      state PeriodState
  }

  func NewAccountingPeriod() *AccountingPeriod {
      p := &AccountingPeriod{}
      generic.On(&p.Aggregate, func(e AccountingPeriodOpened) { p.state = PeriodOpen })
      return p
  }
*/
package generic

// Root is what a unit of work needs from an aggregate.
// Domain aggregates satisfy it by embedding Aggregate.
type Root interface {
	Replay(events []Event)
	Changes() []Event
	HasChanges() bool
	Version() int
}

// Aggregate is embedded by domain aggregates. Its zero value is ready to use.
type Aggregate struct {
	router  map[string]func(Event)
	changes []Event
	version int
}

// On registers the mutator for events of type E.
// Registering the same type twice replaces the earlier mutator.
func On[E Event](a *Aggregate, apply func(E)) {
	var zero E
	if a.router == nil {
		a.router = make(map[string]func(Event))
	}
	a.router[zero.EventType()] = func(e Event) {
		if typed, ok := e.(E); ok {
			apply(typed)
		}
	}
}

// Replay folds history into state and then clears the change buffer.
func (a *Aggregate) Replay(events []Event) {
	for _, e := range events {
		a.apply(e)
		a.version++
	}
	a.changes = nil
}

// Record applies a new fact and buffers it as an uncommitted change.
func (a *Aggregate) Record(e Event) {
	a.apply(e)
	a.changes = append(a.changes, e)
}

// Changes returns the uncommitted changes, oldest first.
func (a *Aggregate) Changes() []Event {
	out := make([]Event, len(a.changes))
	copy(out, a.changes)
	return out
}

// HasChanges reports whether anything was recorded since the last replay.
func (a *Aggregate) HasChanges() bool { return len(a.changes) > 0 }

// Version is the number of events replayed from the log.
func (a *Aggregate) Version() int { return a.version }

func (a *Aggregate) apply(e Event) {
	if handle, ok := a.router[e.EventType()]; ok {
		handle(e)
	}
}
