/*
unitofwork.go - Load → handle → append orchestration for one command

PURPOSE:
  A UnitOfWork lives for exactly one command. It reads the streams the
  command addresses, replays them into freshly constructed aggregates,
  remembers the version it observed, and after the handler ran appends
  whatever the aggregates recorded, conditioned on those versions.

FLOW:
  1. Load(): read stream from position 0, decode, replay, track version
  2. Handler records new facts on the aggregates
  3. Commit(): collect Changes() of every tracked aggregate
     - nothing changed → no append at all
     - otherwise append per stream with the observed version

NO RETRIES:
  A version mismatch surfaces as *ConcurrencyConflictError. Re-issuing the
  command is the caller's decision.

NO CROSS-STREAM ATOMICITY:
  Each stream append is atomic on its own. Commands in this system touch
  one writable stream each; the others they load are read-only and commit
  nothing.
*/
package generic

import (
	"context"
	"fmt"
)

type tracked struct {
	stream   string
	root     Root
	expected int
}

// UnitOfWork tracks the aggregates touched by one command.
// It is not safe for concurrent use; one command, one goroutine.
type UnitOfWork struct {
	log      EventLog
	registry *Registry
	tracked  []*tracked
	index    map[string]*tracked

	// OnAppend, when set, is called after each successful stream append.
	OnAppend func(stream string, events int)
}

func NewUnitOfWork(log EventLog, registry *Registry) *UnitOfWork {
	return &UnitOfWork{
		log:      log,
		registry: registry,
		index:    make(map[string]*tracked),
	}
}

// Load replays stream into root and tracks it at the version read.
// On error root is left untracked and must not be used to record events.
func (u *UnitOfWork) Load(ctx context.Context, stream string, root Root) error {
	if _, ok := u.index[stream]; ok {
		return fmt.Errorf("load %s: %w", stream, ErrStreamAlreadyTracked)
	}

	recorded, err := u.log.ReadStream(ctx, stream)
	if err != nil {
		return fmt.Errorf("read stream %s: %w", stream, err)
	}

	events := make([]Event, 0, len(recorded))
	for _, rec := range recorded {
		e, err := u.registry.Decode(rec)
		if err != nil {
			return err
		}
		events = append(events, e)
	}

	root.Replay(events)
	return u.Track(stream, root, len(recorded))
}

// Track registers an aggregate that was built in memory rather than loaded.
// expectedVersion is the version the stream must still have at commit;
// NoStream for a brand new aggregate.
func (u *UnitOfWork) Track(stream string, root Root, expectedVersion int) error {
	if _, ok := u.index[stream]; ok {
		return fmt.Errorf("track %s: %w", stream, ErrStreamAlreadyTracked)
	}
	t := &tracked{stream: stream, root: root, expected: expectedVersion}
	u.tracked = append(u.tracked, t)
	u.index[stream] = t
	return nil
}

// HasChanges reports whether any tracked aggregate recorded something.
func (u *UnitOfWork) HasChanges() bool {
	for _, t := range u.tracked {
		if t.root.HasChanges() {
			return true
		}
	}
	return false
}

// Commit appends the changes of every tracked aggregate, in tracking order.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	for _, t := range u.tracked {
		if !t.root.HasChanges() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		changes := t.root.Changes()
		data := make([]EventData, 0, len(changes))
		for _, e := range changes {
			d, err := u.registry.Encode(e)
			if err != nil {
				return err
			}
			data = append(data, d)
		}

		if _, err := u.log.AppendToStream(ctx, t.stream, t.expected, data); err != nil {
			return fmt.Errorf("append to %s: %w", t.stream, err)
		}
		if u.OnAppend != nil {
			u.OnAppend(t.stream, len(data))
		}
	}
	return nil
}
