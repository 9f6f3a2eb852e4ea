// Package store provides EventLog implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// MEMORY LOG - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an in-memory event log. The mutex is the log's own
// compare-and-append primitive; callers never lock around it.
type Memory struct {
	mu      sync.RWMutex
	streams map[string][]generic.RecordedEvent
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		streams: make(map[string][]generic.RecordedEvent),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ReadStream returns a copy of the stream's events.
func (m *Memory) ReadStream(ctx context.Context, stream string) ([]generic.RecordedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.streams[stream]
	result := make([]generic.RecordedEvent, len(events))
	copy(result, events)
	return result, nil
}

// AppendToStream appends all events or none.
func (m *Memory) AppendToStream(ctx context.Context, stream string, expectedVersion int, events []generic.EventData) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Checked under the lock so a cancelled append never half-applies.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	current := m.streams[stream]
	if len(current) != expectedVersion {
		return len(current), &generic.ConcurrencyConflictError{
			Stream:   stream,
			Expected: expectedVersion,
			Actual:   len(current),
		}
	}

	at := m.now()
	for _, e := range events {
		current = append(current, generic.RecordedEvent{
			Stream:     stream,
			Position:   len(current),
			Type:       e.Type,
			Data:       append([]byte(nil), e.Data...),
			RecordedAt: at,
		})
	}
	m.streams[stream] = current
	return len(current), nil
}

// version returns the number of events in stream.
func (m *Memory) version(stream string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.streams[stream])
}
