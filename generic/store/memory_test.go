package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping-engine/generic"
)

func events(types ...string) []generic.EventData {
	out := make([]generic.EventData, len(types))
	for i, t := range types {
		out[i] = generic.EventData{Type: t, Data: json.RawMessage(`{}`)}
	}
	return out
}

func TestMemory_AppendAndRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	v, err := m.AppendToStream(ctx, "s", generic.NoStream, events("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = m.AppendToStream(ctx, "s", 2, events("C"))
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	got, err := m.ReadStream(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, got[i].Type)
		assert.Equal(t, i, got[i].Position)
		assert.Equal(t, "s", got[i].Stream)
	}
}

func TestMemory_ReadMissingStream(t *testing.T) {
	got, err := NewMemory().ReadStream(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_VersionMismatchPersistsNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.AppendToStream(ctx, "s", generic.NoStream, events("A"))
	require.NoError(t, err)

	_, err = m.AppendToStream(ctx, "s", generic.NoStream, events("B", "C"))

	var conflict *generic.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, conflict.Expected)
	assert.Equal(t, 1, conflict.Actual)
	assert.Equal(t, 1, m.version("s"))
}

func TestMemory_CancelledAppend(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.AppendToStream(ctx, "s", generic.NoStream, events("A"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.version("s"))
}

func TestMemory_ConcurrentAppendsAtSameVersion(t *testing.T) {
	// GIVEN: Many writers that all observed an empty stream
	m := NewMemory()
	const writers = 32

	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AppendToStream(context.Background(), "s", generic.NoStream, events("A", "B"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// THEN: Exactly one wins, whole
	succeeded, conflicted := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if assert.ErrorIs(t, err, generic.ErrConcurrencyConflict) {
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicted)
	assert.Equal(t, 2, m.version("s"))
}

func TestMemory_ReadReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.AppendToStream(ctx, "s", generic.NoStream, events("A"))
	require.NoError(t, err)

	got, err := m.ReadStream(ctx, "s")
	require.NoError(t, err)
	got[0].Type = "mutated"

	again, err := m.ReadStream(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Type)
}
