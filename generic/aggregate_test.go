package generic_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// TEST AGGREGATE
// =============================================================================

type tallyStarted struct {
	Name string `json:"name"`
}

type tallyIncremented struct {
	By int `json:"by"`
}

// tallyAudited has no mutator on tally.
type tallyAudited struct {
	Auditor string `json:"auditor"`
}

func (tallyStarted) EventType() string     { return "TallyStarted" }
func (tallyIncremented) EventType() string { return "TallyIncremented" }
func (tallyAudited) EventType() string     { return "TallyAudited" }

type tally struct {
	generic.Aggregate

	name  string
	count int
}

func newTally() *tally {
	t := &tally{}
	generic.On(&t.Aggregate, func(e tallyStarted) { t.name = e.Name })
	generic.On(&t.Aggregate, func(e tallyIncremented) { t.count += e.By })
	return t
}

func (t *tally) Increment(by int) { t.Record(tallyIncremented{By: by}) }

func testRegistry() *generic.Registry {
	r := generic.NewRegistry()
	generic.RegisterEvent[tallyStarted](r)
	generic.RegisterEvent[tallyIncremented](r)
	return r
}

// =============================================================================
// REPLAY
// =============================================================================

func TestReplay_IsDeterministic(t *testing.T) {
	history := []generic.Event{
		tallyStarted{Name: "widgets"},
		tallyIncremented{By: 2},
		tallyIncremented{By: 5},
	}

	a, b := newTally(), newTally()
	a.Replay(history)
	b.Replay(history)

	assert.Equal(t, a.name, b.name)
	assert.Equal(t, a.count, b.count)
	assert.Equal(t, 7, a.count)
	assert.Equal(t, 3, a.Version())
	assert.False(t, a.HasChanges(), "replayed history is not a change")
	assert.Empty(t, a.Changes())
}

func TestReplay_UnregisteredTypeCountsButDoesNotMutate(t *testing.T) {
	agg := newTally()
	agg.Replay([]generic.Event{
		tallyIncremented{By: 1},
		tallyAudited{Auditor: "kim"},
		generic.UnknownEvent{Type: "SomethingElse", Data: json.RawMessage(`{}`)},
		tallyIncremented{By: 1},
	})

	assert.Equal(t, 2, agg.count)
	assert.Equal(t, 4, agg.Version(), "every replayed event advances the version")
}

func TestReplay_ClearsChanges(t *testing.T) {
	agg := newTally()
	agg.Increment(3)
	require.True(t, agg.HasChanges())

	agg.Replay([]generic.Event{tallyIncremented{By: 1}})

	assert.False(t, agg.HasChanges())
	assert.Equal(t, 4, agg.count)
}

// =============================================================================
// RECORD
// =============================================================================

func TestRecord_AppliesAndBuffers(t *testing.T) {
	agg := newTally()
	agg.Replay([]generic.Event{tallyStarted{Name: "widgets"}})

	agg.Increment(2)
	agg.Record(tallyAudited{Auditor: "kim"})

	assert.Equal(t, 2, agg.count)
	assert.Equal(t, 1, agg.Version(), "recording does not advance the replayed version")
	assert.Equal(t, []generic.Event{tallyIncremented{By: 2}, tallyAudited{Auditor: "kim"}}, agg.Changes())
}

func TestChanges_ReturnsCopy(t *testing.T) {
	agg := newTally()
	agg.Increment(1)

	changes := agg.Changes()
	changes[0] = tallyIncremented{By: 100}

	assert.Equal(t, []generic.Event{tallyIncremented{By: 1}}, agg.Changes())
}

func TestOn_LaterRegistrationReplaces(t *testing.T) {
	agg := newTally()
	generic.On(&agg.Aggregate, func(e tallyIncremented) { agg.count += 10 * e.By })

	agg.Increment(1)

	assert.Equal(t, 10, agg.count)
}
