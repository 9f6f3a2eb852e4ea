package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/generic/store"
	"github.com/warp/bookkeeping-engine/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fixture struct {
	log      *store.Memory
	registry *generic.Registry
	d        *generic.Dispatcher
	queries  ledger.Queries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		log:      store.NewMemory(),
		registry: generic.NewRegistry(),
		d:        generic.NewDispatcher(),
	}
	ledger.RegisterEvents(f.registry)
	generic.RegisterEvent[testTransaction](f.registry)
	ledger.RegisterModule(f.d, ledger.Module{Log: f.log, Registry: f.registry})
	f.queries = ledger.Queries{Log: f.log, Registry: f.registry}
	return f
}

// given appends history directly to the log.
func (f *fixture) given(t *testing.T, stream string, events ...generic.Event) {
	t.Helper()
	data := make([]generic.EventData, 0, len(events))
	for _, e := range events {
		d, err := f.registry.Encode(e)
		require.NoError(t, err)
		data = append(data, d)
	}
	_, err := f.log.AppendToStream(context.Background(), stream, f.version(t, stream), data)
	require.NoError(t, err)
}

// stream decodes every event stored under stream.
func (f *fixture) stream(t *testing.T, stream string) []generic.Event {
	t.Helper()
	recorded, err := f.log.ReadStream(context.Background(), stream)
	require.NoError(t, err)
	out := make([]generic.Event, 0, len(recorded))
	for _, rec := range recorded {
		e, err := f.registry.Decode(rec)
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

// version is the number of events stored under stream.
func (f *fixture) version(t *testing.T, stream string) int {
	t.Helper()
	recorded, err := f.log.ReadStream(context.Background(), stream)
	require.NoError(t, err)
	return len(recorded)
}

func (f *fixture) dispatch(cmd any) error {
	return f.d.Dispatch(context.Background(), cmd)
}

func march2025() ledger.PeriodIdentifier {
	return ledger.PeriodIdentifier{Month: 3, Year: 2025}
}

func money(s string) ledger.Money { return ledger.MustParseMoney(s) }

// testTransaction posts whatever lines it is given.
type testTransaction struct {
	ID      uuid.UUID       `json:"id"`
	Debits  []ledger.Debit  `json:"debits"`
	Credits []ledger.Credit `json:"credits"`
	Version *int            `json:"version,omitempty"`
}

func (testTransaction) EventType() string       { return "TestTransaction" }
func (testTransaction) TransactionType() string { return "TestTransaction" }

func (tx testTransaction) TransactionID() string { return tx.ID.String() }
func (tx testTransaction) ExpectedVersion() *int { return tx.Version }

func (tx testTransaction) PostTo(period ledger.PeriodIdentifier, createdOn time.Time) (*ledger.GeneralLedgerEntry, []generic.Event) {
	entry := ledger.CreateGeneralLedgerEntry(tx.ID, fmt.Sprintf("test-%s", tx.ID), period, createdOn)
	for _, c := range tx.Credits {
		entry.ApplyCredit(c)
	}
	for _, d := range tx.Debits {
		entry.ApplyDebit(d)
	}
	entry.ApplyTransaction(tx)
	return entry, []generic.Event{tx}
}

func balancedTransaction(amount string) testTransaction {
	return testTransaction{
		ID:      uuid.New(),
		Credits: []ledger.Credit{ledger.NewCredit(2150).Add(money(amount))},
		Debits:  []ledger.Debit{ledger.NewDebit(1400).Add(money(amount))},
	}
}
