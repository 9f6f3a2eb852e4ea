package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/generic"
)

// Queries read aggregates straight from the log. They never commit.
type Queries struct {
	Log      generic.EventLog
	Registry *generic.Registry
}

// ChartOfAccounts replays the chart of accounts.
func (q Queries) ChartOfAccounts(ctx context.Context) (*ChartOfAccounts, error) {
	return loadChart(ctx, generic.NewUnitOfWork(q.Log, q.Registry))
}

// AccountingPeriod replays one period. An unopened period is not an error.
func (q Queries) AccountingPeriod(ctx context.Context, period PeriodIdentifier) (*AccountingPeriod, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	uow := generic.NewUnitOfWork(q.Log, q.Registry)
	return generic.NewRepository(uow, NewAccountingPeriod).Load(ctx, period.String())
}

// GeneralLedgerEntry replays one entry, failing with NotFoundError if its
// stream is empty.
func (q Queries) GeneralLedgerEntry(ctx context.Context, id uuid.UUID) (*GeneralLedgerEntry, error) {
	uow := generic.NewUnitOfWork(q.Log, q.Registry)
	entry, err := generic.NewRepository(uow, NewGeneralLedgerEntry).Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if entry.Version() == generic.NoStream {
		return nil, &generic.NotFoundError{Kind: "general ledger entry", ID: id.String()}
	}
	return entry, nil
}
