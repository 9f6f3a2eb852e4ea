/*
handlers.go - Command handlers and module registration

PURPOSE:
  Each handler runs inside a unit of work: it loads the aggregate the
  command addresses, calls one domain method, and returns. Committing
  (or not, when nothing was recorded) is the pipeline's job.

REGISTRATION:
  RegisterModule wires every ledger command into a dispatcher with the
  standard stage chain: Log → Measure → UnitOfWork → Handle.

SEE ALSO:
  - generic/pipeline.go: Stage builder
  - api/handlers.go: HTTP layer that dispatches these commands
*/
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/generic"
	"go.uber.org/zap"
)

// Module carries the collaborators every ledger command chain needs.
type Module struct {
	Log      generic.EventLog
	Registry *generic.Registry
	Logger   *zap.Logger
	Metrics  *generic.Metrics
}

// RegisterModule registers every ledger command with d.
func RegisterModule(d *generic.Dispatcher, m Module) {
	generic.Build[OpenAccountingPeriod](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleOpenAccountingPeriod)

	generic.Build[CloseAccountingPeriod](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleCloseAccountingPeriod)

	generic.Build[DefineAccount](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleDefineAccount)

	generic.Build[RenameAccount](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleRenameAccount)

	generic.Build[DeactivateAccount](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleDeactivateAccount)

	generic.Build[ReactivateAccount](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandleReactivateAccount)

	generic.Build[PostGeneralLedgerEntry](d).
		Log(m.Logger).Measure(m.Metrics).
		UnitOfWork(m.Log, m.Registry).
		Handle(HandlePostGeneralLedgerEntry)
}

// =============================================================================
// ACCOUNTING PERIODS
// =============================================================================

func HandleOpenAccountingPeriod(ctx context.Context, uow *generic.UnitOfWork, cmd OpenAccountingPeriod) error {
	if err := cmd.Period.Validate(); err != nil {
		return err
	}
	period, err := generic.NewRepository(uow, NewAccountingPeriod).Load(ctx, cmd.Period.String())
	if err != nil {
		return err
	}
	period.Open(cmd.Period)
	return nil
}

func HandleCloseAccountingPeriod(ctx context.Context, uow *generic.UnitOfWork, cmd CloseAccountingPeriod) error {
	if err := cmd.Period.Validate(); err != nil {
		return err
	}
	period, err := generic.NewRepository(uow, NewAccountingPeriod).Load(ctx, cmd.Period.String())
	if err != nil {
		return err
	}
	return period.Close(cmd.Period)
}

// =============================================================================
// CHART OF ACCOUNTS
// =============================================================================

func loadChart(ctx context.Context, uow *generic.UnitOfWork) (*ChartOfAccounts, error) {
	return generic.NewRepository(uow, NewChartOfAccounts).Load(ctx, ChartOfAccountsStream)
}

func HandleDefineAccount(ctx context.Context, uow *generic.UnitOfWork, cmd DefineAccount) error {
	if err := cmd.AccountNumber.Validate(); err != nil {
		return err
	}
	name, err := NewAccountName(cmd.AccountName)
	if err != nil {
		return err
	}
	chart, err := loadChart(ctx, uow)
	if err != nil {
		return err
	}
	return chart.Define(cmd.AccountNumber, name)
}

func HandleRenameAccount(ctx context.Context, uow *generic.UnitOfWork, cmd RenameAccount) error {
	name, err := NewAccountName(cmd.NewAccountName)
	if err != nil {
		return err
	}
	chart, err := loadChart(ctx, uow)
	if err != nil {
		return err
	}
	return chart.Rename(cmd.AccountNumber, name)
}

func HandleDeactivateAccount(ctx context.Context, uow *generic.UnitOfWork, cmd DeactivateAccount) error {
	chart, err := loadChart(ctx, uow)
	if err != nil {
		return err
	}
	return chart.Deactivate(cmd.AccountNumber)
}

func HandleReactivateAccount(ctx context.Context, uow *generic.UnitOfWork, cmd ReactivateAccount) error {
	chart, err := loadChart(ctx, uow)
	if err != nil {
		return err
	}
	return chart.Reactivate(cmd.AccountNumber)
}

// =============================================================================
// GENERAL LEDGER ENTRIES
// =============================================================================

// HandlePostGeneralLedgerEntry posts the entry of a business transaction.
//
// The period is loaded to check that it still accepts postings; it records
// nothing, so only the entry's stream is appended to. The entry stream is
// loaded as well: it must sit at the transaction's expected version and
// must not hold an entry yet. The posting and the transaction's additional
// events go out in a single append on that stream.
func HandlePostGeneralLedgerEntry(ctx context.Context, uow *generic.UnitOfWork, cmd PostGeneralLedgerEntry) error {
	tx := cmd.BusinessTransaction
	if tx == nil {
		return fmt.Errorf("business transaction is required: %w", generic.ErrInvalidArgument)
	}
	if err := cmd.Period.Validate(); err != nil {
		return err
	}
	if cmd.CreatedOn.IsZero() {
		return fmt.Errorf("createdOn is required: %w", generic.ErrInvalidArgument)
	}

	period, err := generic.NewRepository(uow, NewAccountingPeriod).Load(ctx, cmd.Period.String())
	if err != nil {
		return err
	}
	if !period.AcceptsPostings() {
		return &PeriodClosedError{Period: cmd.Period}
	}

	built, additional := tx.PostTo(cmd.Period, cmd.CreatedOn)
	if built == nil {
		return &generic.InvariantViolationError{
			Invariant: "transaction produces an entry",
			Detail:    fmt.Sprintf("%s %s produced no entry", tx.TransactionType(), tx.TransactionID()),
		}
	}

	key := built.ID().String()
	entry, err := generic.NewRepository(uow, NewGeneralLedgerEntry).Load(ctx, key)
	if err != nil {
		return err
	}
	expected := generic.NoStream
	if v := tx.ExpectedVersion(); v != nil {
		expected = *v
	}
	if entry.Version() != expected {
		return &generic.ConcurrencyConflictError{Stream: key, Expected: expected, Actual: entry.Version()}
	}
	if entry.ID() != uuid.Nil || entry.Posted() {
		return &generic.DuplicateError{Kind: "general ledger entry", ID: key}
	}

	for _, e := range built.Changes() {
		entry.Record(e)
	}
	if err := entry.Post(); err != nil {
		return fmt.Errorf("%s %s: %w", tx.TransactionType(), tx.TransactionID(), err)
	}
	for _, e := range additional {
		entry.Record(e)
	}
	return nil
}
