package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// ACCOUNTING PERIOD EVENTS
// =============================================================================

type AccountingPeriodOpened struct {
	Period PeriodIdentifier `json:"period"`
}

type AccountingPeriodClosed struct {
	Period PeriodIdentifier `json:"period"`
}

func (AccountingPeriodOpened) EventType() string { return "AccountingPeriodOpened" }
func (AccountingPeriodClosed) EventType() string { return "AccountingPeriodClosed" }

// =============================================================================
// CHART OF ACCOUNTS EVENTS
// =============================================================================

type AccountDefined struct {
	AccountNumber AccountNumber `json:"accountNumber"`
	AccountName   AccountName   `json:"accountName"`
}

type AccountRenamed struct {
	AccountNumber  AccountNumber `json:"accountNumber"`
	NewAccountName AccountName   `json:"newAccountName"`
}

type AccountDeactivated struct {
	AccountNumber AccountNumber `json:"accountNumber"`
}

type AccountReactivated struct {
	AccountNumber AccountNumber `json:"accountNumber"`
}

func (AccountDefined) EventType() string     { return "AccountDefined" }
func (AccountRenamed) EventType() string     { return "AccountRenamed" }
func (AccountDeactivated) EventType() string { return "AccountDeactivated" }
func (AccountReactivated) EventType() string { return "AccountReactivated" }

// =============================================================================
// GENERAL LEDGER ENTRY EVENTS
// =============================================================================

type GeneralLedgerEntryCreated struct {
	GeneralLedgerEntryID uuid.UUID        `json:"generalLedgerEntryId"`
	Number               string           `json:"number"`
	Period               PeriodIdentifier `json:"period"`
	CreatedOn            time.Time        `json:"createdOn"`
}

type DebitApplied struct {
	GeneralLedgerEntryID uuid.UUID     `json:"generalLedgerEntryId"`
	AccountNumber        AccountNumber `json:"accountNumber"`
	Amount               Money         `json:"amount"`
}

type CreditApplied struct {
	GeneralLedgerEntryID uuid.UUID     `json:"generalLedgerEntryId"`
	AccountNumber        AccountNumber `json:"accountNumber"`
	Amount               Money         `json:"amount"`
}

// BusinessTransactionLinked records which transaction a posting came from.
type BusinessTransactionLinked struct {
	GeneralLedgerEntryID uuid.UUID `json:"generalLedgerEntryId"`
	TransactionType      string    `json:"transactionType"`
	TransactionID        string    `json:"transactionId"`
}

type GeneralLedgerEntryPosted struct {
	GeneralLedgerEntryID uuid.UUID `json:"generalLedgerEntryId"`
}

func (GeneralLedgerEntryCreated) EventType() string { return "GeneralLedgerEntryCreated" }
func (DebitApplied) EventType() string              { return "DebitApplied" }
func (CreditApplied) EventType() string             { return "CreditApplied" }
func (BusinessTransactionLinked) EventType() string { return "BusinessTransactionLinked" }
func (GeneralLedgerEntryPosted) EventType() string  { return "GeneralLedgerEntryPosted" }

// RegisterEvents adds every ledger event to r.
func RegisterEvents(r *generic.Registry) {
	generic.RegisterEvent[AccountingPeriodOpened](r)
	generic.RegisterEvent[AccountingPeriodClosed](r)
	generic.RegisterEvent[AccountDefined](r)
	generic.RegisterEvent[AccountRenamed](r)
	generic.RegisterEvent[AccountDeactivated](r)
	generic.RegisterEvent[AccountReactivated](r)
	generic.RegisterEvent[GeneralLedgerEntryCreated](r)
	generic.RegisterEvent[DebitApplied](r)
	generic.RegisterEvent[CreditApplied](r)
	generic.RegisterEvent[BusinessTransactionLinked](r)
	generic.RegisterEvent[GeneralLedgerEntryPosted](r)
}
