/*
entry.go - General ledger entry aggregate and the business transaction contract

PURPOSE:
  A GeneralLedgerEntry is one posting: a set of debit lines and a set of
  credit lines that must balance. Entries are built in one shot by a
  BusinessTransaction and finalized with Post(), which is where the
  balance invariant is enforced.

LIFECYCLE:
  1. CreateGeneralLedgerEntry()  → GeneralLedgerEntryCreated
  2. ApplyDebit()/ApplyCredit()  → DebitApplied / CreditApplied
  3. ApplyTransaction()          → BusinessTransactionLinked
  4. Post()                      → GeneralLedgerEntryPosted, or an
                                   InvariantViolationError and nothing more

  There is no operation to edit or remove a line.

BUSINESS TRANSACTIONS:
  Any domain operation that produces a posting implements
  BusinessTransaction. Its additional events (for example its own creation
  fact) are appended on the entry's stream in the same atomic append as
  the posting.

SEE ALSO:
  - purchaseorders/purchase_order.go: Example business transaction
  - factory/transaction.go: Wire codec for business transactions
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// BUSINESS TRANSACTION - Anything that posts to the general ledger
// =============================================================================

// BusinessTransaction turns itself into a balanced ledger posting.
//
// Implementations must return an entry whose debits and credits balance;
// an unbalanced entry is a programming error and is rejected by Post()
// before anything is persisted.
type BusinessTransaction interface {
	generic.Event

	// TransactionType is the registered type name, e.g. "PurchaseOrder".
	TransactionType() string

	// TransactionID identifies this transaction instance.
	TransactionID() string

	// PostTo builds the entry and returns any additional events to append
	// together with it.
	PostTo(period PeriodIdentifier, createdOn time.Time) (*GeneralLedgerEntry, []generic.Event)

	// ExpectedVersion is the expected version of the posting stream when the
	// transaction is itself a persisted aggregate; nil for a new stream.
	ExpectedVersion() *int
}

// TransactionReference is the provenance link of an entry.
type TransactionReference struct {
	Type string
	ID   string
}

// =============================================================================
// GENERAL LEDGER ENTRY
// =============================================================================

// GeneralLedgerEntry is keyed by its id's canonical UUID string.
type GeneralLedgerEntry struct {
	generic.Aggregate

	id          uuid.UUID
	number      string
	period      PeriodIdentifier
	createdOn   time.Time
	debits      []Debit
	credits     []Credit
	transaction *TransactionReference
	posted      bool
}

// NewGeneralLedgerEntry returns an empty entry ready for replay.
func NewGeneralLedgerEntry() *GeneralLedgerEntry {
	e := &GeneralLedgerEntry{}
	generic.On(&e.Aggregate, func(ev GeneralLedgerEntryCreated) {
		e.id = ev.GeneralLedgerEntryID
		e.number = ev.Number
		e.period = ev.Period
		e.createdOn = ev.CreatedOn
	})
	generic.On(&e.Aggregate, func(ev DebitApplied) {
		e.debits = append(e.debits, Debit{AccountNumber: ev.AccountNumber, Amount: ev.Amount})
	})
	generic.On(&e.Aggregate, func(ev CreditApplied) {
		e.credits = append(e.credits, Credit{AccountNumber: ev.AccountNumber, Amount: ev.Amount})
	})
	generic.On(&e.Aggregate, func(ev BusinessTransactionLinked) {
		e.transaction = &TransactionReference{Type: ev.TransactionType, ID: ev.TransactionID}
	})
	generic.On(&e.Aggregate, func(GeneralLedgerEntryPosted) {
		e.posted = true
	})
	return e
}

// CreateGeneralLedgerEntry starts a new, empty entry.
func CreateGeneralLedgerEntry(id uuid.UUID, number string, period PeriodIdentifier, createdOn time.Time) *GeneralLedgerEntry {
	e := NewGeneralLedgerEntry()
	e.Record(GeneralLedgerEntryCreated{
		GeneralLedgerEntryID: id,
		Number:               number,
		Period:               period,
		CreatedOn:            createdOn,
	})
	return e
}

func (e *GeneralLedgerEntry) ApplyDebit(d Debit) {
	e.Record(DebitApplied{GeneralLedgerEntryID: e.id, AccountNumber: d.AccountNumber, Amount: d.Amount})
}

func (e *GeneralLedgerEntry) ApplyCredit(c Credit) {
	e.Record(CreditApplied{GeneralLedgerEntryID: e.id, AccountNumber: c.AccountNumber, Amount: c.Amount})
}

// ApplyTransaction links the entry to the transaction it came from.
func (e *GeneralLedgerEntry) ApplyTransaction(tx BusinessTransaction) {
	e.Record(BusinessTransactionLinked{
		GeneralLedgerEntryID: e.id,
		TransactionType:      tx.TransactionType(),
		TransactionID:        tx.TransactionID(),
	})
}

// Post finalizes the entry. It fails with an InvariantViolationError, and
// records nothing, unless the entry was created, has at least one line and
// balances. Posting a posted entry is a no-op.
func (e *GeneralLedgerEntry) Post() error {
	if e.posted {
		return nil
	}
	if e.id == uuid.Nil {
		return &generic.InvariantViolationError{Invariant: "entry created", Detail: "entry has no identifier"}
	}
	if len(e.debits) == 0 || len(e.credits) == 0 {
		return &generic.InvariantViolationError{
			Invariant: "entry has lines",
			Detail:    fmt.Sprintf("entry %s has %d debits and %d credits", e.id, len(e.debits), len(e.credits)),
		}
	}
	if !e.Balanced() {
		return &generic.InvariantViolationError{
			Invariant: "debits equal credits",
			Detail:    fmt.Sprintf("entry %s: debits %s, credits %s", e.id, e.DebitTotal(), e.CreditTotal()),
		}
	}
	e.Record(GeneralLedgerEntryPosted{GeneralLedgerEntryID: e.id})
	return nil
}

// Balanced reports whether sum(debits) == sum(credits).
func (e *GeneralLedgerEntry) Balanced() bool {
	return e.DebitTotal().Equal(e.CreditTotal())
}

func (e *GeneralLedgerEntry) DebitTotal() Money {
	var total Money
	for _, d := range e.debits {
		total = total.Add(d.Amount)
	}
	return total
}

func (e *GeneralLedgerEntry) CreditTotal() Money {
	var total Money
	for _, c := range e.credits {
		total = total.Add(c.Amount)
	}
	return total
}

func (e *GeneralLedgerEntry) ID() uuid.UUID            { return e.id }
func (e *GeneralLedgerEntry) Number() string           { return e.number }
func (e *GeneralLedgerEntry) Period() PeriodIdentifier { return e.period }
func (e *GeneralLedgerEntry) CreatedOn() time.Time     { return e.createdOn }
func (e *GeneralLedgerEntry) Posted() bool             { return e.posted }

// Transaction returns the provenance link, if one was applied.
func (e *GeneralLedgerEntry) Transaction() (TransactionReference, bool) {
	if e.transaction == nil {
		return TransactionReference{}, false
	}
	return *e.transaction, true
}

func (e *GeneralLedgerEntry) Debits() []Debit {
	return append([]Debit(nil), e.debits...)
}

func (e *GeneralLedgerEntry) Credits() []Credit {
	return append([]Credit(nil), e.credits...)
}
