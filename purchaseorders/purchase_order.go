/*
Package purchaseorders provides the purchase order business transaction.

PURPOSE:
  A purchase order is the reference BusinessTransaction: it posts what
  was ordered to the general ledger and records itself on the posting's
  stream in the same append.

POSTING:
  For items with totals t1..tn, T = t1 + ... + tn:
    Credit 2150 Accounts Payable         T
    Debit  1400 Inventory In Transit     T
  Both sides accumulate the same totals, so the entry balances by
  construction.

REGISTRATION:
  purchaseorders.RegisterEvents(registry)       // so replay can decode it
  purchaseorders.RegisterTransaction(codec)     // so commands can carry it

SEE ALSO:
  - ledger/entry.go: BusinessTransaction interface
  - factory/transaction.go: Discriminator-keyed wire format
*/
package purchaseorders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/factory"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/ledger"
)

const (
	AccountsPayable    ledger.AccountNumber = 2150
	InventoryInTransit ledger.AccountNumber = 1400
)

// Item is one purchase order line.
type Item struct {
	ItemNumber string       `json:"itemNumber"`
	Quantity   int          `json:"quantity"`
	Total      ledger.Money `json:"total"`
}

// PurchaseOrder is both a business transaction and the event recording it.
type PurchaseOrder struct {
	PurchaseOrderID     uuid.UUID `json:"purchaseOrderId"`
	PurchaseOrderNumber int       `json:"purchaseOrderNumber"`
	VendorName          string    `json:"vendorName,omitempty"`
	Items               []Item    `json:"purchaseOrderItems"`
	Version             *int      `json:"version,omitempty"`
}

var _ ledger.BusinessTransaction = PurchaseOrder{}

func (PurchaseOrder) EventType() string       { return "PurchaseOrder" }
func (PurchaseOrder) TransactionType() string { return "PurchaseOrder" }

func (po PurchaseOrder) TransactionID() string { return po.PurchaseOrderID.String() }
func (po PurchaseOrder) ExpectedVersion() *int { return po.Version }

// Total is the sum of every item total.
func (po PurchaseOrder) Total() ledger.Money {
	var total ledger.Money
	for _, item := range po.Items {
		total = total.Add(item.Total)
	}
	return total
}

// PostTo credits accounts payable and debits inventory in transit by the
// order total. The entry shares the purchase order's id.
func (po PurchaseOrder) PostTo(period ledger.PeriodIdentifier, createdOn time.Time) (*ledger.GeneralLedgerEntry, []generic.Event) {
	entry := ledger.CreateGeneralLedgerEntry(
		po.PurchaseOrderID,
		fmt.Sprintf("purchaseorder-%d", po.PurchaseOrderNumber),
		period, createdOn)

	accountsPayable := ledger.NewCredit(AccountsPayable)
	inventoryInTransit := ledger.NewDebit(InventoryInTransit)
	for _, item := range po.Items {
		accountsPayable = accountsPayable.Add(item.Total)
		inventoryInTransit = inventoryInTransit.Add(item.Total)
	}

	entry.ApplyCredit(accountsPayable)
	entry.ApplyDebit(inventoryInTransit)
	entry.ApplyTransaction(po)

	return entry, []generic.Event{po}
}

// RegisterEvents makes stored purchase orders decodable.
func RegisterEvents(r *generic.Registry) {
	generic.RegisterEvent[PurchaseOrder](r)
}

// RegisterTransaction makes purchase orders decodable from commands.
func RegisterTransaction(r *factory.TransactionRegistry) {
	factory.Register[PurchaseOrder](r)
}
