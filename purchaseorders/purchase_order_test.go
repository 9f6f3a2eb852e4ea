package purchaseorders_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/generic/store"
	"github.com/warp/bookkeeping-engine/ledger"
	"github.com/warp/bookkeeping-engine/purchaseorders"
)

var (
	march    = ledger.PeriodIdentifier{Month: 3, Year: 2025}
	postedOn = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
)

func order() purchaseorders.PurchaseOrder {
	return purchaseorders.PurchaseOrder{
		PurchaseOrderID:     uuid.MustParse("8c1d2f0e-5b7a-4c3e-9d41-0f6a2b9e7c15"),
		PurchaseOrderNumber: 17,
		VendorName:          "Acme Supply",
		Items: []purchaseorders.Item{
			{ItemNumber: "A-1", Quantity: 2, Total: ledger.MustParseMoney("120.00")},
			{ItemNumber: "B-7", Quantity: 1, Total: ledger.MustParseMoney("30.00")},
		},
	}
}

func TestPurchaseOrder_PostTo(t *testing.T) {
	po := order()

	entry, additional := po.PostTo(march, postedOn)

	require.NotNil(t, entry)
	assert.Equal(t, po.PurchaseOrderID, entry.ID())
	assert.Equal(t, "purchaseorder-17", entry.Number())
	assert.Equal(t, march, entry.Period())

	credits := entry.Credits()
	require.Len(t, credits, 1)
	assert.Equal(t, purchaseorders.AccountsPayable, credits[0].AccountNumber)
	assert.Equal(t, "150.00", credits[0].Amount.String())

	debits := entry.Debits()
	require.Len(t, debits, 1)
	assert.Equal(t, purchaseorders.InventoryInTransit, debits[0].AccountNumber)
	assert.Equal(t, "150.00", debits[0].Amount.String())

	ref, ok := entry.Transaction()
	require.True(t, ok)
	assert.Equal(t, ledger.TransactionReference{Type: "PurchaseOrder", ID: po.TransactionID()}, ref)

	assert.Equal(t, []generic.Event{po}, additional)
	require.NoError(t, entry.Post())
}

func TestPurchaseOrder_NoItemsPostsZeroLines(t *testing.T) {
	po := order()
	po.Items = nil

	entry, _ := po.PostTo(march, postedOn)

	assert.True(t, entry.Balanced())
	assert.NoError(t, entry.Post(), "zero-amount lines still balance")
}

func TestPurchaseOrder_Total(t *testing.T) {
	assert.True(t, order().Total().Equal(ledger.MustParseMoney("150")))
	assert.Nil(t, order().ExpectedVersion())
}

func TestPurchaseOrder_PostThroughPipeline(t *testing.T) {
	// GIVEN: A ledger module with purchase orders registered
	log := store.NewMemory()
	registry := generic.NewRegistry()
	ledger.RegisterEvents(registry)
	purchaseorders.RegisterEvents(registry)
	d := generic.NewDispatcher()
	ledger.RegisterModule(d, ledger.Module{Log: log, Registry: registry})
	po := order()

	// WHEN: The order is posted
	require.NoError(t, d.Dispatch(context.Background(), ledger.PostGeneralLedgerEntry{
		BusinessTransaction: po,
		Period:              march,
		CreatedOn:           postedOn,
	}))

	// THEN: The order's stream holds the posting and the order itself
	recorded, err := log.ReadStream(context.Background(), po.PurchaseOrderID.String())
	require.NoError(t, err)
	require.Len(t, recorded, 6)
	assert.Equal(t, "GeneralLedgerEntryPosted", recorded[4].Type)
	assert.Equal(t, "PurchaseOrder", recorded[5].Type)

	stored, err := registry.Decode(recorded[5])
	require.NoError(t, err)
	got, ok := stored.(purchaseorders.PurchaseOrder)
	require.True(t, ok)
	assert.Equal(t, po.PurchaseOrderNumber, got.PurchaseOrderNumber)
	assert.True(t, got.Total().Equal(po.Total()))

	entry, err := ledger.Queries{Log: log, Registry: registry}.GeneralLedgerEntry(context.Background(), po.PurchaseOrderID)
	require.NoError(t, err)
	assert.True(t, entry.Posted())
	assert.Equal(t, 6, entry.Version(), "the order event counts toward the entry's version")
}
