package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
	"github.com/agrostock/fertistock/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testReceipt(product, quantity, purchaseDate string) ledger.Receipt {
	return ledger.Receipt{
		ProductName:      product,
		QuantityReceived: decimal.RequireFromString(quantity),
		PurchaseDate:     mustDay(purchaseDate),
		ExpiryDate:       mustDay("2025-12-31"),
		InvoiceNumber:    "INV-7",
		Price:            decimal.RequireFromString("12.50"),
	}
}

func mustDay(s string) ledger.Day {
	d, err := ledger.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// RECEIPT TESTS
// =============================================================================

func TestInsertReceipt_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.InsertReceipt(ctx, testReceipt("Urea", "100.25", "2024-03-05"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	receipts, err := store.AllReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	got := receipts[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Urea", got.ProductName)
	// Decimal text storage round-trips exactly, no float drift.
	assert.True(t, got.QuantityReceived.Equal(decimal.RequireFromString("100.25")))
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "2024-03-05", got.PurchaseDate.String())
}

func TestInsertReceipt_UniqueIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, err := store.InsertReceipt(ctx, testReceipt("Urea", "1", "2024-03-05"))
		require.NoError(t, err)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestReceiptsInWindow_Boundaries(t *testing.T) {
	// GIVEN: Receipts on three consecutive days
	// WHEN: Querying the half-open middle-day window
	// THEN: The start day is included, the end day excluded

	store := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-03-04", "2024-03-05", "2024-03-06"} {
		_, err := store.InsertReceipt(ctx, testReceipt("Urea", "10", date))
		require.NoError(t, err)
	}

	start := mustDay("2024-03-05")
	receipts, err := store.ReceiptsInWindow(ctx, start, start.Next())
	require.NoError(t, err)

	require.Len(t, receipts, 1)
	assert.Equal(t, "2024-03-05", receipts[0].PurchaseDate.String())
}

func TestReceiptsInWindow_OrderedAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-03-08", "2024-03-05", "2024-03-07"} {
		_, err := store.InsertReceipt(ctx, testReceipt("Urea", "10", date))
		require.NoError(t, err)
	}

	receipts, err := store.ReceiptsInWindow(ctx, mustDay("2024-03-01"), mustDay("2024-04-01"))
	require.NoError(t, err)

	require.Len(t, receipts, 3)
	assert.Equal(t, "2024-03-05", receipts[0].PurchaseDate.String())
	assert.Equal(t, "2024-03-07", receipts[1].PurchaseDate.String())
	assert.Equal(t, "2024-03-08", receipts[2].PurchaseDate.String())
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestCreate_UnreadLowStockUniquePerProduct(t *testing.T) {
	// GIVEN: An unread lowStock alert for Urea
	// WHEN: Inserting a second unread lowStock for Urea
	// THEN: The partial unique index rejects it; other products and other
	//       types remain unaffected

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 30 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	require.NoError(t, err)

	_, err = store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 40 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	assert.ErrorIs(t, err, notify.ErrDuplicateUnreadAlert)

	// Different product: fine
	_, err = store.Create(ctx, notify.Notification{
		Message: "Low stock for DAP! Current quantity: 5 units.",
		Type:    notify.TypeLowStock,
		Product: "DAP",
	})
	assert.NoError(t, err)

	// Same product, stockAdded type: fine, the index only covers lowStock
	_, err = store.Create(ctx, notify.Notification{
		Message: "New stock of Urea added. Quantity: 10 units.",
		Type:    notify.TypeStockAdded,
		Product: "Urea",
	})
	assert.NoError(t, err)
}

func TestCreate_ReadAlertDoesNotBlockNewOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 30 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	require.NoError(t, err)

	require.NoError(t, store.MarkRead(ctx, first.ID))

	// The index only constrains UNREAD rows, so a new episode can open.
	_, err = store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 45 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	assert.NoError(t, err)
}

func TestUnreadExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.UnreadExists(ctx, "Urea", notify.TypeLowStock)
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 30 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	require.NoError(t, err)

	exists, err = store.UnreadExists(ctx, "Urea", notify.TypeLowStock)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.MarkRead(ctx, n.ID))

	exists, err = store.UnreadExists(ctx, "Urea", notify.TypeLowStock)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestList_UnreadFilterAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, notify.Notification{
		Message: "New stock of Urea added. Quantity: 10 units.",
		Type:    notify.TypeStockAdded,
		Product: "Urea",
	})
	require.NoError(t, err)

	_, err = store.Create(ctx, notify.Notification{
		Message: "Low stock for Urea! Current quantity: 10 units.",
		Type:    notify.TypeLowStock,
		Product: "Urea",
	})
	require.NoError(t, err)

	all, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, store.MarkRead(ctx, first.ID))

	unread, err := store.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, notify.TypeLowStock, unread[0].Type)
}

func TestMarkRead_UnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkRead(context.Background(), "ntf-does-not-exist")
	assert.ErrorIs(t, err, notify.ErrNotFound)
}
