package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
	"github.com/agrostock/fertistock/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type monitorFixture struct {
	store   *memory.Store
	ledger  *ledger.Ledger
	monitor *notify.Monitor
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()
	store := memory.New()
	return &monitorFixture{
		store:   store,
		ledger:  ledger.NewLedger(store),
		monitor: notify.NewMonitor(store, ledger.NewAggregator(store), notify.DefaultLowStockThreshold, nil),
	}
}

// receive records a receipt and runs the monitor, the way the write path does.
func (f *monitorFixture) receive(t *testing.T, product, quantity string) notify.Outcome {
	t.Helper()
	qty := decimal.RequireFromString(quantity)
	price := decimal.NewFromInt(10)

	r, err := f.ledger.RecordReceipt(context.Background(), ledger.ReceiptInput{
		ProductName:      product,
		QuantityReceived: &qty,
		PurchaseDate:     "2024-03-05",
		ExpiryDate:       "2025-03-05",
		InvoiceNumber:    "INV-42",
		Price:            &price,
	})
	require.NoError(t, err)
	return f.monitor.AfterReceipt(context.Background(), r)
}

// =============================================================================
// ALERT LIFECYCLE TESTS
// =============================================================================

func TestMonitor_DepletionEpisode(t *testing.T) {
	// GIVEN: An empty ledger and the default threshold of 50
	// WHEN: Stock arrives in three batches: 30, then 10, then 20
	// THEN: The first two writes sit at or below the threshold, but only
	//       the first raises a lowStock alert; the third lifts the total
	//       to 60 and raises nothing

	f := newMonitorFixture(t)
	ctx := context.Background()

	// Batch 1: total 30 <= 50, alert raised
	out := f.receive(t, "Urea", "30")
	require.NotNil(t, out.StockAdded)
	require.NotNil(t, out.LowStock)
	assert.Equal(t, "Low stock for Urea! Current quantity: 30 units.", out.LowStock.Message)
	assert.Equal(t, "Only 30 units remaining after recent addition.", out.LowStock.Details)

	// Batch 2: total 40 <= 50, but the alert is still unread
	out = f.receive(t, "Urea", "10")
	require.NotNil(t, out.StockAdded)
	assert.Nil(t, out.LowStock)
	assert.True(t, out.Suppressed, "second breach in the same episode must be suppressed")

	// Batch 3: total 60 > 50, back to normal
	out = f.receive(t, "Urea", "20")
	require.NotNil(t, out.StockAdded)
	assert.Nil(t, out.LowStock)
	assert.False(t, out.Suppressed)

	state, err := f.monitor.AlertState(ctx, "Urea")
	require.NoError(t, err)
	assert.Equal(t, notify.StateAlerted, state, "alert stays open until someone reads it")
}

func TestMonitor_MarkReadOpensNextEpisode(t *testing.T) {
	// GIVEN: An open lowStock alert
	// WHEN: The alert is marked read and the product breaches again
	// THEN: A fresh alert is raised

	f := newMonitorFixture(t)
	ctx := context.Background()

	out := f.receive(t, "Urea", "20")
	require.NotNil(t, out.LowStock)

	require.NoError(t, f.store.MarkRead(ctx, out.LowStock.ID))

	state, err := f.monitor.AlertState(ctx, "Urea")
	require.NoError(t, err)
	assert.Equal(t, notify.StateNormal, state)

	out = f.receive(t, "Urea", "10")
	require.NotNil(t, out.LowStock, "a new episode starts after the old alert is read")
	assert.Equal(t, "Low stock for Urea! Current quantity: 30 units.", out.LowStock.Message)
}

func TestMonitor_StockAddedAlwaysEmitted(t *testing.T) {
	f := newMonitorFixture(t)

	out := f.receive(t, "DAP", "500")
	require.NotNil(t, out.StockAdded)
	assert.Equal(t, "New stock of DAP added. Quantity: 500 units.", out.StockAdded.Message)
	assert.Equal(t, "Invoice: INV-42", out.StockAdded.Details)
	assert.Nil(t, out.LowStock)
}

func TestMonitor_ProductsIsolated(t *testing.T) {
	// An open alert on one product must not suppress another product's.
	f := newMonitorFixture(t)

	out := f.receive(t, "Urea", "10")
	require.NotNil(t, out.LowStock)

	out = f.receive(t, "DAP", "10")
	require.NotNil(t, out.LowStock, "DAP's episode is independent of Urea's")
}

func TestMonitor_ExactThresholdBreaches(t *testing.T) {
	// "At or below": a total of exactly 50 is a breach.
	f := newMonitorFixture(t)

	out := f.receive(t, "Urea", "50")
	require.NotNil(t, out.LowStock)
	assert.Equal(t, "Low stock for Urea! Current quantity: 50 units.", out.LowStock.Message)
}

// =============================================================================
// FAILURE POLICY TESTS
// =============================================================================

// failingSink fails every Create but answers reads from the wrapped sink.
type failingSink struct {
	notify.Sink
	createErr error
}

func (s *failingSink) Create(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	return notify.Notification{}, s.createErr
}

func TestMonitor_SinkFailureCapturedNotPropagated(t *testing.T) {
	// GIVEN: A sink whose writes always fail
	// WHEN: The monitor runs after a committed receipt
	// THEN: The failure lands in the Outcome; AfterReceipt itself never
	//       panics or aborts

	store := memory.New()
	l := ledger.NewLedger(store)
	sinkErr := errors.New("sink down")
	mon := notify.NewMonitor(
		&failingSink{Sink: store, createErr: sinkErr},
		ledger.NewAggregator(store),
		notify.DefaultLowStockThreshold,
		nil,
	)

	qty := decimal.NewFromInt(10)
	price := decimal.NewFromInt(1)
	r, err := l.RecordReceipt(context.Background(), ledger.ReceiptInput{
		ProductName:      "Urea",
		QuantityReceived: &qty,
		PurchaseDate:     "2024-03-05",
		ExpiryDate:       "2025-03-05",
		InvoiceNumber:    "INV-1",
		Price:            &price,
	})
	require.NoError(t, err)

	out := mon.AfterReceipt(context.Background(), r)
	assert.ErrorIs(t, out.StockAddedErr, sinkErr)
	assert.Nil(t, out.StockAdded)
	assert.ErrorIs(t, out.Err, sinkErr, "lowStock write failure is captured too")
}

// racingSink simulates losing the check-then-insert race: the existence
// check says no alert, but the insert hits the unique index.
type racingSink struct {
	notify.Sink
}

func (s *racingSink) UnreadExists(ctx context.Context, product string, typ notify.Type) (bool, error) {
	return false, nil
}

func (s *racingSink) Create(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	if n.Type == notify.TypeLowStock {
		return notify.Notification{}, notify.ErrDuplicateUnreadAlert
	}
	return s.Sink.Create(ctx, n)
}

func TestMonitor_LostRaceIsSuppression(t *testing.T) {
	store := memory.New()
	l := ledger.NewLedger(store)
	mon := notify.NewMonitor(&racingSink{Sink: store}, ledger.NewAggregator(store), notify.DefaultLowStockThreshold, nil)

	qty := decimal.NewFromInt(10)
	price := decimal.NewFromInt(1)
	r, err := l.RecordReceipt(context.Background(), ledger.ReceiptInput{
		ProductName:      "Urea",
		QuantityReceived: &qty,
		PurchaseDate:     "2024-03-05",
		ExpiryDate:       "2025-03-05",
		InvoiceNumber:    "INV-1",
		Price:            &price,
	})
	require.NoError(t, err)

	out := mon.AfterReceipt(context.Background(), r)
	assert.True(t, out.Suppressed, "constraint violation on lowStock means another writer won")
	assert.NoError(t, out.Err)
	assert.Nil(t, out.LowStock)
}
