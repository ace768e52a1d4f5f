/*
monitor.go - Low-stock monitor

PURPOSE:
  Runs synchronously after every successful receipt write. Emits a
  stockAdded notification unconditionally, then re-reads the product's
  on-hand total from the ledger and raises a lowStock alert when the total
  sits at or below the threshold - at most one unread alert per depletion
  episode.

FAILURE POLICY:
  The receipt is already durably committed by the time the monitor runs.
  Every failure here is captured in the returned Outcome and logged; none
  of it propagates to the caller of the receipt write. A recorded receipt
  with a missed notification beats a failed receipt.

DEDUP:
  The unread-alert existence check is a fast path. The real guarantee is
  the storage layer's partial unique index: when two writers race past the
  check, the second Create comes back with ErrDuplicateUnreadAlert and is
  treated as suppression, not an error.
*/
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agrostock/fertistock/ledger"
)

// DefaultLowStockThreshold is the unit count at or below which a product is
// considered low on stock, absent explicit configuration.
var DefaultLowStockThreshold = decimal.NewFromInt(50)

// Quantities is the slice of the aggregation engine the monitor needs: a
// fresh post-write total for one product.
type Quantities interface {
	QuantityForProduct(ctx context.Context, name string) (decimal.Decimal, error)
}

// Monitor watches receipt writes and raises notifications.
type Monitor struct {
	sink       Sink
	quantities Quantities
	threshold  decimal.Decimal
	log        *zap.Logger
}

// NewMonitor builds a monitor. The threshold is injected here so tests and
// deployments can vary it.
func NewMonitor(sink Sink, quantities Quantities, threshold decimal.Decimal, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{sink: sink, quantities: quantities, threshold: threshold, log: log}
}

// Outcome reports what the monitor did after one receipt. It is the explicit
// result of a best-effort secondary effect: callers inspect or log it, but
// never fail the primary operation because of it.
type Outcome struct {
	StockAdded    *Notification
	StockAddedErr error
	LowStock      *Notification
	Suppressed    bool
	Err           error
}

// AfterReceipt runs the monitor for one just-committed receipt.
func (m *Monitor) AfterReceipt(ctx context.Context, r ledger.Receipt) Outcome {
	var out Outcome

	added := Notification{
		Message: fmt.Sprintf("New stock of %s added. Quantity: %s units.", r.ProductName, r.QuantityReceived),
		Type:    TypeStockAdded,
		Product: r.ProductName,
		Details: "Invoice: " + r.InvoiceNumber,
	}
	if n, err := m.sink.Create(ctx, added); err != nil {
		out.StockAddedErr = err
		m.log.Error("stockAdded notification write failed",
			zap.String("product", r.ProductName),
			zap.Error(err))
	} else {
		out.StockAdded = &n
	}

	// Fresh read of durable state, not the delta just applied: a retried
	// write re-running this path still sees the same total and the same
	// unread alert.
	total, err := m.quantities.QuantityForProduct(ctx, r.ProductName)
	if err != nil {
		out.Err = err
		m.log.Error("low-stock recompute failed",
			zap.String("product", r.ProductName),
			zap.Error(err))
		return out
	}

	if total.GreaterThan(m.threshold) {
		return out
	}

	exists, err := m.sink.UnreadExists(ctx, r.ProductName, TypeLowStock)
	if err != nil {
		out.Err = err
		m.log.Error("low-stock dedup check failed",
			zap.String("product", r.ProductName),
			zap.Error(err))
		return out
	}
	if exists {
		out.Suppressed = true
		return out
	}

	low := Notification{
		Message: fmt.Sprintf("Low stock for %s! Current quantity: %s units.", r.ProductName, total),
		Type:    TypeLowStock,
		Product: r.ProductName,
		Details: fmt.Sprintf("Only %s units remaining after recent addition.", total),
	}
	n, err := m.sink.Create(ctx, low)
	if errors.Is(err, ErrDuplicateUnreadAlert) {
		// Lost the check-then-insert race; the index did its job.
		out.Suppressed = true
		return out
	}
	if err != nil {
		out.Err = err
		m.log.Error("lowStock notification write failed",
			zap.String("product", r.ProductName),
			zap.Error(err))
		return out
	}

	out.LowStock = &n
	m.log.Info("low stock alert raised",
		zap.String("product", r.ProductName),
		zap.String("total", total.String()))
	return out
}

// AlertState derives the per-product state from the sink. Alerted while an
// unread lowStock notification exists, Normal otherwise.
func (m *Monitor) AlertState(ctx context.Context, product string) (AlertState, error) {
	exists, err := m.sink.UnreadExists(ctx, product, TypeLowStock)
	if err != nil {
		return StateNormal, err
	}
	if exists {
		return StateAlerted, nil
	}
	return StateNormal, nil
}
