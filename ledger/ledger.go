/*
ledger.go - Append-mostly stock-receipt ledger

PURPOSE:
  The Ledger is the source of truth for incoming stock. Every delivery is
  recorded as an immutable Receipt row; on-hand quantity for a product is
  always the sum of its receipt rows, computed on demand by the Aggregator.
  There is no stored "current stock" field that can drift out of sync.

CRITICAL INVARIANTS:
  1. APPEND-MOSTLY: receipts are created, never updated or deleted
  2. VALIDATED-BEFORE-WRITE: a receipt either fails validation with no side
     effects, or commits in full
  3. UTC-NORMALIZED: purchase and expiry dates are pinned to midnight UTC at
     write time, so day-window reads need no timezone arithmetic

DEPLETION:
  This ledger has no decrement path. Sales live in a sibling ledger; the
  "sum over all receipts" contract is what lets the two compose.

SEE ALSO:
  - aggregate.go: derived totals over the same Store
  - store/sqlite: persistent Store implementation
*/
package ledger

import "context"

// Store is the persistence contract for receipts. Implementations must keep
// ReceiptsInWindow ordered ascending by purchase date and treat the window
// as half-open: [start, end).
type Store interface {
	// InsertReceipt persists a receipt and returns it with its generated
	// identifier filled in. This is the only write.
	InsertReceipt(ctx context.Context, r Receipt) (Receipt, error)

	// AllReceipts returns every receipt. No implicit filtering.
	AllReceipts(ctx context.Context) ([]Receipt, error)

	// ReceiptsInWindow returns receipts whose purchase date falls in
	// [start, end), ordered ascending by purchase date.
	ReceiptsInWindow(ctx context.Context, start, end Day) ([]Receipt, error)
}

// Ledger wraps a Store with input validation and date normalization.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// RecordReceipt validates the input, normalizes both dates to midnight UTC
// and persists the row. On validation failure nothing is written and the
// returned error is a *ValidationError listing every bad field.
func (l *Ledger) RecordReceipt(ctx context.Context, in ReceiptInput) (Receipt, error) {
	r, verr := in.validate()
	if verr != nil {
		return Receipt{}, verr
	}
	return l.store.InsertReceipt(ctx, r)
}

// ListAll returns every receipt in the ledger.
func (l *Ledger) ListAll(ctx context.Context) ([]Receipt, error) {
	return l.store.AllReceipts(ctx)
}

// FindByDateWindow returns receipts with purchase date in [start, end),
// ascending by purchase date.
func (l *Ledger) FindByDateWindow(ctx context.Context, start, end Day) ([]Receipt, error) {
	return l.store.ReceiptsInWindow(ctx, start, end)
}
