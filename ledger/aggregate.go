/*
aggregate.go - Derived inventory totals

PURPOSE:
  Pure read operations over the receipt ledger. Every call recomputes from
  the full data set - no caching, no incremental counters. That trades a
  little efficiency for correctness under concurrent writes: a total can
  never be stale relative to the rows it was computed from.

  Sums are replayed in Go over decimal values rather than pushed into SQL,
  so quantities stay exact (no float coercion in the storage engine).
*/
package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// ProductQuantity is one per-product total.
type ProductQuantity struct {
	Name     string
	Quantity decimal.Decimal
}

// Aggregator computes inventory totals from the receipt ledger.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// TotalQuantity is the sum of quantityReceived across all receipts.
// Zero for an empty ledger.
func (a *Aggregator) TotalQuantity(ctx context.Context) (decimal.Decimal, error) {
	receipts, err := a.store.AllReceipts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(r.QuantityReceived)
	}
	return total, nil
}

// DistinctProductCount is the number of distinct product names in the ledger.
func (a *Aggregator) DistinctProductCount(ctx context.Context) (int, error) {
	receipts, err := a.store.AllReceipts(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	for _, r := range receipts {
		seen[r.ProductName] = struct{}{}
	}
	return len(seen), nil
}

// QuantityByProduct returns one entry per distinct product, sorted by
// quantity descending. Ties break ascending by name so the order is
// deterministic for a given data set.
func (a *Aggregator) QuantityByProduct(ctx context.Context) ([]ProductQuantity, error) {
	receipts, err := a.store.AllReceipts(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, r := range receipts {
		totals[r.ProductName] = totals[r.ProductName].Add(r.QuantityReceived)
	}

	out := make([]ProductQuantity, 0, len(totals))
	for name, qty := range totals {
		out = append(out, ProductQuantity{Name: name, Quantity: qty})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Quantity.Cmp(out[j].Quantity); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// QuantityForProduct sums quantityReceived over receipts whose product name
// matches exactly (case-sensitive). Zero when no receipts match.
func (a *Aggregator) QuantityForProduct(ctx context.Context, name string) (decimal.Decimal, error) {
	receipts, err := a.store.AllReceipts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, r := range receipts {
		if r.ProductName == name {
			total = total.Add(r.QuantityReceived)
		}
	}
	return total, nil
}
