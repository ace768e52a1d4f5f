package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECEIPT - One recorded delivery/purchase event
// =============================================================================

// Receipt is a single stock-receipt row. Receipts are immutable once
// recorded: there is no update or delete path anywhere in this module, and
// on-hand quantity is always derived by summing receipts, never stored.
type Receipt struct {
	ID               string
	ProductName      string
	QuantityReceived decimal.Decimal
	PurchaseDate     Day
	ExpiryDate       Day
	InvoiceNumber    string
	Price            decimal.Decimal
	CreatedAt        time.Time
}

// ReceiptInput is the raw caller payload for RecordReceipt. Quantity and
// price are pointers so that "absent" and "zero" stay distinguishable.
type ReceiptInput struct {
	ProductName      string
	QuantityReceived *decimal.Decimal
	PurchaseDate     string
	ExpiryDate       string
	InvoiceNumber    string
	Price            *decimal.Decimal
}

// validate checks every field and collects ALL offending field names rather
// than stopping at the first, so the caller gets one complete 400.
func (in ReceiptInput) validate() (Receipt, *ValidationError) {
	var bad []string
	var r Receipt

	if in.ProductName == "" {
		bad = append(bad, "productName")
	}
	r.ProductName = in.ProductName

	switch {
	case in.QuantityReceived == nil:
		bad = append(bad, "quantityReceived")
	case in.QuantityReceived.IsNegative():
		bad = append(bad, "quantityReceived")
	default:
		r.QuantityReceived = *in.QuantityReceived
	}

	if d, err := ParseDay(in.PurchaseDate); err != nil {
		bad = append(bad, "purchaseDate")
	} else {
		r.PurchaseDate = d
	}

	if in.InvoiceNumber == "" {
		bad = append(bad, "invoiceNumber")
	}
	r.InvoiceNumber = in.InvoiceNumber

	if d, err := ParseDay(in.ExpiryDate); err != nil {
		bad = append(bad, "expiryDate")
	} else {
		r.ExpiryDate = d
	}

	switch {
	case in.Price == nil:
		bad = append(bad, "price")
	case in.Price.IsNegative():
		bad = append(bad, "price")
	default:
		r.Price = *in.Price
	}

	if len(bad) > 0 {
		return Receipt{}, &ValidationError{
			Message: "missing or invalid receipt fields",
			Fields:  bad,
		}
	}
	return r, nil
}
