/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract: the wire keeps
  the field names clients already use (fertilizerName, quantityReceived)
  while the domain speaks in receipts and products.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS ON THE WIRE:
  Quantities and prices are exact decimals inside the module and plain JSON
  numbers on the wire. Conversion to float64 happens here, at the edge, and
  nowhere else.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// FertilizerDTO represents one stock receipt in API responses.
type FertilizerDTO struct {
	ID               string  `json:"id"`
	FertilizerName   string  `json:"fertilizerName"`
	QuantityReceived float64 `json:"quantityReceived"`
	PurchaseDate     string  `json:"purchaseDate"`
	ExpiryDate       string  `json:"expiryDate"`
	InvoiceNumber    string  `json:"invoiceNumber"`
	Price            float64 `json:"price"`
	CreatedAt        string  `json:"createdAt,omitempty"`
}

// AddFertilizerRequest is the request to record a stock receipt. Quantity
// and price are decimal pointers so "absent" and "zero" stay apart; the
// decimal type accepts both quoted and bare JSON numbers.
type AddFertilizerRequest struct {
	FertilizerName   string           `json:"fertilizerName"`
	QuantityReceived *decimal.Decimal `json:"quantityReceived"`
	PurchaseDate     string           `json:"purchaseDate"`
	ExpiryDate       string           `json:"expiryDate"`
	InvoiceNumber    string           `json:"invoiceNumber"`
	Price            *decimal.Decimal `json:"price"`
}

// AddFertilizerResponse is returned after a successful stock write.
type AddFertilizerResponse struct {
	Message    string        `json:"message"`
	Fertilizer FertilizerDTO `json:"fertilizer"`
}

// SummaryDTO is the whole-inventory rollup.
type SummaryDTO struct {
	TotalQuantity float64 `json:"totalQuantity"`
	TotalTypes    int     `json:"totalTypes"`
}

// InventoryByTypeDTO is one per-product total, largest first.
type InventoryByTypeDTO struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// NotificationDTO represents one alert in API responses.
type NotificationDTO struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Product   string `json:"product"`
	Details   string `json:"details,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toFertilizerDTO(r ledger.Receipt) FertilizerDTO {
	quantity, _ := r.QuantityReceived.Float64()
	price, _ := r.Price.Float64()
	return FertilizerDTO{
		ID:               r.ID,
		FertilizerName:   r.ProductName,
		QuantityReceived: quantity,
		PurchaseDate:     r.PurchaseDate.String(),
		ExpiryDate:       r.ExpiryDate.String(),
		InvoiceNumber:    r.InvoiceNumber,
		Price:            price,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
}

func toFertilizerDTOs(receipts []ledger.Receipt) []FertilizerDTO {
	dtos := make([]FertilizerDTO, len(receipts))
	for i, r := range receipts {
		dtos[i] = toFertilizerDTO(r)
	}
	return dtos
}

func toNotificationDTO(n notify.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		Product:   n.Product,
		Details:   n.Details,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func toNotificationDTOs(notifications []notify.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	return dtos
}
