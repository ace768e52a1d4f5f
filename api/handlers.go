/*
handlers.go - HTTP API handlers for the fertilizer stock system

PURPOSE:
  Exposes the stock ledger via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Fertilizers:
    GET    /api/fertilizers/all                   List all stock receipts
    POST   /api/fertilizers/add                   Record a stock receipt
    GET    /api/fertilizers/summary               Whole-inventory rollup
    GET    /api/fertilizers/inventory-by-type     Per-product totals
    GET    /api/fertilizers/stock-report-by-date  Receipts for one UTC day

  Notifications:
    GET    /api/notifications                     List alerts (?unread=true)
    PUT    /api/notifications/{id}/read           Mark one alert read

REQUEST FLOW:
  1. Parse HTTP request
  2. Call domain logic (ledger, aggregator, monitor, report)
  3. Serialize response
  4. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Notification not found
  - 500: Store or internal errors
  The low-stock monitor is the one exception: its failures are logged and
  never fail the receipt write that triggered it.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
	"github.com/agrostock/fertistock/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *ledger.Ledger
	Aggregates *ledger.Aggregator
	Reports    *report.Service
	Sink       notify.Sink
	Monitor    *notify.Monitor
	Log        *zap.Logger
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(l *ledger.Ledger, agg *ledger.Aggregator, rep *report.Service, sink notify.Sink, mon *notify.Monitor, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Ledger:     l,
		Aggregates: agg,
		Reports:    rep,
		Sink:       sink,
		Monitor:    mon,
		Log:        log,
	}
}

// =============================================================================
// FERTILIZER HANDLERS
// =============================================================================

// ListFertilizers returns every stock receipt.
func (h *Handler) ListFertilizers(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.Ledger.ListAll(r.Context())
	if err != nil {
		h.Log.Error("list fertilizers failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching fertilizers.", nil)
		return
	}

	writeJSON(w, http.StatusOK, toFertilizerDTOs(receipts))
}

// AddFertilizer records a new stock receipt, then runs the low-stock monitor.
func (h *Handler) AddFertilizer(w http.ResponseWriter, r *http.Request) {
	var req AddFertilizerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	receipt, err := h.Ledger.RecordReceipt(r.Context(), ledger.ReceiptInput{
		ProductName:      req.FertilizerName,
		QuantityReceived: req.QuantityReceived,
		PurchaseDate:     req.PurchaseDate,
		ExpiryDate:       req.ExpiryDate,
		InvoiceNumber:    req.InvoiceNumber,
		Price:            req.Price,
	})
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest,
				"All fields are required: fertilizerName, quantityReceived, purchaseDate, invoiceNumber, expiryDate, price.",
				wireFields(verr.Fields))
			return
		}
		h.Log.Error("add fertilizer failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while adding fertilizer stock.", nil)
		return
	}

	// Best-effort side effects: the receipt is committed, so monitor
	// failures are logged inside the monitor and never surface here.
	h.Monitor.AfterReceipt(r.Context(), receipt)

	writeJSON(w, http.StatusCreated, AddFertilizerResponse{
		Message:    "Fertilizer stock added successfully!",
		Fertilizer: toFertilizerDTO(receipt),
	})
}

// GetSummary returns total quantity across all receipts and the count of
// distinct product types.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalQuantity, err := h.Aggregates.TotalQuantity(ctx)
	if err != nil {
		h.Log.Error("summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching inventory summary.", nil)
		return
	}

	totalTypes, err := h.Aggregates.DistinctProductCount(ctx)
	if err != nil {
		h.Log.Error("summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching inventory summary.", nil)
		return
	}

	quantity, _ := totalQuantity.Float64()
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalQuantity: quantity,
		TotalTypes:    totalTypes,
	})
}

// GetInventoryByType returns per-product quantity totals, largest first.
func (h *Handler) GetInventoryByType(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Aggregates.QuantityByProduct(r.Context())
	if err != nil {
		h.Log.Error("inventory by type failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching inventory by type.", nil)
		return
	}

	dtos := make([]InventoryByTypeDTO, len(totals))
	for i, t := range totals {
		quantity, _ := t.Quantity.Float64()
		dtos[i] = InventoryByTypeDTO{Name: t.Name, Quantity: quantity}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetStockReportByDate returns the receipts purchased on one UTC calendar
// day. A day with no receipts is 200 with an empty array, not 404.
func (h *Handler) GetStockReportByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Date query parameter is required (YYYY-MM-DD).", nil)
		return
	}

	receipts, err := h.Reports.ForDay(r.Context(), date)
	if err != nil {
		if ledger.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid date format provided. Use YYYY-MM-DD.", nil)
			return
		}
		h.Log.Error("stock report failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching stock report by date.", nil)
		return
	}

	writeJSON(w, http.StatusOK, toFertilizerDTOs(receipts))
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications returns alerts, newest first. ?unread=true filters to
// alerts not yet marked read.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.Sink.List(r.Context(), unreadOnly)
	if err != nil {
		h.Log.Error("list notifications failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while fetching notifications.", nil)
		return
	}

	writeJSON(w, http.StatusOK, toNotificationDTOs(notifications))
}

// MarkNotificationRead flips one notification's read flag. For a lowStock
// alert this closes the depletion episode: the next breach raises a fresh
// alert.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Sink.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found.", nil)
			return
		}
		h.Log.Error("mark notification read failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error while updating notification.", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read."})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, fields []string) {
	writeJSON(w, status, ErrorResponse{Message: message, Fields: fields})
}

// wireFields maps domain field names onto the JSON names clients sent.
func wireFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if f == "productName" {
			f = "fertilizerName"
		}
		out[i] = f
	}
	return out
}
