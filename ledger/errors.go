/*
errors.go - Centralized error types for the stock ledger

PURPOSE:
  All ledger error types in one place. The API layer maps these onto HTTP
  status codes; nothing else in the system needs to know about HTTP.

ERROR CATEGORIES:
  1. Validation errors - malformed caller input, detected before any write
  2. Store errors      - persistence layer unreachable or rejecting writes

Notification-write failures are deliberately NOT here: they are best-effort
side effects owned by the notify package and never propagate to the caller
of a receipt write.
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not a real calendar
	// day in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid calendar date, want YYYY-MM-DD")

	// ErrStore is wrapped around persistence-layer failures. Maps to 500.
	ErrStore = errors.New("store failure")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports missing or malformed caller input. Fields holds
// the offending field names, in payload order. Maps to 400.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is caller-input related.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v) || errors.Is(err, ErrInvalidDate)
}
