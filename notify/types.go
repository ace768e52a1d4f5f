package notify

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// NOTIFICATION - One system-raised alert
// =============================================================================

// Type tags a notification. The vocabulary is fixed and small.
type Type string

const (
	TypeStockAdded Type = "stockAdded"
	TypeLowStock   Type = "lowStock"
)

// Notification is one row in the alert log. Message is fully rendered at
// creation time, not a template. The core never mutates a notification
// beyond the read flag, and never deletes one.
type Notification struct {
	ID        string
	Message   string
	Type      Type
	Product   string
	Details   string
	Read      bool
	CreatedAt time.Time
}

var (
	// ErrDuplicateUnreadAlert is returned by Create when an unread lowStock
	// notification already exists for the product. The storage layer
	// enforces this with a partial unique index, so the invariant holds
	// even when two writers race past the existence check.
	ErrDuplicateUnreadAlert = errors.New("unread low-stock alert already exists for product")

	// ErrNotFound is returned by MarkRead for an unknown notification id.
	ErrNotFound = errors.New("notification not found")
)

// Sink is the persistence contract for notifications.
type Sink interface {
	// Create appends a notification and returns it with its generated id.
	Create(ctx context.Context, n Notification) (Notification, error)

	// UnreadExists reports whether an unread notification of the given
	// type exists for the product.
	UnreadExists(ctx context.Context, product string, typ Type) (bool, error)

	// List returns notifications, newest first. With unreadOnly set, only
	// rows whose read flag is still false.
	List(ctx context.Context, unreadOnly bool) ([]Notification, error)

	// MarkRead flips the read flag. The only mutation notifications ever see.
	MarkRead(ctx context.Context, id string) error
}

// =============================================================================
// ALERT STATE - Derived, never stored
// =============================================================================

// AlertState is the per-product low-stock state machine. It is derived from
// "does an unread lowStock notification exist" on every inspection; storing
// it separately would create a second source of truth to drift.
type AlertState int

const (
	StateNormal AlertState = iota
	StateAlerted
)

func (s AlertState) String() string {
	if s == StateAlerted {
		return "alerted"
	}
	return "normal"
}
