/*
memory.go - In-memory storage for tests

PURPOSE:
  A slice-backed implementation of ledger.Store and notify.Sink. Unit tests
  for the ledger, aggregator, monitor and report service run against this
  store; the sqlite package has its own tests against ":memory:" databases.

  It enforces the same contracts as the SQLite store, including the
  unread-lowStock uniqueness the partial index provides there, so the
  monitor's race handling is exercised without a database.
*/
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
)

// Store implements ledger.Store and notify.Sink with in-process maps.
type Store struct {
	mu            sync.RWMutex
	receipts      []ledger.Receipt
	notifications []notify.Notification
	seq           int64
}

func New() *Store {
	return &Store{}
}

// =============================================================================
// RECEIPTS (ledger.Store)
// =============================================================================

func (s *Store) InsertReceipt(ctx context.Context, r ledger.Receipt) (ledger.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = s.newID("rcpt")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.receipts = append(s.receipts, r)
	return r, nil
}

func (s *Store) AllReceipts(ctx context.Context) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Receipt, len(s.receipts))
	copy(out, s.receipts)
	sortByPurchaseDate(out)
	return out, nil
}

func (s *Store) ReceiptsInWindow(ctx context.Context, start, end ledger.Day) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Receipt
	for _, r := range s.receipts {
		inWindow := !r.PurchaseDate.Before(start) && r.PurchaseDate.Before(end)
		if inWindow {
			out = append(out, r)
		}
	}
	sortByPurchaseDate(out)
	return out, nil
}

func sortByPurchaseDate(receipts []ledger.Receipt) {
	sort.SliceStable(receipts, func(i, j int) bool {
		if !receipts[i].PurchaseDate.Equal(receipts[j].PurchaseDate) {
			return receipts[i].PurchaseDate.Before(receipts[j].PurchaseDate)
		}
		return receipts[i].CreatedAt.Before(receipts[j].CreatedAt)
	})
}

// =============================================================================
// NOTIFICATIONS (notify.Sink)
// =============================================================================

// Create appends a notification, rejecting a second unread lowStock alert
// for the same product the way the SQLite partial unique index does.
func (s *Store) Create(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.Type == notify.TypeLowStock && !n.Read {
		for _, existing := range s.notifications {
			if existing.Type == notify.TypeLowStock && !existing.Read && existing.Product == n.Product {
				return notify.Notification{}, notify.ErrDuplicateUnreadAlert
			}
		}
	}

	if n.ID == "" {
		n.ID = s.newID("ntf")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifications = append(s.notifications, n)
	return n, nil
}

func (s *Store) UnreadExists(ctx context.Context, product string, typ notify.Type) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications {
		if n.Product == product && n.Type == typ && !n.Read {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) List(ctx context.Context, unreadOnly bool) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []notify.Notification
	// Newest first: walk the append-ordered slice backwards.
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return notify.ErrNotFound
}

func (s *Store) newID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}
