/*
sqlite.go - SQLite persistence for receipts and notifications

INTERFACES IMPLEMENTED:
  ledger.Store: receipt persistence (insert / list / date-window find)
  notify.Sink:  notification log (create / unread check / list / mark read)

APPEND-MOSTLY ENFORCEMENT:
  No UPDATE or DELETE ever touches the receipts table. Notifications see a
  single mutation: flipping the read flag.

STORAGE FORMATS:
  Dates are RFC3339 UTC strings, already pinned to midnight by the ledger,
  so a day window is a plain lexicographic string range. Quantities and
  prices are exact decimal text, summed in Go, never coerced to float by
  the storage engine.

CRITICAL INDEX:
  idx_notifications_unread_low_stock is a partial unique index on
  (product) WHERE type='lowStock' AND read=0. It upgrades the monitor's
  check-then-insert dedup from best-effort to guaranteed: when two writers
  race past the existence check, the second insert fails the constraint and
  is mapped to notify.ErrDuplicateUnreadAlert.

CONCURRENCY:
  WAL mode so readers don't block the writer, with a sync.RWMutex
  serializing access on top.

USAGE:
  store, err := sqlite.New("./data/fertistock.db")   // ":memory:" for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/notify"
)

// Store implements ledger.Store and notify.Sink on a single SQLite database.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	seq atomic.Int64
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: ":memory:" databases are per-connection, and the
	// RWMutex already serializes access.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Stock receipts (append-mostly ledger)
	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		product_name TEXT NOT NULL,
		quantity_received TEXT NOT NULL,
		purchase_date TEXT NOT NULL,
		expiry_date TEXT NOT NULL,
		invoice_number TEXT NOT NULL,
		price TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Date-window reports
	CREATE INDEX IF NOT EXISTS idx_receipts_purchase_date
		ON receipts(purchase_date);

	-- Per-product recompute after each write
	CREATE INDEX IF NOT EXISTS idx_receipts_product
		ON receipts(product_name);

	-- Alert log; the read flag is the only column ever updated
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		product TEXT NOT NULL,
		details TEXT,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one UNREAD lowStock alert per product. Concurrent
	-- writers that race past the existence check hit this constraint
	-- instead of inserting a duplicate.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_unread_low_stock
		ON notifications(product)
		WHERE type = 'lowStock' AND read = 0;

	CREATE INDEX IF NOT EXISTS idx_notifications_unread
		ON notifications(read, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECEIPTS (ledger.Store)
// =============================================================================

// InsertReceipt persists a receipt, filling in the generated id and
// creation time when absent.
func (s *Store) InsertReceipt(ctx context.Context, r ledger.Receipt) (ledger.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = s.newID("rcpt")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO receipts
		(id, product_name, quantity_received, purchase_date, expiry_date, invoice_number, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.ProductName,
		r.QuantityReceived.String(),
		r.PurchaseDate.Time().Format(time.RFC3339),
		r.ExpiryDate.Time().Format(time.RFC3339),
		r.InvoiceNumber,
		r.Price.String(),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: insert receipt: %v", ledger.ErrStore, err)
	}
	return r, nil
}

// AllReceipts returns every receipt, ascending by purchase date.
func (s *Store) AllReceipts(ctx context.Context) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, product_name, quantity_received, purchase_date, expiry_date, invoice_number, price, created_at
		FROM receipts
		ORDER BY purchase_date ASC, created_at ASC
	`
	return s.queryReceipts(ctx, query)
}

// ReceiptsInWindow returns receipts with purchase date in [start, end),
// ascending. RFC3339 UTC strings compare lexicographically, so the window
// is a plain string range.
func (s *Store) ReceiptsInWindow(ctx context.Context, start, end ledger.Day) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, product_name, quantity_received, purchase_date, expiry_date, invoice_number, price, created_at
		FROM receipts
		WHERE purchase_date >= ? AND purchase_date < ?
		ORDER BY purchase_date ASC, created_at ASC
	`
	return s.queryReceipts(ctx, query,
		start.Time().Format(time.RFC3339), end.Time().Format(time.RFC3339))
}

func (s *Store) queryReceipts(ctx context.Context, query string, args ...any) ([]ledger.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query receipts: %v", ledger.ErrStore, err)
	}
	defer rows.Close()

	var receipts []ledger.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query receipts: %v", ledger.ErrStore, err)
	}
	return receipts, nil
}

func scanReceipt(rows *sql.Rows) (ledger.Receipt, error) {
	var (
		r           ledger.Receipt
		quantityStr string
		purchaseStr string
		expiryStr   string
		priceStr    string
		createdStr  string
	)

	err := rows.Scan(&r.ID, &r.ProductName, &quantityStr, &purchaseStr, &expiryStr,
		&r.InvoiceNumber, &priceStr, &createdStr)
	if err != nil {
		return r, fmt.Errorf("%w: scan receipt: %v", ledger.ErrStore, err)
	}

	r.QuantityReceived, err = decimal.NewFromString(quantityStr)
	if err != nil {
		return r, fmt.Errorf("%w: corrupt quantity %q: %v", ledger.ErrStore, quantityStr, err)
	}
	r.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return r, fmt.Errorf("%w: corrupt price %q: %v", ledger.ErrStore, priceStr, err)
	}

	purchase, err := time.Parse(time.RFC3339, purchaseStr)
	if err != nil {
		return r, fmt.Errorf("%w: corrupt purchase date %q: %v", ledger.ErrStore, purchaseStr, err)
	}
	r.PurchaseDate = ledger.DayOf(purchase)

	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return r, fmt.Errorf("%w: corrupt expiry date %q: %v", ledger.ErrStore, expiryStr, err)
	}
	r.ExpiryDate = ledger.DayOf(expiry)

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return r, nil
}

// =============================================================================
// NOTIFICATIONS (notify.Sink)
// =============================================================================

// Create appends a notification. An unread lowStock duplicate for the same
// product violates the partial unique index and comes back as
// notify.ErrDuplicateUnreadAlert.
func (s *Store) Create(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.newID("ntf")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO notifications (id, message, type, product, details, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Message, string(n.Type), n.Product, n.Details,
		boolToInt(n.Read),
		n.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return notify.Notification{}, notify.ErrDuplicateUnreadAlert
		}
		return notify.Notification{}, fmt.Errorf("%w: insert notification: %v", ledger.ErrStore, err)
	}
	return n, nil
}

// UnreadExists reports whether an unread notification of the given type
// exists for the product.
func (s *Store) UnreadExists(ctx context.Context, product string, typ notify.Type) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE product = ? AND type = ? AND read = 0",
		product, string(typ),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: unread check: %v", ledger.ErrStore, err)
	}
	return count > 0, nil
}

// List returns notifications, newest first.
func (s *Store) List(ctx context.Context, unreadOnly bool) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, message, type, product, details, read, created_at
		FROM notifications
	`
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query notifications: %v", ledger.ErrStore, err)
	}
	defer rows.Close()

	var notifications []notify.Notification
	for rows.Next() {
		var (
			n          notify.Notification
			typ        string
			details    sql.NullString
			read       int
			createdStr string
		)
		if err := rows.Scan(&n.ID, &n.Message, &typ, &n.Product, &details, &read, &createdStr); err != nil {
			return nil, fmt.Errorf("%w: scan notification: %v", ledger.ErrStore, err)
		}
		n.Type = notify.Type(typ)
		n.Details = details.String
		n.Read = read != 0
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query notifications: %v", ledger.ErrStore, err)
	}
	return notifications, nil
}

// MarkRead flips the read flag for one notification.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: mark read: %v", ledger.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: mark read: %v", ledger.ErrStore, err)
	}
	if affected == 0 {
		return notify.ErrNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), s.seq.Add(1))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
