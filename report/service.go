// Package report answers day-scoped stock questions.
//
// A report day is the half-open window [UTC midnight of D, UTC midnight of
// D+1). Receipts are normalized to UTC midnight at write time, so a window
// comparison in UTC is exact: no receipt can straddle a boundary, and the
// answer does not depend on the timezone of the server or the caller.
package report

import (
	"context"

	"github.com/agrostock/fertistock/ledger"
)

// Service produces date-window stock reports.
type Service struct {
	ledger *ledger.Ledger
}

func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// ForDay returns the receipts purchased on the given YYYY-MM-DD day,
// ascending by purchase date. A day with no receipts yields an empty slice,
// not an error; a string that is not a real calendar date fails validation.
func (s *Service) ForDay(ctx context.Context, date string) ([]ledger.Receipt, error) {
	day, err := ledger.ParseDay(date)
	if err != nil {
		return nil, &ledger.ValidationError{
			Message: "invalid date, want YYYY-MM-DD",
			Fields:  []string{"date"},
		}
	}

	receipts, err := s.ledger.FindByDateWindow(ctx, day, day.Next())
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []ledger.Receipt{}
	}
	return receipts, nil
}
