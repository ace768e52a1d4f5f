package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar day pinned to midnight UTC
// =============================================================================
//
// Receipts carry calendar dates, not instants. A Day always normalizes to
// midnight UTC of the given calendar day, so "2024-03-05" maps to the same
// instant no matter where the request or the server lives. Both the write
// path and the report path go through this type; there is no second
// normalization site to drift from.

const dayLayout = "2006-01-02"

type Day struct {
	t time.Time
}

// NewDay builds a Day at midnight UTC.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a strict YYYY-MM-DD string. Invalid calendar dates
// (2024-02-30, 2024-13-40) are rejected, not rolled over.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
	}
	return Day{t: t}, nil
}

// DayOf converts an instant to the calendar day it falls on in UTC.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// Next returns the following calendar day. With UTC there is no DST, so the
// window [d, d.Next()) is always exactly 24 hours.
func (d Day) Next() Day { return Day{t: d.t.AddDate(0, 0, 1)} }

func (d Day) Time() time.Time   { return d.t }
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }
func (d Day) Equal(o Day) bool  { return d.t.Equal(o.t) }
func (d Day) IsZero() bool      { return d.t.IsZero() }
func (d Day) String() string    { return d.t.Format(dayLayout) }

// Contains reports whether instant t falls inside [d, d.Next()).
func (d Day) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(d.t) && u.Before(d.Next().t)
}
