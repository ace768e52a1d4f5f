package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostock/fertistock/ledger"
)

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseDay_Valid(t *testing.T) {
	d, err := ledger.ParseDay("2024-03-05")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-05", d.String())
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), d.Time())
}

func TestParseDay_Invalid(t *testing.T) {
	// Not-a-date strings and impossible calendar dates must all be
	// rejected, never rolled over to a neighboring day.
	cases := []string{
		"",
		"not-a-date",
		"2024-13-40",
		"2024-02-30",
		"2024-3-5",
		"05-03-2024",
		"2024-03-05T00:00:00Z",
	}

	for _, input := range cases {
		_, err := ledger.ParseDay(input)
		assert.ErrorIs(t, err, ledger.ErrInvalidDate, "input %q", input)
	}
}

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestDayOf_TimezoneIndependent(t *testing.T) {
	// GIVEN: The same UTC instant expressed in different zones
	// THEN: DayOf lands on the same UTC calendar day

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	utc := time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC)
	inTokyo := utc.In(tokyo) // already March 6 on the wall clock there

	assert.True(t, ledger.DayOf(utc).Equal(ledger.DayOf(inTokyo)))
	assert.Equal(t, "2024-03-05", ledger.DayOf(inTokyo).String())
}

func TestDay_NextAndContains(t *testing.T) {
	d := ledger.NewDay(2024, time.February, 28) // leap year
	assert.Equal(t, "2024-02-29", d.Next().String())

	// Window is half-open: midnight of the day is in, next midnight is out.
	assert.True(t, d.Contains(d.Time()))
	assert.True(t, d.Contains(d.Time().Add(23*time.Hour+59*time.Minute)))
	assert.False(t, d.Contains(d.Next().Time()))
}

func TestDay_Ordering(t *testing.T) {
	earlier := ledger.NewDay(2024, time.March, 5)
	later := ledger.NewDay(2024, time.March, 6)

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.True(t, earlier.Equal(ledger.NewDay(2024, time.March, 5)))
}
