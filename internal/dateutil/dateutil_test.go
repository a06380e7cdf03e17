package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-30")
	require.NoError(t, err)
	assert.Equal(t, Date{2025, time.March, 30}, d)
	assert.Equal(t, "2025-03-30", d.String())

	_, err = ParseDate("30/03/2025")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateRoundTripDoesNotShift(t *testing.T) {
	// Reformatting a parsed date must never move it across a day boundary,
	// regardless of the process timezone.
	for _, s := range []string{"2025-01-01", "2025-12-31", "2024-02-29", "2025-06-01"} {
		d, err := ParseDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, d.String())
	}
}

func TestAddDays(t *testing.T) {
	d := NewDate(2025, time.March, 30)
	assert.Equal(t, "2025-04-02", d.AddDays(3).String())
	assert.Equal(t, "2025-03-27", d.AddDays(-3).String())

	// Leap February
	assert.Equal(t, "2024-02-29", NewDate(2024, time.February, 28).AddDays(1).String())
	assert.Equal(t, "2025-03-01", NewDate(2025, time.February, 28).AddDays(1).String())
}

func TestCompareAndRange(t *testing.T) {
	a := NewDate(2025, time.March, 30)
	b := NewDate(2025, time.April, 2)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))

	assert.True(t, NewDate(2025, time.March, 31).InRange(a, b))
	assert.True(t, a.InRange(a, b))
	assert.True(t, b.InRange(a, b))
	assert.False(t, NewDate(2025, time.April, 3).InRange(a, b))

	// Zero end collapses to a single-day range.
	assert.True(t, a.InRange(a, Date{}))
	assert.False(t, b.InRange(a, Date{}))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, time.January))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 30, DaysInMonth(2025, time.April))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))
}

func TestDaysBetween(t *testing.T) {
	a := NewDate(2025, time.March, 30)
	assert.Equal(t, 1, DaysBetween(a, a))
	assert.Equal(t, 4, DaysBetween(a, NewDate(2025, time.April, 2)))
	assert.Equal(t, 4, DaysBetween(NewDate(2025, time.April, 2), a))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, tod.Minutes())
	assert.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("18:00:00")
	require.NoError(t, err)
	assert.Equal(t, "18:00", tod.String())

	// Unpadded hours parse numerically; "9:00" must not sort after "10:00".
	nine, err := ParseTimeOfDay("9:00")
	require.NoError(t, err)
	ten, err := ParseTimeOfDay("10:00")
	require.NoError(t, err)
	assert.Less(t, nine, ten)

	for _, bad := range []string{"", "24:00", "12:60", "meio-dia"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestOverlaps(t *testing.T) {
	parse := func(s string) TimeOfDay {
		tod, err := ParseTimeOfDay(s)
		require.NoError(t, err)
		return tod
	}

	cases := []struct {
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"09:00", "10:00", "10:00", "11:00", false}, // touching boundaries
		{"09:00", "11:00", "10:00", "10:30", true},  // containment
		{"09:00", "10:00", "09:30", "10:30", true},  // partial
		{"09:00", "10:00", "11:00", "12:00", false}, // disjoint
		{"09:00", "10:00", "09:00", "10:00", true},  // identical
	}
	for _, tc := range cases {
		got := Overlaps(parse(tc.aStart), parse(tc.aEnd), parse(tc.bStart), parse(tc.bEnd))
		assert.Equal(t, tc.want, got, "%s-%s vs %s-%s", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)

		// Symmetry
		swapped := Overlaps(parse(tc.bStart), parse(tc.bEnd), parse(tc.aStart), parse(tc.aEnd))
		assert.Equal(t, got, swapped)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Janeiro", MonthName(time.January))
	assert.Equal(t, "Dezembro", MonthName(time.December))
	assert.Equal(t, "Domingo", WeekdayName(time.Sunday))
	assert.Equal(t, "Sábado", WeekdayName(time.Saturday))
	assert.Equal(t, "30/03/2025", FormatBR(NewDate(2025, time.March, 30)))
}
