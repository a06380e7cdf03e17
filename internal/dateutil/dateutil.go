// Package dateutil provides the pure calendar-date and time-of-day helpers
// shared by the agenda grid builder and the conflict detector.
//
// All arithmetic is local-calendar-date based: a Date never passes through a
// UTC conversion, so parsing and reformatting a date string cannot shift it
// across a day boundary.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// Date is a civil calendar date with no time-of-day or location attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the given components into a Date. Out-of-range values
// roll over the way time.Date rolls them over (day 0 is the last day of the
// previous month).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf strips the time-of-day and location from t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO date string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// MarshalJSON encodes the date as an ISO string. The zero Date encodes as
// null so optional end dates round-trip.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Weekday returns the day of the week, with time.Sunday == 0.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// InRange reports whether d falls within the inclusive range [start, end].
// A zero end collapses the range to the single day start.
func (d Date) InRange(start, end Date) bool {
	if end.IsZero() {
		end = start
	}
	return !d.Before(start) && !d.After(end)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return NewDate(year, month+1, 0).Day
}

// DaysBetween returns the inclusive day count of the span from start to end,
// e.g. DaysBetween(d, d) == 1. The order of the arguments does not matter.
func DaysBetween(start, end Date) int {
	a := time.Date(start.Year, start.Month, start.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year, end.Month, end.Day, 0, 0, 0, 0, time.UTC)
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(diff/(24*time.Hour)) + 1
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// TimeOfDay is a clock time expressed as minutes since midnight.
// Representing it as an integer avoids the lexicographic pitfalls of
// comparing "9:00" against "10:00" as strings.
type TimeOfDay int

// ParseTimeOfDay parses HH:MM or HH:MM:SS (seconds are truncated).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String formats the time as zero-padded HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes returns the raw minutes-since-midnight value.
func (t TimeOfDay) Minutes() int { return int(t) }

// MarshalJSON encodes the time as an HH:MM string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	parsed, err := ParseTimeOfDay(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Overlaps applies the half-open interval test: [aStart, aEnd) overlaps
// [bStart, bEnd) unless one ends at or before the other starts. Touching
// boundaries (10:00-11:00 vs 11:00-12:00) do not overlap.
//
// Both intervals are assumed to lie within a single day with start < end;
// cross-midnight intervals are not supported and must be represented as
// multi-day records instead.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{
	"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado",
}

// MonthName returns the Portuguese name of the month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayName returns the Portuguese name of the weekday.
func WeekdayName(w time.Weekday) string {
	return weekdayNames[w]
}

// FormatBR formats a date as DD/MM/YYYY for user-facing messages.
func FormatBR(d Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}
