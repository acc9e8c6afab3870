package flock

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// legacyDayLayout is the format older clients stored prayer dates in.
const legacyDayLayout = "Mon Jan 02 2006"

// Day is a calendar date without a time component. The zero Day means
// "never" and sorts before every real day.
type Day struct {
	year  int
	month time.Month
	day   int
}

// NewDay builds a Day, normalizing out-of-range components the way
// time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	y, m, d := time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Date()
	return Day{year: y, month: m, day: d}
}

// DayOf returns the calendar day of t in loc. A nil loc means time.Local.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses "2006-01-02" (or the legacy "Mon Jan 02 2006"). The
// empty string yields the zero Day.
func ParseDay(v string) (Day, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Day{}, nil
	}
	t, err := time.Parse(dayLayout, v)
	if err != nil {
		legacy, legacyErr := time.Parse(legacyDayLayout, v)
		if legacyErr != nil {
			return Day{}, fmt.Errorf("%w: bad day %q", ErrInvalidInput, v)
		}
		t = legacy
	}
	return NewDay(t.Year(), t.Month(), t.Day()), nil
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// AddDays returns the day n days after d (before it when n is negative).
func (d Day) AddDays(n int) Day {
	return NewDay(d.year, d.month, d.day+n)
}

// DaysUntil returns the number of calendar days from d to other.
func (d Day) DaysUntil(other Day) int {
	return int(other.noon().Sub(d.noon()).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d.DaysUntil(other) > 0
}

// Bounds returns the first instant of d in loc and the first instant of the
// following day. A nil loc means time.Local.
func (d Day) Bounds(loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start = time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
	end = time.Date(d.year, d.month, d.day+1, 0, 0, 0, 0, loc)
	return start, end
}

func (d Day) noon() time.Time {
	return time.Date(d.year, d.month, d.day, 12, 0, 0, 0, time.UTC)
}

// String formats the day as "2006-01-02", or "" for the zero Day.
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	v, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
