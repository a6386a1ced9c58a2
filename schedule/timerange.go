// Package schedule models booking intervals as minutes of the day.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/sports-center/apperr"
)

const (
	// MinutesPerDay bounds a Clock value.
	MinutesPerDay = 24 * 60

	// DateLayout is the calendar date format used on the wire and in SQL.
	DateLayout = "2006-01-02"
)

const msgBadDate = "Formato de fecha inválido, se espera AAAA-MM-DD"

var errBadClock = apperr.New(apperr.ErrFormat, "Formato de hora inválido, se espera HH:MM")

// Clock is a wall-clock time of day expressed in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h). "HH:MM:SS" with zero seconds is accepted
// as well since that is how TIME columns come back from PostgreSQL.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 3 {
		if parts[2] != "00" {
			return 0, errBadClock
		}
		parts = parts[:2]
	}
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, errBadClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errBadClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errBadClock
	}
	return Clock(h*60 + m), nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid clock literal %q", s))
	}
	return c
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Valid reports whether c is inside a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// On returns the instant at which this clock time happens on the given date,
// in the date's location.
func (c Clock) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, int(c)/60, int(c)%60, 0, 0, date.Location())
}

// Overlaps is the single overlap predicate for half-open intervals
// [aStart, aEnd) and [bStart, bEnd). Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && aEnd > bStart
}

// Range is a half-open booking interval [Start, End).
type Range struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewRange builds a range and rejects empty or inverted intervals.
func NewRange(start, end Clock) (Range, error) {
	if !start.Valid() || !end.Valid() {
		return Range{}, errBadClock
	}
	if end <= start {
		return Range{}, apperr.New(apperr.ErrInvalidRange, "La hora de fin debe ser mayor que la de inicio")
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange parses two "HH:MM" strings into a Range.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Minutes is the length of the range.
func (r Range) Minutes() int {
	return int(r.End - r.Start)
}

// Duration is the length of the range as a time.Duration.
func (r Range) Duration() time.Duration {
	return time.Duration(r.Minutes()) * time.Minute
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ParseDate parses a "YYYY-MM-DD" calendar date in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, apperr.New(apperr.ErrFormat, msgBadDate)
	}
	return d, nil
}

// Day truncates t to midnight of its calendar date, keeping the location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
