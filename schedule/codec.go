package schedule

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/Dosada05/sports-center/apperr"
)

// MarshalText encodes the clock as "HH:MM".
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the same inputs as ParseClock.
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan reads a PostgreSQL TIME column.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return c.UnmarshalText(v)
	case string:
		return c.UnmarshalText([]byte(v))
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("schedule: cannot scan %T into Clock", src)
	}
}

// Value writes the clock as a TIME literal.
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Date is a calendar day without a time component, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// DateOf returns the calendar day t falls on in its own location. Dates are
// kept at UTC midnight so they compare equal regardless of origin.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths moves the date by n calendar months, normalizing overflowing
// days the way time.AddDate does.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

// At returns the instant clock c happens on this date in loc.
func (d Date) At(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), int(c)/60, int(c)%60, 0, 0, loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON overrides the promoted time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return apperr.New(apperr.ErrFormat, msgBadDate)
	}
	return d.UnmarshalText([]byte(s[1 : len(s)-1]))
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := ParseDate(string(b), time.UTC)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// Scan reads a PostgreSQL DATE column. lib/pq hands dates over as time.Time
// at UTC midnight.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("schedule: cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}
