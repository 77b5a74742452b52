package loans

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (the library thinks in days, never instants)
// =============================================================================

// Date is a calendar day. The wrapped time is always midnight UTC so two
// Dates compare equal exactly when they name the same day.
type Date struct {
	Time time.Time
}

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
)

// MaxDate is the last day the four-digit ISO form can represent.
var MaxDate = NewDate(9999, time.December, 31)

const secondsPerDay = 24 * 60 * 60

// NewDate builds a Date from its components. Out-of-range values roll over
// the same way time.Date does (March 32 is April 1).
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate reads the ISO form produced by String.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

// String returns the ISO form used for storage.
func (d Date) String() string { return d.Time.Format(isoLayout) }

// Display returns the day/month/year form shown to patrons.
func (d Date) Display() string { return d.Time.Format(displayLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween counts calendar days from one date to another. Negative when
// to is earlier than from. Works on Unix seconds, so any span is exact.
func DaysBetween(from, to Date) int {
	return int((to.Time.Unix() - from.Time.Unix()) / secondsPerDay)
}
