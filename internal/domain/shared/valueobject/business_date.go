package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date layout used on the wire and in storage
const DateLayout = "2006-01-02"

// BusinessDate is a calendar day with no time-of-day component.
// The zero value means "no date".
type BusinessDate struct {
	t time.Time
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) BusinessDate {
	if t.IsZero() {
		return BusinessDate{}
	}
	y, m, d := t.Date()
	return NewBusinessDate(y, m, d)
}

// NewBusinessDate builds a date from its parts. Out-of-range parts are
// normalised the way time.Date does.
func NewBusinessDate(year int, month time.Month, day int) BusinessDate {
	return BusinessDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseBusinessDate parses a YYYY-MM-DD string
func ParseBusinessDate(s string) (BusinessDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return BusinessDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return BusinessDate{t: t}, nil
}

// MustParseBusinessDate parses a date and panics on failure
func MustParseBusinessDate(s string) BusinessDate {
	d, err := ParseBusinessDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the date is unset
func (d BusinessDate) IsZero() bool { return d.t.IsZero() }

// AddDays returns the date n days later (earlier for negative n)
func (d BusinessDate) AddDays(n int) BusinessDate {
	return BusinessDate{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other
func (d BusinessDate) Before(other BusinessDate) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other
func (d BusinessDate) After(other BusinessDate) bool { return d.t.After(other.t) }

// Equal reports whether both dates are the same day
func (d BusinessDate) Equal(other BusinessDate) bool { return d.t.Equal(other.t) }

// DaysUntil returns the number of whole days from d to other.
// It is negative when other is before d.
func (d BusinessDate) DaysUntil(other BusinessDate) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// In returns midnight of the date in loc
func (d BusinessDate) In(loc *time.Location) time.Time {
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// String returns the YYYY-MM-DD form, or "" for the zero date
func (d BusinessDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d BusinessDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *BusinessDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = BusinessDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBusinessDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d BusinessDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *BusinessDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = BusinessDate{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BusinessDate", src)
	}
}

func (d *BusinessDate) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseBusinessDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
