package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CivilDate is a calendar date without a time-of-day component, stored as
// midnight UTC. It marshals to and from "YYYY-MM-DD".
type CivilDate struct {
	time.Time
}

// NewCivilDate builds a CivilDate from year, month and day.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// CivilDateOf truncates t to its calendar date in UTC.
func CivilDateOf(t time.Time) CivilDate {
	year, month, day := t.UTC().Date()
	return NewCivilDate(year, month, day)
}

// ParseCivilDate parses a "YYYY-MM-DD" string.
func ParseCivilDate(value string) (CivilDate, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, err)
	}
	return CivilDate{t}, nil
}

// AddDays returns the date shifted by the given number of days.
func (d CivilDate) AddDays(days int) CivilDate {
	return CivilDate{d.Time.AddDate(0, 0, days)}
}

// DaysUntil returns the number of whole days from d to other.
func (d CivilDate) DaysUntil(other CivilDate) int {
	return int(other.Time.Sub(d.Time) / (24 * time.Hour))
}

func (d CivilDate) String() string {
	return d.Time.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date %s, want quoted YYYY-MM-DD", data)
	}
	parsed, err := ParseCivilDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
