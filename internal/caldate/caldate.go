package caldate

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component. All streak and
// window arithmetic in the app operates on this type so that timezone
// artifacts in stored timestamps can never shift a day boundary.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const layout = "2006-01-02"

func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime truncates a timestamp to its calendar date in the timestamp's
// own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns the date at midnight UTC, the canonical form used for
// database binding.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(layout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// DaysSince returns the number of whole days from other to d. Positive when
// d is later.
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()) / (24 * time.Hour))
}

// StartOfWeek returns the most recent Monday on or before d.
func (d Date) StartOfWeek() Date {
	offset := int(d.Time().Weekday()) - 1
	if d.Time().Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDays(-offset)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
