package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date and normalizes it to midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return t.UTC(), nil
}

// ParseClock parses a time-of-day value ("15:04" or "15:04:05") into an
// offset from midnight. The offset form keeps interval arithmetic free
// of date components.
func ParseClock(raw string) (time.Duration, error) {
	var t time.Time
	var err error
	switch len(raw) {
	case len("15:04"):
		t, err = time.Parse("15:04", raw)
	case len("15:04:05"):
		t, err = time.Parse("15:04:05", raw)
	default:
		err = fmt.Errorf("bad length")
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", raw)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// FormatClock renders an offset from midnight as HH:MM:SS for storage
// in a TIME column and for API responses.
func FormatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// DayOf truncates an instant to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
