package calendar

import (
	"fmt"
	"time"
)

// dayFormat is the wire format for the optional date query parameter.
const dayFormat = "2006-01-02"

// Window bounds a calendar listing query. Both instants are inclusive,
// matching the Google API's timeMin/timeMax semantics.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the window covering exactly one calendar day in the
// day's own location: [00:00:00.000, 23:59:59.999].
func DayWindow(day time.Time) Window {
	year, month, d := day.Date()
	loc := day.Location()

	return Window{
		Start: time.Date(year, month, d, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// DefaultWindow returns the sliding window used when no date filter is
// supplied: one month back to six months ahead of now.
func DefaultWindow(now time.Time) Window {
	return Window{
		Start: now.AddDate(0, -1, 0),
		End:   now.AddDate(0, 6, 0),
	}
}

// ParseDay parses a "YYYY-MM-DD" date parameter in the local time zone.
func ParseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dayFormat, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, err)
	}
	return day, nil
}
