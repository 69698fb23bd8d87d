package timeutil

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a calendar date (YYYY-MM-DD) at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a calendar date by n days.
func AddDays(dateISO string, n int) (string, error) {
	t, err := ParseDate(dateISO)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysInMonth expects a 1-based month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDates lists every date of a 1-based month in order.
func MonthDates(year, month int) []time.Time {
	n := DaysInMonth(year, month)
	dates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		dates[i] = time.Date(year, time.Month(month), i+1, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

// StartOfDay truncates t to midnight UTC of its UTC calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
