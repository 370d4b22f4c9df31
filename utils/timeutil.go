package utils

import "time"

// TruncateToDay drops the time-of-day part, keeping the location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek truncates to the preceding Monday, matching Postgres
// date_trunc('week', ...).
func StartOfWeek(t time.Time) time.Time {
	d := TruncateToDay(t)
	return d.AddDate(0, 0, -WeekdayIndex(d))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// WeekdayIndex maps Monday..Sunday to 0..6 (ISO ordering, matching
// Postgres extract(isodow) - 1).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

var weekdayLabels = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func WeekdayLabel(index int) string {
	if index < 0 || index > 6 {
		return ""
	}
	return weekdayLabels[index]
}
