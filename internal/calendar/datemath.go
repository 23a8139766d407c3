// Package calendar turns dated documents into a renderable month view:
// pure date arithmetic, a Sunday-first week grid, and per-week segment
// planning for multi-day ranges.
package calendar

import "time"

// dateKeyLayout is the canonical YYYY-MM-DD form. Keys compare
// correctly as plain strings.
const dateKeyLayout = "2006-01-02"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// FirstWeekday returns the weekday of the first day of the month,
// Sunday=0 through Saturday=6.
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Weekday()
}

// DateKey maps a millisecond timestamp to its local calendar day. All
// timestamps within one local day share a key.
func DateKey(ms int64) string {
	return time.UnixMilli(ms).Local().Format(dateKeyLayout)
}

// KeyOf formats a (year, month, day) triple as a date key.
func KeyOf(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local).Format(dateKeyLayout)
}
