// Package plan implements the daily scheduling engine: date normalization,
// task scoring, recurrence expansion, greedy capacity scheduling, the
// category admission gate and streak tracking. Everything here is pure:
// no clock reads, no I/O, no logging. The reference time is always a
// parameter, so a pass is a deterministic function of its inputs.
package plan

import (
	"math"
	"time"
)

// dayKeyLayout is the canonical calendar-day format used as the universal
// equality and grouping key. Two times are "the same day" iff their keys
// match; millisecond comparison of raw times is never valid here.
const dayKeyLayout = "2006-01-02"

// Normalize returns t at local midnight of the same calendar day. The zero
// time normalizes to the zero day rather than failing.
func Normalize(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DayKey returns the canonical YYYY-MM-DD key for t's calendar day.
func DayKey(t time.Time) string {
	return Normalize(t).Format(dayKeyLayout)
}

// ParseDayKey is the inverse of DayKey. The zero time and false are returned
// for malformed input so persisted garbage degrades instead of crashing.
func ParseDayKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(dayKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the number of whole calendar days from a to b,
// negative when b is earlier. Rounding absorbs DST shifts between the two
// local midnights.
func DaysBetween(a, b time.Time) int {
	diff := Normalize(b).Sub(Normalize(a))
	return int(math.Round(diff.Hours() / 24))
}

// SameDay reports whether a and b share a calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}
