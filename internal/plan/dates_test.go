package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 30, 12, 0, time.Local)
}

func TestNormalize(t *testing.T) {
	got := Normalize(at(2025, time.March, 14, 17))
	assert.Equal(t, date(2025, time.March, 14), got)
	assert.Equal(t, 0, got.Hour())
}

func TestDayKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"midnight", date(2025, time.January, 2), "2025-01-02"},
		{"late evening same day", at(2025, time.January, 2, 23), "2025-01-02"},
		{"single digit month and day", at(2025, time.February, 3, 9), "2025-02-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayKey(tt.in))
		})
	}
}

func TestParseDayKey(t *testing.T) {
	parsed, ok := ParseDayKey("2025-06-15")
	require.True(t, ok)
	assert.Equal(t, "2025-06-15", DayKey(parsed))

	_, ok = ParseDayKey("not-a-date")
	assert.False(t, ok)

	_, ok = ParseDayKey("")
	assert.False(t, ok)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2025, time.January, 4)))  // Saturday
	assert.True(t, IsWeekend(date(2025, time.January, 5)))  // Sunday
	assert.False(t, IsWeekend(date(2025, time.January, 6))) // Monday
	assert.False(t, IsWeekend(date(2025, time.January, 3))) // Friday
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day different hours", at(2025, time.May, 1, 8), at(2025, time.May, 1, 22), 0},
		{"next day", date(2025, time.May, 1), date(2025, time.May, 2), 1},
		{"backwards", date(2025, time.May, 10), date(2025, time.May, 1), -9},
		{"across month boundary", date(2025, time.January, 30), date(2025, time.February, 2), 3},
		{"across year boundary", date(2024, time.December, 31), date(2025, time.January, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(at(2025, time.May, 1, 1), at(2025, time.May, 1, 23)))
	assert.False(t, SameDay(at(2025, time.May, 1, 23), at(2025, time.May, 2, 0)))
}
