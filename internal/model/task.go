package model

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Importance is one axis of the Eisenhower matrix.
type Importance string

const (
	Important    Importance = "important"
	NotImportant Importance = "not-important"
)

// Urgency is the other axis.
type Urgency string

const (
	Urgent    Urgency = "urgent"
	NotUrgent Urgency = "not-urgent"
)

// RecurInterval defines how often a recurring series repeats.
type RecurInterval string

const (
	RecurDaily   RecurInterval = "daily"
	RecurWeekly  RecurInterval = "weekly"
	RecurMonthly RecurInterval = "monthly"
)

// RecurEndType defines when a recurring series stops generating occurrences.
type RecurEndType string

const (
	RecurEndNever RecurEndType = "never"
	RecurEndAfter RecurEndType = "after"
)

// WeekdaySet holds weekday indices (0=Sunday … 6=Saturday) for weekly
// recurrence. Stored in SQLite as a comma-separated string.
type WeekdaySet []int

// Value implements driver.Valuer.
func (w WeekdaySet) Value() (driver.Value, error) {
	if len(w) == 0 {
		return "", nil
	}
	sorted := append([]int(nil), w...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for _, d := range sorted {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner. Malformed entries are dropped rather than
// failing the whole row load.
func (w *WeekdaySet) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported weekday set type %T", src)
	}
	if raw == "" {
		*w = nil
		return nil
	}
	var days []int
	for _, part := range strings.Split(raw, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 6 {
			continue
		}
		days = append(days, d)
	}
	*w = days
	return nil
}

// Contains reports whether the set includes the given weekday.
func (w WeekdaySet) Contains(day time.Weekday) bool {
	for _, d := range w {
		if d == int(day) {
			return true
		}
	}
	return false
}

// Task represents a single item in the planner: either a one-off task or one
// materialized occurrence of a recurring series.
type Task struct {
	ID     string `gorm:"primaryKey"`
	UserID uint   `gorm:"index"`

	// RecurringSeriesID links every occurrence generated from the same
	// recurring template. Empty for one-off tasks and for legacy rows that
	// predate series tracking; use SeriesID() instead of reading it directly.
	RecurringSeriesID string `gorm:"index"`

	Name string

	// Category is embedded by value at assignment time, so it may drift from
	// the live category definition. Hour limits key by name, not id.
	CategoryID   string
	CategoryName string

	Importance Importance
	Urgency    Urgency

	// DueDate is the user's stated deadline. For recurring occurrences the
	// scheduler keeps it in sync with the day the occurrence lands on.
	DueDate *time.Time

	// StartDate is the scheduler's output: the day the task appears on.
	// Fixed at completion time for completed tasks.
	StartDate *time.Time

	EstimatedHours float64

	Completed   bool `gorm:"default:false"`
	CompletedAt *time.Time

	IsRecurring           bool `gorm:"default:false"`
	RecurringInterval     RecurInterval
	RecurringDays         WeekdaySet `gorm:"type:text"`
	RecurringEndType      RecurEndType
	RecurringEndCount     int
	RecurringCurrentCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeriesID returns the logical series identity of the task. Legacy rows
// without an explicit series id fall back to their own id.
func (t *Task) SeriesID() string {
	if t.RecurringSeriesID != "" {
		return t.RecurringSeriesID
	}
	return t.ID
}
