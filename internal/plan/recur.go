package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"focus-planner/internal/model"
)

// ErrNotRecurring marks a caller bug: asking for the next occurrence of a
// task that is not part of a recurring series.
var ErrNotRecurring = errors.New("task is not recurring")

// NextOccurrence returns the next date a series fires after date.
//
//   - daily: the next day.
//   - weekly: the earliest weekday in days strictly after date's weekday,
//     wrapping to next week; an empty set means date + 7 days.
//   - monthly: one calendar month later, with Go's AddDate overflow
//     semantics at month ends.
func NextOccurrence(date time.Time, interval model.RecurInterval, days model.WeekdaySet) time.Time {
	d := Normalize(date)
	switch interval {
	case model.RecurWeekly:
		if len(days) == 0 {
			return d.AddDate(0, 0, 7)
		}
		current := int(d.Weekday())
		ahead := 7
		for _, wd := range days {
			diff := (wd - current + 7) % 7
			if diff == 0 {
				diff = 7
			}
			if diff < ahead {
				ahead = diff
			}
		}
		return d.AddDate(0, 0, ahead)
	case model.RecurMonthly:
		return d.AddDate(0, 1, 0)
	default:
		// Daily, and the safe fallback for unknown intervals.
		return d.AddDate(0, 0, 1)
	}
}

// SeriesEnded reports whether a bounded series has generated all its
// occurrences. Reaching the end is a normal outcome, not an error.
func SeriesEnded(t model.Task) bool {
	return t.RecurringEndType == model.RecurEndAfter &&
		t.RecurringCurrentCount >= t.RecurringEndCount
}

// occurrenceKey is the structural de-duplication key: series id + day key.
// Never key by name alone; two unrelated series may share a name.
func occurrenceKey(seriesID string, day time.Time) string {
	return seriesID + "|" + DayKey(day)
}

// Expand materializes missing occurrences for every recurring series within
// horizonDays of now and returns the grown pool. Re-running on its own
// output is a no-op: duplication is checked structurally per series+day, so
// even interleaved passes cannot double-book a date.
func Expand(pool []model.Task, now time.Time, horizonDays int) []model.Task {
	if horizonDays <= 0 {
		return pool
	}
	horizonEnd := Normalize(now).AddDate(0, 0, horizonDays)

	occupied := make(map[string]struct{})
	frontier := make(map[string]model.Task)
	for i := range pool {
		t := pool[i]
		if !t.IsRecurring || t.DueDate == nil {
			continue
		}
		series := t.SeriesID()
		occupied[occurrenceKey(series, *t.DueDate)] = struct{}{}
		last, ok := frontier[series]
		if !ok || Normalize(*t.DueDate).After(Normalize(*last.DueDate)) {
			frontier[series] = t
		}
	}

	out := pool
	for series, last := range frontier {
		count := last.RecurringCurrentCount
		next := NextOccurrence(*last.DueDate, last.RecurringInterval, last.RecurringDays)
		for !next.After(horizonEnd) {
			if last.RecurringEndType == model.RecurEndAfter && count >= last.RecurringEndCount {
				break
			}
			key := occurrenceKey(series, next)
			if _, exists := occupied[key]; !exists {
				count++
				out = append(out, materialize(last, series, next, count, now))
				occupied[key] = struct{}{}
			}
			next = NextOccurrence(next, last.RecurringInterval, last.RecurringDays)
		}
	}
	return out
}

// GenerateNext builds the immediate next occurrence after an interactive
// completion. A nil task means the series has ended; an error means the
// caller passed a non-recurring task. The next occurrence never lands on
// the day the previous one was just completed.
func GenerateNext(t model.Task, now time.Time) (*model.Task, error) {
	if !t.IsRecurring {
		return nil, ErrNotRecurring
	}
	if SeriesEnded(t) {
		return nil, nil
	}

	base := Normalize(now)
	if t.DueDate != nil {
		base = Normalize(*t.DueDate)
	}
	next := NextOccurrence(base, t.RecurringInterval, t.RecurringDays)
	if SameDay(next, now) {
		next = NextOccurrence(next, t.RecurringInterval, t.RecurringDays)
	}

	occurrence := materialize(t, t.SeriesID(), next, t.RecurringCurrentCount+1, now)
	return &occurrence, nil
}

// materialize clones a template into a fresh occurrence dated to day.
func materialize(template model.Task, seriesID string, day time.Time, count int, now time.Time) model.Task {
	due := Normalize(day)
	start := due
	occurrence := template
	occurrence.ID = uuid.NewString()
	occurrence.RecurringSeriesID = seriesID
	occurrence.DueDate = &due
	occurrence.StartDate = &start
	occurrence.Completed = false
	occurrence.CompletedAt = nil
	occurrence.RecurringCurrentCount = count
	occurrence.CreatedAt = now
	occurrence.UpdatedAt = now
	return occurrence
}
