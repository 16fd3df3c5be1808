package plan

import (
	"strings"
	"time"

	"focus-planner/internal/model"
)

// isWorkCategory marks the category whose not-yet-due tasks never land on a
// weekend. Matched by name, the same way hour limits are keyed.
func isWorkCategory(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "work", "работа":
		return true
	}
	return false
}

// Assign runs one greedy scheduling pass and returns a new pool in which
// every pending task carries its assigned StartDate (nil when the pass could
// not place it). Completed tasks are never moved; their day still consumes
// capacity. The pass is a pure function of (pool, limits, now), so duplicate
// concurrent passes are safe and last-write-wins at the store.
//
// Order of operations per the greedy heuristic: completed tasks pin
// capacity, recurring occurrences take their structural day unconditionally,
// then the highest-scored one-offs fill what is left day by day. A task due
// on or before the day being filled is admitted even over its category hour
// budget: a hard due date beats a soft hour cap. There is no backtracking
// and no lookahead, which can starve low-score tasks; that trade-off is
// intentional.
func Assign(pool []model.Task, limits Limits, now time.Time, horizonDays int) []model.Task {
	out := make([]model.Task, len(pool))
	copy(out, pool)

	today := Normalize(now)
	if horizonDays <= 0 {
		horizonDays = 1
	}
	horizonEnd := today.AddDate(0, 0, horizonDays)

	maxPerDay := limits.MaxTasksPerDay
	if maxPerDay <= 0 {
		maxPerDay = DefaultLimits().MaxTasksPerDay
	}

	countByDay := make(map[string]int)
	hoursByDay := make(map[string]map[string]float64)
	completedNames := make(map[string]struct{})

	addHours := func(day, category string, hours float64) {
		if hoursByDay[day] == nil {
			hoursByDay[day] = make(map[string]float64)
		}
		hoursByDay[day][category] += hours
	}

	var recurring, pending []int
	for i := range out {
		t := &out[i]
		switch {
		case t.Completed:
			day := completedDay(t)
			if day == "" {
				continue
			}
			countByDay[day]++
			addHours(day, t.CategoryName, t.EstimatedHours)
			completedNames[t.Name+"|"+day] = struct{}{}
		case t.IsRecurring:
			recurring = append(recurring, i)
		default:
			pending = append(pending, i)
		}
	}

	// Recurring occurrences always get their structural slot, before any
	// greedy fill. De-duplicated by name+day against completed occurrences
	// and against each other.
	placedNames := make(map[string]struct{})
	for _, i := range recurring {
		t := &out[i]
		if t.DueDate == nil {
			t.StartDate = nil
			continue
		}
		day := Normalize(*t.DueDate)
		key := t.Name + "|" + DayKey(day)
		if _, done := completedNames[key]; done {
			t.StartDate = nil
			continue
		}
		if _, dup := placedNames[key]; dup {
			t.StartDate = nil
			continue
		}
		placedNames[key] = struct{}{}
		start := day
		due := day
		t.StartDate = &start
		t.DueDate = &due
		countByDay[DayKey(day)]++
		addHours(DayKey(day), t.CategoryName, t.EstimatedHours)
	}

	// One-offs: clear previous assignments, then order by score.
	for _, i := range pending {
		out[i].StartDate = nil
	}
	ranked := make([]model.Task, 0, len(pending))
	for _, i := range pending {
		ranked = append(ranked, out[i])
	}
	SortByScore(ranked, now)
	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}
	unassigned := make([]int, 0, len(ranked))
	for _, t := range ranked {
		unassigned = append(unassigned, index[t.ID])
	}

	for day := today; len(unassigned) > 0 && !day.After(horizonEnd); day = day.AddDate(0, 0, 1) {
		dayKey := DayKey(day)
		capacity := maxPerDay - countByDay[dayKey]
		if capacity <= 0 {
			continue
		}
		weekend := IsWeekend(day)

		// Tasks already due get seen before higher-scored future tasks,
		// keeping score order within each half.
		ordered := make([]int, 0, len(unassigned))
		later := make([]int, 0, len(unassigned))
		for _, i := range unassigned {
			if dueOnOrBefore(&out[i], day) {
				ordered = append(ordered, i)
			} else {
				later = append(later, i)
			}
		}
		ordered = append(ordered, later...)

		admitted := make(map[string]struct{})
		for _, i := range ordered {
			if capacity <= 0 {
				break
			}
			t := &out[i]
			dueNow := dueOnOrBefore(t, day)
			if weekend && !dueNow && isWorkCategory(t.CategoryName) {
				continue
			}
			used := hoursByDay[dayKey][t.CategoryName]
			if !dueNow && used+t.EstimatedHours > limits.HourCap(t.CategoryName, weekend) {
				continue
			}
			start := day
			t.StartDate = &start
			countByDay[dayKey]++
			addHours(dayKey, t.CategoryName, t.EstimatedHours)
			capacity--
			admitted[t.ID] = struct{}{}
		}

		if len(admitted) > 0 {
			kept := unassigned[:0]
			for _, i := range unassigned {
				if _, ok := admitted[out[i].ID]; !ok {
					kept = append(kept, i)
				}
			}
			unassigned = kept
		} else if !weekend {
			// Zero admissions on an unconstrained weekday means no remaining
			// task can ever be placed: stop instead of spinning. The
			// remainder stays unassigned for this pass.
			break
		}
	}

	return out
}

// completedDay returns the day a completed task occupies: its fixed
// StartDate, falling back to DueDate then CompletedAt for legacy rows.
func completedDay(t *model.Task) string {
	switch {
	case t.StartDate != nil:
		return DayKey(*t.StartDate)
	case t.DueDate != nil:
		return DayKey(*t.DueDate)
	case t.CompletedAt != nil:
		return DayKey(*t.CompletedAt)
	}
	return ""
}

func dueOnOrBefore(t *model.Task, day time.Time) bool {
	return t.DueDate != nil && !Normalize(*t.DueDate).After(Normalize(day))
}
