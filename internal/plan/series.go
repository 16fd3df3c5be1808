package plan

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"focus-planner/internal/model"
)

// ReconcileSeries assigns a RecurringSeriesID to every recurring task that
// predates series tracking, and must run before Expand.
//
// Legacy rows are grouped by a structural fingerprint (name + category id +
// interval + sorted weekday set) and then greedily threaded into "lanes" in
// due-date order: a row joins an existing lane only when its due date is the
// valid next occurrence of that lane's last row under the recurrence rule.
// Anything else opens a new lane. Two same-named but temporally unrelated
// series therefore stay separate, while genuinely contiguous occurrences
// unify. The pool is returned with series ids filled in.
func ReconcileSeries(pool []model.Task) []model.Task {
	type lane struct {
		seriesID string
		last     time.Time
	}

	// Lanes are seeded from rows that already carry a series id, so a legacy
	// row can continue an existing series instead of forking it.
	lanes := make(map[string][]*lane)
	var legacy []int

	for i := range pool {
		t := &pool[i]
		if !t.IsRecurring || t.DueDate == nil {
			continue
		}
		fp := fingerprint(*t)
		if t.RecurringSeriesID == "" {
			legacy = append(legacy, i)
			continue
		}
		group := lanes[fp]
		found := false
		for _, l := range group {
			if l.seriesID == t.RecurringSeriesID {
				if Normalize(*t.DueDate).After(l.last) {
					l.last = Normalize(*t.DueDate)
				}
				found = true
				break
			}
		}
		if !found {
			lanes[fp] = append(group, &lane{seriesID: t.RecurringSeriesID, last: Normalize(*t.DueDate)})
		}
	}

	sort.SliceStable(legacy, func(a, b int) bool {
		return pool[legacy[a]].DueDate.Before(*pool[legacy[b]].DueDate)
	})

	for _, idx := range legacy {
		t := &pool[idx]
		fp := fingerprint(*t)
		due := Normalize(*t.DueDate)

		var joined *lane
		for _, l := range lanes[fp] {
			next := NextOccurrence(l.last, t.RecurringInterval, t.RecurringDays)
			if SameDay(next, due) {
				joined = l
				break
			}
		}
		if joined != nil {
			t.RecurringSeriesID = joined.seriesID
			joined.last = due
			continue
		}
		t.RecurringSeriesID = t.ID
		lanes[fp] = append(lanes[fp], &lane{seriesID: t.ID, last: due})
	}

	return pool
}

// fingerprint builds the structural identity used to group candidate legacy
// rows before lane assignment.
func fingerprint(t model.Task) string {
	days := append([]int(nil), t.RecurringDays...)
	sort.Ints(days)
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join([]string{
		t.Name,
		t.CategoryID,
		string(t.RecurringInterval),
		strings.Join(parts, ","),
	}, "|")
}
