package plan

import (
	"fmt"
	"time"

	"focus-planner/internal/model"
)

// Admission is the structured outcome of the category gate. Rejection is a
// normal result surfaced to the caller, never an error.
type Admission struct {
	Allowed bool
	Message string
}

// CheckCategoryLimit decides whether a proposed task may be created right
// now, given the user's existing pool and the category's flat daily count
// limit. Runs at creation time only; the scheduler never consults it.
//
// A task due strictly in the future never counts against today and is
// always admitted. Otherwise the gate counts incomplete tasks of the same
// category whose effective day (StartDate, else DueDate) is today and whose
// own due date is not future-dated; at or over the limit, the proposal is
// rejected with a message naming the limit and category.
func CheckCategoryLimit(existing []model.Task, candidate model.Task, limit int, now time.Time) Admission {
	if limit <= 0 {
		limit = model.DefaultDailyLimit
	}
	today := Normalize(now)

	if candidate.DueDate != nil && Normalize(*candidate.DueDate).After(today) {
		return Admission{Allowed: true}
	}

	count := 0
	for i := range existing {
		t := &existing[i]
		if t.Completed || t.CategoryID != candidate.CategoryID {
			continue
		}
		if t.DueDate != nil && Normalize(*t.DueDate).After(today) {
			continue
		}
		effective := t.StartDate
		if effective == nil {
			effective = t.DueDate
		}
		if effective == nil || !SameDay(*effective, today) {
			continue
		}
		count++
	}

	if count >= limit {
		name := candidate.CategoryName
		if name == "" {
			name = "задачи без категории"
		}
		return Admission{
			Allowed: false,
			Message: fmt.Sprintf("На сегодня уже запланировано %d задач в категории «%s» (лимит %d). Поставь задаче дату в будущем или выбери другую категорию.", count, name, limit),
		}
	}
	return Admission{Allowed: true}
}
