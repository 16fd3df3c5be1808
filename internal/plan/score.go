package plan

import (
	"sort"
	"time"

	"focus-planner/internal/model"
)

// Eisenhower base scores and bonus weights. The due-today bonus must stay
// larger than the due-soon bonuses so a task due today outranks one due in
// 1–3 days, all else equal.
const (
	baseUrgentImportant = 100
	baseImportant       = 80
	baseUrgent          = 60
	baseNeither         = 40

	overdueBonusPerDay = 10
	dueTodayBonus      = 40
	dueTomorrowBonus   = 20
	dueSoonBonus       = 10

	ageBonusPerDay = 2
	ageBonusCap    = 20
)

// Score assigns a scheduling priority to a task. Higher means more urgent
// to place. Deterministic and side-effect free.
func Score(t model.Task, now time.Time) float64 {
	score := float64(quadrantBase(t))

	if t.DueDate != nil && !t.DueDate.IsZero() {
		gap := DaysBetween(now, *t.DueDate)
		switch {
		case gap < 0:
			// Strictly before today; today itself is never overdue.
			score += float64(-gap) * overdueBonusPerDay
		case gap == 0:
			score += dueTodayBonus
		case gap == 1:
			score += dueTomorrowBonus
		case gap <= 3:
			score += dueSoonBonus
		}
	}

	if !t.CreatedAt.IsZero() {
		if age := DaysBetween(t.CreatedAt, now); age > 0 {
			bonus := age * ageBonusPerDay
			if bonus > ageBonusCap {
				bonus = ageBonusCap
			}
			score += float64(bonus)
		}
	}

	return score
}

func quadrantBase(t model.Task) int {
	urgent := t.Urgency == model.Urgent
	important := t.Importance == model.Important
	switch {
	case urgent && important:
		return baseUrgentImportant
	case important:
		return baseImportant
	case urgent:
		return baseUrgent
	default:
		return baseNeither
	}
}

// SortByScore orders tasks by score descending; ties break by earlier due
// date (nil due dates last) and remain stable beyond that.
func SortByScore(tasks []model.Task, now time.Time) {
	scores := make(map[string]float64, len(tasks))
	for _, t := range tasks {
		scores[t.ID] = Score(t, now)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		si, sj := scores[tasks[i].ID], scores[tasks[j].ID]
		if si != sj {
			return si > sj
		}
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return Normalize(*di).Before(Normalize(*dj))
		}
	})
}
