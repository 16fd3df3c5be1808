package plan

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-planner/internal/model"
)

// monday is a fixed reference weekday for scheduler tests.
var monday = date(2025, time.January, 6)

func oneOff(id string, hours float64) model.Task {
	return model.Task{
		ID:             id,
		Name:           "Задача " + id,
		CategoryName:   "Дом",
		Importance:     model.NotImportant,
		Urgency:        model.NotUrgent,
		EstimatedHours: hours,
		CreatedAt:      monday,
	}
}

func testLimits() Limits {
	return Limits{
		MaxTasksPerDay: 2,
		DefaultHours:   HourLimit{WeekdayMax: 8, WeekendMax: 8},
	}
}

func startKey(t *testing.T, task model.Task) string {
	t.Helper()
	require.NotNil(t, task.StartDate, "task %s was not assigned", task.ID)
	return DayKey(*task.StartDate)
}

func TestAssignRespectsDailyTaskCount(t *testing.T) {
	var pool []model.Task
	for i := 0; i < 5; i++ {
		pool = append(pool, oneOff(fmt.Sprintf("t%d", i), 1))
	}

	out := Assign(pool, testLimits(), monday, 14)

	perDay := make(map[string]int)
	for _, task := range out {
		perDay[startKey(t, task)]++
	}
	for day, count := range perDay {
		assert.LessOrEqual(t, count, 2, "day %s over capacity", day)
	}
}

func TestAssignRespectsCategoryHourCap(t *testing.T) {
	limits := testLimits()
	limits.MaxTasksPerDay = 10
	limits.Categories = map[string]HourLimit{
		"Дом": {WeekdayMax: 2, WeekendMax: 2},
	}

	a := oneOff("a", 1.5)
	b := oneOff("b", 1.5)

	out := Assign([]model.Task{a, b}, limits, monday, 14)
	assert.NotEqual(t, startKey(t, out[0]), startKey(t, out[1]),
		"both tasks together exceed the 2h cap and must land on different days")
}

func TestAssignDueDateOverridesHourCap(t *testing.T) {
	limits := testLimits()
	limits.Categories = map[string]HourLimit{
		"Дом": {WeekdayMax: 1, WeekendMax: 1},
	}

	due := monday
	task := oneOff("a", 10) // far over the cap
	task.DueDate = &due

	out := Assign([]model.Task{task}, limits, monday, 14)
	assert.Equal(t, DayKey(monday), startKey(t, out[0]),
		"a task due today is admitted over the soft hour budget")
}

func TestAssignOverdueTaskPlacedToday(t *testing.T) {
	limits := testLimits()
	overdue := monday.AddDate(0, 0, -5)
	task := oneOff("a", 1)
	task.DueDate = &overdue

	out := Assign([]model.Task{task}, limits, monday, 14)
	assert.Equal(t, DayKey(monday), startKey(t, out[0]))
}

func TestAssignWorkTasksAvoidWeekends(t *testing.T) {
	saturday := date(2025, time.January, 4)
	future := saturday.AddDate(0, 0, 20)

	task := oneOff("a", 1)
	task.CategoryName = "Работа"
	task.DueDate = &future

	out := Assign([]model.Task{task}, testLimits(), saturday, 14)
	// Saturday and Sunday are skipped; Monday is the first eligible day.
	assert.Equal(t, "2025-01-06", startKey(t, out[0]))
}

func TestAssignDueWorkTaskStillLandsOnWeekend(t *testing.T) {
	saturday := date(2025, time.January, 4)
	due := saturday

	task := oneOff("a", 1)
	task.CategoryName = "Работа"
	task.DueDate = &due

	out := Assign([]model.Task{task}, testLimits(), saturday, 14)
	assert.Equal(t, DayKey(saturday), startKey(t, out[0]))
}

func TestAssignCompletedTasksPinCapacity(t *testing.T) {
	limits := testLimits()
	limits.MaxTasksPerDay = 1

	start := monday
	completedAt := monday
	done := oneOff("done", 1)
	done.Completed = true
	done.CompletedAt = &completedAt
	done.StartDate = &start

	pending := oneOff("pending", 1)

	out := Assign([]model.Task{done, pending}, limits, monday, 14)

	var gotDone, gotPending model.Task
	for _, task := range out {
		switch task.ID {
		case "done":
			gotDone = task
		case "pending":
			gotPending = task
		}
	}

	// The completed task keeps its day; the pending one is pushed out.
	assert.Equal(t, DayKey(monday), startKey(t, gotDone))
	assert.Equal(t, "2025-01-07", startKey(t, gotPending))
}

func TestAssignRecurringOccurrencesPlacedFirst(t *testing.T) {
	limits := testLimits()
	limits.MaxTasksPerDay = 1

	due := monday
	recurring := recurringTask("r", due, model.RecurDaily)
	urgent := oneOff("u", 1)
	urgent.Importance = model.Important
	urgent.Urgency = model.Urgent

	result := Assign([]model.Task{recurring, urgent}, limits, monday, 14)

	var gotRecurring, gotUrgent model.Task
	for _, task := range result {
		switch task.ID {
		case "r":
			gotRecurring = task
		case "u":
			gotUrgent = task
		}
	}

	assert.Equal(t, DayKey(monday), startKey(t, gotRecurring),
		"recurring occurrences take their slot before any greedy fill")
	assert.NotEqual(t, DayKey(monday), startKey(t, gotUrgent))
}

func TestAssignRecurringDeduplicatedByNameAndDay(t *testing.T) {
	due := monday
	a := recurringTask("r1", due, model.RecurDaily)
	b := recurringTask("r2", due, model.RecurDaily) // same name, same day

	out := Assign([]model.Task{a, b}, testLimits(), monday, 14)

	placed := 0
	for _, task := range out {
		if task.StartDate != nil && DayKey(*task.StartDate) == DayKey(monday) {
			placed++
		}
	}
	assert.Equal(t, 1, placed)
}

func TestAssignSkipsRecurringWithCompletedTwin(t *testing.T) {
	start := monday
	completed := recurringTask("done", monday, model.RecurDaily)
	completed.Completed = true
	completed.StartDate = &start

	occurrence := recurringTask("occ", monday, model.RecurDaily)

	out := Assign([]model.Task{completed, occurrence}, testLimits(), monday, 14)
	for _, task := range out {
		if task.ID == "occ" {
			assert.Nil(t, task.StartDate,
				"an occurrence whose day already has a completed twin stays unplaced")
		}
	}
}

func TestAssignTerminatesWhenNothingFits(t *testing.T) {
	limits := testLimits()
	limits.Categories = map[string]HourLimit{
		"Дом": {WeekdayMax: 1, WeekendMax: 1},
	}

	future := monday.AddDate(0, 0, 60) // outside the horizon, never "due now"
	task := oneOff("a", 5)             // can never fit under the 1h cap
	task.DueDate = &future

	out := Assign([]model.Task{task}, limits, monday, 14)
	assert.Nil(t, out[0].StartDate, "unplaceable work stays unassigned for this pass")
}

func TestAssignDoesNotMutateInput(t *testing.T) {
	task := oneOff("a", 1)
	pool := []model.Task{task}

	_ = Assign(pool, testLimits(), monday, 14)
	assert.Nil(t, pool[0].StartDate)
}

func TestAssignKeepsRecurringDueDateInSync(t *testing.T) {
	due := monday
	occurrence := recurringTask("r", due, model.RecurDaily)

	out := Assign([]model.Task{occurrence}, testLimits(), monday, 14)
	require.NotNil(t, out[0].StartDate)
	require.NotNil(t, out[0].DueDate)
	assert.Equal(t, DayKey(*out[0].StartDate), DayKey(*out[0].DueDate))
}
