package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focus-planner/internal/model"
)

func scoredTask(importance model.Importance, urgency model.Urgency, due *time.Time, created time.Time) model.Task {
	return model.Task{
		ID:         "t",
		Importance: importance,
		Urgency:    urgency,
		DueDate:    due,
		CreatedAt:  created,
	}
}

func TestScoreQuadrantBases(t *testing.T) {
	now := date(2025, time.June, 10)
	tests := []struct {
		name       string
		importance model.Importance
		urgency    model.Urgency
		want       float64
	}{
		{"urgent important", model.Important, model.Urgent, 100},
		{"important only", model.Important, model.NotUrgent, 80},
		{"urgent only", model.NotImportant, model.Urgent, 60},
		{"neither", model.NotImportant, model.NotUrgent, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := scoredTask(tt.importance, tt.urgency, nil, now)
			assert.Equal(t, tt.want, Score(task, now))
		})
	}
}

func TestScoreDueDateBonuses(t *testing.T) {
	now := date(2025, time.June, 10)
	due := func(d time.Time) *time.Time { return &d }

	tests := []struct {
		name string
		due  *time.Time
		want float64
	}{
		{"due today gets flat 40", due(now), 80},
		{"due tomorrow", due(now.AddDate(0, 0, 1)), 60},
		{"due in 3 days", due(now.AddDate(0, 0, 3)), 50},
		{"due in 4 days no bonus", due(now.AddDate(0, 0, 4)), 40},
		{"overdue 2 days", due(now.AddDate(0, 0, -2)), 60},
		{"no due date", nil, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := scoredTask(model.NotImportant, model.NotUrgent, tt.due, now)
			assert.Equal(t, tt.want, Score(task, now))
		})
	}
}

func TestScoreDueTodayOutranksDueSoon(t *testing.T) {
	now := date(2025, time.June, 10)
	today := now
	tomorrow := now.AddDate(0, 0, 1)

	dueToday := scoredTask(model.Important, model.Urgent, &today, now)
	dueTomorrow := scoredTask(model.Important, model.Urgent, &tomorrow, now)
	assert.Greater(t, Score(dueToday, now), Score(dueTomorrow, now))
}

func TestScoreAgeBonusCaps(t *testing.T) {
	now := date(2025, time.June, 10)

	young := scoredTask(model.NotImportant, model.NotUrgent, nil, now.AddDate(0, 0, -3))
	assert.Equal(t, float64(40+6), Score(young, now))

	old := scoredTask(model.NotImportant, model.NotUrgent, nil, now.AddDate(0, 0, -200))
	assert.Equal(t, float64(40+20), Score(old, now))
}

func TestScoreMonotonicity(t *testing.T) {
	now := date(2025, time.June, 10)
	today := now
	later := now.AddDate(0, 0, 10)

	hot := scoredTask(model.Important, model.Urgent, &today, now)
	cold := scoredTask(model.NotImportant, model.NotUrgent, &later, now)
	assert.Greater(t, Score(hot, now), Score(cold, now))
}

func TestSortByScore(t *testing.T) {
	now := date(2025, time.June, 10)
	// Both dates fall in the same due-soon bonus band, so a and c tie on
	// score and only the due date breaks the tie.
	soon := now.AddDate(0, 0, 2)
	later := now.AddDate(0, 0, 3)

	a := scoredTask(model.NotImportant, model.NotUrgent, &later, now)
	a.ID = "a"
	b := scoredTask(model.Important, model.Urgent, &later, now)
	b.ID = "b"
	// Same score as a, but earlier due date: wins the tie.
	c := scoredTask(model.NotImportant, model.NotUrgent, &later, now)
	c.ID = "c"
	c.DueDate = &soon

	tasks := []model.Task{a, b, c}
	SortByScore(tasks, now)

	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, "c", tasks[1].ID)
	assert.Equal(t, "a", tasks[2].ID)
}

func TestSortByScoreNilDueDatesLast(t *testing.T) {
	now := date(2025, time.June, 10)
	due := now.AddDate(0, 0, 5)

	noDue := scoredTask(model.NotImportant, model.NotUrgent, nil, now)
	noDue.ID = "no-due"
	withDue := scoredTask(model.NotImportant, model.NotUrgent, &due, now)
	withDue.ID = "with-due"

	tasks := []model.Task{noDue, withDue}
	SortByScore(tasks, now)
	assert.Equal(t, "with-due", tasks[0].ID)
}
