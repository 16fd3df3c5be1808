package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focus-planner/internal/model"
)

func workTask(id string, due *time.Time, start *time.Time) model.Task {
	return model.Task{
		ID:           id,
		Name:         "Отчёт " + id,
		CategoryID:   "work",
		CategoryName: "Работа",
		DueDate:      due,
		StartDate:    start,
	}
}

func TestCheckCategoryLimit(t *testing.T) {
	now := date(2025, time.April, 7)
	today := now
	tomorrow := now.AddDate(0, 0, 1)

	existing := []model.Task{
		workTask("w1", &today, nil),
		workTask("w2", nil, &today),
	}

	t.Run("third same-day task rejected", func(t *testing.T) {
		admission := CheckCategoryLimit(existing, workTask("w3", &today, nil), 2, now)
		assert.False(t, admission.Allowed)
		assert.Contains(t, admission.Message, "Работа")
		assert.Contains(t, admission.Message, "2")
	})

	t.Run("future-dated task always admitted", func(t *testing.T) {
		admission := CheckCategoryLimit(existing, workTask("w4", &tomorrow, nil), 2, now)
		assert.True(t, admission.Allowed)
	})

	t.Run("under the limit admitted", func(t *testing.T) {
		admission := CheckCategoryLimit(existing[:1], workTask("w3", &today, nil), 2, now)
		assert.True(t, admission.Allowed)
	})
}

func TestCheckCategoryLimitIgnoresIrrelevantTasks(t *testing.T) {
	now := date(2025, time.April, 7)
	today := now
	tomorrow := now.AddDate(0, 0, 1)

	completed := workTask("c", &today, &today)
	completed.Completed = true

	otherCategory := workTask("o", &today, nil)
	otherCategory.CategoryID = "home"
	otherCategory.CategoryName = "Дом"

	futureDue := workTask("f", &tomorrow, &today)

	existing := []model.Task{completed, otherCategory, futureDue}
	admission := CheckCategoryLimit(existing, workTask("new", &today, nil), 1, now)
	assert.True(t, admission.Allowed,
		"completed, other-category and future-due tasks never count against today")
}

func TestCheckCategoryLimitZeroLimitFallsBack(t *testing.T) {
	now := date(2025, time.April, 7)
	admission := CheckCategoryLimit(nil, workTask("n", nil, nil), 0, now)
	assert.True(t, admission.Allowed)
}
