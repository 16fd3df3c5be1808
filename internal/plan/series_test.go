package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-planner/internal/model"
)

func legacyTask(id, name string, due time.Time) model.Task {
	d := due
	return model.Task{
		ID:                id,
		Name:              name,
		CategoryID:        "cat-1",
		IsRecurring:       true,
		RecurringInterval: model.RecurDaily,
		DueDate:           &d,
	}
}

func TestReconcileSeriesUnifiesContiguousRuns(t *testing.T) {
	pool := []model.Task{
		legacyTask("t1", "Тренировка", date(2025, time.January, 1)),
		legacyTask("t2", "Тренировка", date(2025, time.January, 2)),
		legacyTask("t3", "Тренировка", date(2025, time.January, 3)),
	}

	out := ReconcileSeries(pool)
	require.Len(t, out, 3)
	assert.Equal(t, "t1", out[0].RecurringSeriesID)
	assert.Equal(t, "t1", out[1].RecurringSeriesID)
	assert.Equal(t, "t1", out[2].RecurringSeriesID)
}

func TestReconcileSeriesSplitsUnrelatedRuns(t *testing.T) {
	// Two same-named daily runs with a gap between them: the user created
	// the habit twice, these must stay separate series.
	pool := []model.Task{
		legacyTask("a1", "Тренировка", date(2025, time.January, 1)),
		legacyTask("a2", "Тренировка", date(2025, time.January, 2)),
		legacyTask("b1", "Тренировка", date(2025, time.January, 10)),
		legacyTask("b2", "Тренировка", date(2025, time.January, 11)),
	}

	out := ReconcileSeries(pool)

	assert.Equal(t, out[0].RecurringSeriesID, out[1].RecurringSeriesID)
	assert.Equal(t, out[2].RecurringSeriesID, out[3].RecurringSeriesID)
	assert.NotEqual(t, out[0].RecurringSeriesID, out[2].RecurringSeriesID)
}

func TestReconcileSeriesDifferentFingerprintsNeverMerge(t *testing.T) {
	a := legacyTask("a", "Тренировка", date(2025, time.January, 1))
	b := legacyTask("b", "Тренировка", date(2025, time.January, 2))
	b.CategoryID = "cat-2" // same name, different category

	out := ReconcileSeries([]model.Task{a, b})
	assert.NotEqual(t, out[0].RecurringSeriesID, out[1].RecurringSeriesID)
}

func TestReconcileSeriesJoinsExistingSeries(t *testing.T) {
	existing := legacyTask("e1", "Тренировка", date(2025, time.January, 1))
	existing.RecurringSeriesID = "series-1"
	legacy := legacyTask("l1", "Тренировка", date(2025, time.January, 2))

	out := ReconcileSeries([]model.Task{existing, legacy})
	assert.Equal(t, "series-1", out[1].RecurringSeriesID)
}

func TestReconcileSeriesLeavesOneOffsAlone(t *testing.T) {
	oneOff := model.Task{ID: "o1", Name: "Разовая"}
	out := ReconcileSeries([]model.Task{oneOff})
	assert.Empty(t, out[0].RecurringSeriesID)
}
