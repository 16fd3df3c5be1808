package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimitsEmptyPayload(t *testing.T) {
	limits := ParseLimits("", DefaultLimits())
	assert.Equal(t, DefaultLimits().MaxTasksPerDay, limits.MaxTasksPerDay)
	assert.Empty(t, limits.Categories)
}

func TestParseLimitsGarbageFallsBack(t *testing.T) {
	limits := ParseLimits("{not json", DefaultLimits())
	assert.Equal(t, DefaultLimits(), limits)
}

func TestParseLimitsFullDocument(t *testing.T) {
	raw := `{
		"maxTasksPerDay": 4,
		"categoryLimits": {
			"Работа": {"weekdayMax": 3, "weekendMax": 1}
		}
	}`
	limits := ParseLimits(raw, DefaultLimits())
	assert.Equal(t, 4, limits.MaxTasksPerDay)
	assert.Equal(t, 3.0, limits.HourCap("Работа", false))
	assert.Equal(t, 1.0, limits.HourCap("Работа", true))
}

func TestParseLimitsStringNumbers(t *testing.T) {
	// Historical payloads carry numbers as strings.
	raw := `{
		"maxTasksPerDay": "7",
		"categoryLimits": {
			"Дом": {"weekdayMax": "2.5", "weekendMax": "4"}
		}
	}`
	limits := ParseLimits(raw, DefaultLimits())
	assert.Equal(t, 7, limits.MaxTasksPerDay)
	assert.Equal(t, 2.5, limits.HourCap("Дом", false))
	assert.Equal(t, 4.0, limits.HourCap("Дом", true))
}

func TestParseLimitsMissingWeekendFallsBackToWeekday(t *testing.T) {
	raw := `{"categoryLimits": {"Учёба": {"weekdayMax": 2}}}`
	limits := ParseLimits(raw, DefaultLimits())
	assert.Equal(t, 2.0, limits.HourCap("Учёба", false))
	assert.Equal(t, 2.0, limits.HourCap("Учёба", true))
}

func TestParseLimitsUnknownCategoryUsesDefaults(t *testing.T) {
	limits := ParseLimits(`{"categoryLimits": {"Дом": {"weekdayMax": 2}}}`, DefaultLimits())
	assert.Equal(t, DefaultLimits().DefaultHours.WeekdayMax, limits.HourCap("Спорт", false))
	assert.Equal(t, DefaultLimits().DefaultHours.WeekendMax, limits.HourCap("Спорт", true))
}

func TestParseLimitsNegativeValuesIgnored(t *testing.T) {
	raw := `{"maxTasksPerDay": -3, "categoryLimits": {"Дом": {"weekdayMax": -1}}}`
	limits := ParseLimits(raw, DefaultLimits())
	assert.Equal(t, DefaultLimits().MaxTasksPerDay, limits.MaxTasksPerDay)
	assert.Equal(t, DefaultLimits().DefaultHours.WeekdayMax, limits.HourCap("Дом", false))
}
