package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaySetValue(t *testing.T) {
	v, err := WeekdaySet{4, 1, 6}.Value()
	require.NoError(t, err)
	assert.Equal(t, "1,4,6", v, "days are stored sorted")

	v, err = WeekdaySet(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestWeekdaySetScan(t *testing.T) {
	var set WeekdaySet
	require.NoError(t, set.Scan("1,4,6"))
	assert.Equal(t, WeekdaySet{1, 4, 6}, set)

	require.NoError(t, set.Scan([]byte("0,3")))
	assert.Equal(t, WeekdaySet{0, 3}, set)

	require.NoError(t, set.Scan(""))
	assert.Nil(t, set)

	require.NoError(t, set.Scan(nil))
	assert.Nil(t, set)

	assert.Error(t, set.Scan(42))
}

func TestWeekdaySetScanDropsMalformedEntries(t *testing.T) {
	var set WeekdaySet
	require.NoError(t, set.Scan("1, x, 9, 4"))
	assert.Equal(t, WeekdaySet{1, 4}, set)
}

func TestWeekdaySetContains(t *testing.T) {
	set := WeekdaySet{1, 4}
	assert.True(t, set.Contains(time.Monday))
	assert.True(t, set.Contains(time.Thursday))
	assert.False(t, set.Contains(time.Sunday))
}

func TestSeriesIDFallsBackToOwnID(t *testing.T) {
	task := Task{ID: "t1"}
	assert.Equal(t, "t1", task.SeriesID())

	task.RecurringSeriesID = "s1"
	assert.Equal(t, "s1", task.SeriesID())
}
