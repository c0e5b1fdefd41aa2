package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-client/pkg/response"
)

// 2024-01-03 is a Wednesday.
var wednesday = time.Date(2024, 1, 3, 11, 30, 0, 0, time.UTC)

func TestExpand_MondayTemplateFromWednesday(t *testing.T) {
	template := WeeklyTemplate{
		time.Monday: {StartTime: "09:00", EndTime: "17:00"},
	}

	windows, err := Expand(template, wednesday)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	for i, day := range []int{8, 15, 22, 29} {
		assert.Equal(t, time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC), windows[i].StartTime)
		assert.Equal(t, time.Date(2024, 1, day, 17, 0, 0, 0, time.UTC), windows[i].EndTime)
	}
}

func TestExpand_TodayCountsAsFirstOccurrence(t *testing.T) {
	template := WeeklyTemplate{
		time.Wednesday: {StartTime: "08:00", EndTime: "12:00"},
	}

	windows, err := Expand(template, wednesday)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	assert.Equal(t, time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), windows[0].StartTime)
}

func TestExpand_FourOccurrencesSevenDaysApart(t *testing.T) {
	template := WeeklyTemplate{
		time.Tuesday:  {StartTime: "10:00", EndTime: "18:00"},
		time.Saturday: {StartTime: "09:00", EndTime: "13:00"},
	}

	windows, err := Expand(template, wednesday)
	require.NoError(t, err)
	require.Len(t, windows, 8)

	for day := 0; day < 2; day++ {
		group := windows[day*RecurringWeeks : (day+1)*RecurringWeeks]
		for i, w := range group {
			assert.True(t, w.StartTime.Before(w.EndTime))
			if i > 0 {
				assert.Equal(t, 7*24*time.Hour, w.StartTime.Sub(group[i-1].StartTime))
			}
		}
	}
}

func TestExpand_GroupedInWeekdayOrder(t *testing.T) {
	template := WeeklyTemplate{
		time.Friday: {StartTime: "10:00", EndTime: "16:00"},
		time.Monday: {StartTime: "09:00", EndTime: "17:00"},
	}

	windows, err := Expand(template, wednesday)
	require.NoError(t, err)
	require.Len(t, windows, 8)

	// Monday group first regardless of map iteration order.
	for _, w := range windows[:4] {
		assert.Equal(t, time.Monday, w.StartTime.Weekday())
	}
	for _, w := range windows[4:] {
		assert.Equal(t, time.Friday, w.StartTime.Weekday())
	}
}

func TestExpand_NilEntriesSkipped(t *testing.T) {
	template := WeeklyTemplate{
		time.Monday:  {StartTime: "09:00", EndTime: "17:00"},
		time.Tuesday: nil,
	}

	windows, err := Expand(template, wednesday)
	require.NoError(t, err)
	assert.Len(t, windows, 4)
}

func TestExpand_InvertedRangeFailsValidation(t *testing.T) {
	template := WeeklyTemplate{
		time.Monday: {StartTime: "17:00", EndTime: "09:00"},
	}

	windows, err := Expand(template, wednesday)
	require.ErrorIs(t, err, response.ErrValidation)
	assert.Nil(t, windows)
}

func TestExpand_MalformedTimeFailsValidation(t *testing.T) {
	template := WeeklyTemplate{
		time.Monday: {StartTime: "9am", EndTime: "17:00"},
	}

	_, err := Expand(template, wednesday)
	require.ErrorIs(t, err, response.ErrValidation)
}

func TestExpand_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, 1, 3, 11, 30, 0, 0, loc)

	template := WeeklyTemplate{
		time.Thursday: {StartTime: "09:00", EndTime: "17:00"},
	}

	windows, err := Expand(template, now)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	assert.Equal(t, time.Date(2024, 1, 4, 9, 0, 0, 0, loc), windows[0].StartTime)
	assert.Equal(t, loc, windows[0].StartTime.Location())
}
