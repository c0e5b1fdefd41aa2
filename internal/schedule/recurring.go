package schedule

import (
	"fmt"
	"time"

	"garage-client/api"
	"garage-client/pkg/response"
)

// RecurringWeeks is the horizon of the 30-day recurring generation:
// one occurrence per week for each selected weekday.
const RecurringWeeks = 4

// DayWindow is the working interval for one weekday of a weekly
// template, as local times of day in "15:04" form.
type DayWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// WeeklyTemplate maps a weekday to its working interval. A missing or
// nil entry means the mechanic does not work that day.
type WeeklyTemplate map[time.Weekday]*DayWindow

// weekdayOrder fixes the enumeration order of template entries so the
// expansion (and its sequential submission) is deterministic.
var weekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Validate parses every entry and checks start-of-day < end-of-day.
// Expansion refuses to run on an invalid template rather than emit an
// inverted window.
func (t WeeklyTemplate) Validate() error {
	const op = "schedule.WeeklyTemplate.Validate"

	for _, day := range weekdayOrder {
		dw := t[day]
		if dw == nil {
			continue
		}

		start, err := time.Parse("15:04", dw.StartTime)
		if err != nil {
			return fmt.Errorf("%s: %s: invalid start time %q: %w", op, day, dw.StartTime, response.ErrValidation)
		}

		end, err := time.Parse("15:04", dw.EndTime)
		if err != nil {
			return fmt.Errorf("%s: %s: invalid end time %q: %w", op, day, dw.EndTime, response.ErrValidation)
		}

		if !start.Before(end) {
			return fmt.Errorf("%s: %s: start %s is not before end %s: %w", op, day, dw.StartTime, dw.EndTime, response.ErrValidation)
		}
	}

	return nil
}

// Expand turns the weekly template into concrete dated windows: for
// each selected weekday, the next matching calendar date on or after
// now (today counts when it matches) anchors RecurringWeeks occurrences
// spaced 7 days apart. Output is grouped by weekday in Monday..Sunday
// order, chronological within a weekday; the merged list is not
// globally sorted.
func Expand(t WeeklyTemplate, now time.Time) ([]api.AvailabilityRequest, error) {
	const op = "schedule.Expand"

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var windows []api.AvailabilityRequest
	for _, day := range weekdayOrder {
		dw := t[day]
		if dw == nil {
			continue
		}

		startTod, _ := time.Parse("15:04", dw.StartTime)
		endTod, _ := time.Parse("15:04", dw.EndTime)

		daysUntil := (int(day) - int(now.Weekday()) + 7) % 7
		anchor := today.AddDate(0, 0, daysUntil)

		for i := 0; i < RecurringWeeks; i++ {
			date := anchor.AddDate(0, 0, 7*i)
			windows = append(windows, api.AvailabilityRequest{
				StartTime: time.Date(date.Year(), date.Month(), date.Day(), startTod.Hour(), startTod.Minute(), 0, 0, loc),
				EndTime:   time.Date(date.Year(), date.Month(), date.Day(), endTod.Hour(), endTod.Minute(), 0, 0, loc),
			})
		}
	}

	return windows, nil
}
