package timesheet

import (
	"fmt"
	"time"
)

// NormalizeWeekStart strips the time-of-day component so week boundaries
// compare cleanly regardless of how the date was parsed.
func NormalizeWeekStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateWeekStart enforces Monday alignment. Accepting other weekdays
// would let overlapping week windows coexist for the same employee.
func ValidateWeekStart(start time.Time) error {
	if start.IsZero() {
		return invalid("weekStartDate", "is required")
	}
	if start.Weekday() != time.Monday {
		return invalid("weekStartDate", fmt.Sprintf("must be a Monday, got %s", start.Weekday()))
	}
	return nil
}

// WeekEnd returns the Sunday closing the week.
func WeekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, 6)
}

// WeekNumber returns the ISO year and week for a Monday-aligned start date.
func WeekNumber(start time.Time) (year, week int) {
	return start.ISOWeek()
}

// ValidateHours checks every day entry and the weekly total. weeklyCap is
// the configured ceiling; values above MaxWeekHours are clamped to it.
func ValidateHours(hours DayHours, weeklyCap float64) error {
	if weeklyCap <= 0 || weeklyCap > MaxWeekHours {
		weeklyCap = MaxWeekHours
	}
	for _, day := range hours.days() {
		if day.Hours < 0 {
			return invalid(day.Name, "must not be negative")
		}
		if day.Hours > MaxDayHours {
			return invalid(day.Name, fmt.Sprintf("must not exceed %v hours", MaxDayHours))
		}
	}
	total := hours.Total()
	if total <= 0 {
		return invalid("hours", "at least one day must have non-zero hours")
	}
	if total > weeklyCap {
		return invalid("hours", fmt.Sprintf("weekly total %.2f exceeds the cap of %.2f", total, weeklyCap))
	}
	return nil
}
