package shiftcalc

import (
	"time"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// ParseDate parses a DateLayout date in UTC
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(model.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, &model.FormatError{Field: "date", Value: value, Reason: "expected YYYY-MM-DD"}
	}
	return date, nil
}

// FormatDate formats a date using DateLayout
func FormatDate(date time.Time) string {
	return date.Format(model.DateLayout)
}

// normalize strips the time of day so date arithmetic never drifts
func normalize(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart rolls back to the Monday of the ISO week containing date
func WeekStart(date time.Time) time.Time {
	normalized := normalize(date)
	// Monday is 1, Sunday is 0 - shift so Monday maps to 0
	offset := (int(normalized.Weekday()) + 6) % 7
	return normalized.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday of the ISO week containing date
func WeekEnd(date time.Time) time.Time {
	return WeekStart(date).AddDate(0, 0, 6)
}

// WeekDates returns the seven dates, Monday first, of the week containing date
func WeekDates(date time.Time) []time.Time {
	start := WeekStart(date)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// IsWeekend returns true on Saturdays and Sundays
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// AddDays offsets a DateLayout date string by n days
func AddDays(value string, n int) (string, error) {
	date, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return FormatDate(date.AddDate(0, 0, n)), nil
}
