// Package shiftcalc holds the pure time arithmetic used by rule checks:
// parsing HH:MM times, shift durations, template classification and overlap.
package shiftcalc

import (
	"strconv"
	"strings"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
)

// Interval is a half-open range [Start, End) in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// Minutes returns the length of the interval
func (i Interval) Minutes() int {
	return i.End - i.Start
}

// Hours returns the length of the interval in hours
func (i Interval) Hours() float64 {
	return float64(i.Minutes()) / MinutesPerHour
}

// Contains returns true if other lies completely inside i
func (i Interval) Contains(other Interval) bool {
	return other.Start >= i.Start && other.End <= i.End
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// The domain is 00:00 to 24:00 inclusive; anything else is a FormatError.
func TimeToMinutes(value string) (int, error) {
	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, &model.FormatError{Field: "time", Value: value, Reason: "expected HH:MM"}
	}
	if !allDigits(hh) {
		return 0, &model.FormatError{Field: "time", Value: value, Reason: "hour is not a number"}
	}
	if !allDigits(mm) {
		return 0, &model.FormatError{Field: "time", Value: value, Reason: "minute is not a number"}
	}

	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)

	if minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, &model.FormatError{Field: "time", Value: value, Reason: "outside 00:00-24:00"}
	}

	return hours*MinutesPerHour + minutes, nil
}

// allDigits rejects the sign prefixes strconv.Atoi would accept
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MinutesToTime formats minutes since midnight as HH:MM
func MinutesToTime(minutes int) string {
	h := minutes / MinutesPerHour
	m := minutes % MinutesPerHour
	return twoDigits(h) + ":" + twoDigits(m)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ParseInterval parses a start and end time into an Interval.
// Shifts never wrap past midnight, so end must be after start.
func ParseInterval(start, end string) (Interval, error) {
	startMinutes, err := TimeToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	endMinutes, err := TimeToMinutes(end)
	if err != nil {
		return Interval{}, err
	}

	if endMinutes <= startMinutes {
		return Interval{}, &model.FormatError{
			Field:  "interval",
			Value:  start + "-" + end,
			Reason: "end must be after start",
		}
	}

	return Interval{Start: startMinutes, End: endMinutes}, nil
}

// ShiftHours returns the duration of the shift in hours
func ShiftHours(start, end string) (float64, error) {
	interval, err := ParseInterval(start, end)
	if err != nil {
		return 0, err
	}
	return interval.Hours(), nil
}

// Classify returns the code of the template whose bounds equal the shift exactly,
// or ShiftCustom if none match. Rest templates are ignored.
func Classify(start, end string, templates []model.ShiftTemplate) (model.ShiftCode, error) {
	interval, err := ParseInterval(start, end)
	if err != nil {
		return "", err
	}
	return ClassifyInterval(interval, templates), nil
}

// ClassifyInterval is Classify for an already parsed interval
func ClassifyInterval(interval Interval, templates []model.ShiftTemplate) model.ShiftCode {
	for _, tmpl := range templates {
		if tmpl.Rest {
			continue
		}
		tmplInterval, err := ParseInterval(tmpl.Start, tmpl.End)
		if err != nil {
			continue
		}
		if tmplInterval == interval {
			return tmpl.Code
		}
	}
	return model.ShiftCustom
}

// Overlaps returns true iff a.Start < b.End && b.Start < a.End
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// RecordInterval parses the interval stored on a schedule record
func RecordInterval(record model.ScheduleRecord) (Interval, error) {
	return ParseInterval(record.ShiftStart, record.ShiftEnd)
}
