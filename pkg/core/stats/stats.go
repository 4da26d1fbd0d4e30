// Package stats derives per-employee weekly totals and consecutive working
// day streaks from the schedule repository.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// WeeklyHours sums the hours of the employee's records in the ISO week containing date
func WeeklyHours(r repository.Reader, employeeID string, date time.Time) float64 {
	from := shiftcalc.FormatDate(shiftcalc.WeekStart(date))
	to := shiftcalc.FormatDate(shiftcalc.WeekEnd(date))

	total := 0.0
	for _, record := range r.ByEmployeeInRange(employeeID, from, to) {
		total += record.Hours
	}
	return total
}

// ConsecutiveDaysEndingBefore counts the unbroken run of calendar days,
// ending the day before date, on which the employee has at least one schedule
func ConsecutiveDaysEndingBefore(r repository.Reader, employeeID string, date time.Time) int {
	count := 0
	day := date.AddDate(0, 0, -1)
	for len(r.ByEmployeeAndDate(employeeID, shiftcalc.FormatDate(day))) > 0 {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

// RosterAverageWeeklyHours is the mean weekly hours over the given employees
func RosterAverageWeeklyHours(r repository.Reader, employees []model.Employee, date time.Time) float64 {
	if len(employees) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range employees {
		total += WeeklyHours(r, e.ID, date)
	}
	return total / float64(len(employees))
}

type weekKey struct {
	employeeID string
	weekStart  string
}

// Aggregator caches WeeklyStatistics per (employee, ISO week).
// It is never a source of truth: Rebuild recomputes it from a repository.
type Aggregator struct {
	mu    sync.RWMutex
	weeks map[weekKey]*model.WeeklyStatistics
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{weeks: make(map[weekKey]*model.WeeklyStatistics)}
}

// Record folds a newly created schedule into its week, creating the week lazily
func (a *Aggregator) Record(record model.ScheduleRecord) error {
	date, err := shiftcalc.ParseDate(record.Date)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.add(record, date)
	return nil
}

func (a *Aggregator) add(record model.ScheduleRecord, date time.Time) {
	key := weekKey{employeeID: record.EmployeeID, weekStart: shiftcalc.FormatDate(shiftcalc.WeekStart(date))}
	week, ok := a.weeks[key]
	if !ok {
		week = &model.WeeklyStatistics{EmployeeID: record.EmployeeID, WeekStart: key.weekStart}
		a.weeks[key] = week
	}
	week.TotalHours += record.Hours
	week.TotalShifts++
}

// Rebuild discards the cache and recomputes it from every record in r
func (a *Aggregator) Rebuild(r repository.Reader) error {
	weeks := NewAggregator()
	for _, record := range r.All() {
		date, err := shiftcalc.ParseDate(record.Date)
		if err != nil {
			return err
		}
		weeks.add(record, date)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.weeks = weeks.weeks
	return nil
}

// Get returns the statistics for the week containing date, zero-valued if none exist
func (a *Aggregator) Get(employeeID string, date time.Time) model.WeeklyStatistics {
	weekStart := shiftcalc.FormatDate(shiftcalc.WeekStart(date))

	a.mu.RLock()
	defer a.mu.RUnlock()
	if week, ok := a.weeks[weekKey{employeeID: employeeID, weekStart: weekStart}]; ok {
		return *week
	}
	return model.WeeklyStatistics{EmployeeID: employeeID, WeekStart: weekStart}
}

// Week returns every employee's statistics for the week containing date, sorted by employee
func (a *Aggregator) Week(date time.Time) []model.WeeklyStatistics {
	weekStart := shiftcalc.FormatDate(shiftcalc.WeekStart(date))

	a.mu.RLock()
	var out []model.WeeklyStatistics
	for key, week := range a.weeks {
		if key.weekStart == weekStart {
			out = append(out, *week)
		}
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// All returns every cached week, ordered by week then employee
func (a *Aggregator) All() []model.WeeklyStatistics {
	a.mu.RLock()
	out := make([]model.WeeklyStatistics, 0, len(a.weeks))
	for _, week := range a.weeks {
		out = append(out, *week)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekStart != out[j].WeekStart {
			return out[i].WeekStart < out[j].WeekStart
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// ForEmployee returns every cached week of one employee, oldest first
func (a *Aggregator) ForEmployee(employeeID string) []model.WeeklyStatistics {
	a.mu.RLock()
	var out []model.WeeklyStatistics
	for key, week := range a.weeks {
		if key.employeeID == employeeID {
			out = append(out, *week)
		}
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}
