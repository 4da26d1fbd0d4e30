package services

import (
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// WeeklyStatistics returns every employee's totals for the ISO week containing date
func (s *Scheduler) WeeklyStatistics(date string) ([]model.WeeklyStatistics, error) {
	d, err := shiftcalc.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.stats.Week(d), nil
}

// EmployeeWeek returns one employee's totals for the ISO week containing date
func (s *Scheduler) EmployeeWeek(employeeID, date string) (model.WeeklyStatistics, error) {
	d, err := shiftcalc.ParseDate(date)
	if err != nil {
		return model.WeeklyStatistics{}, err
	}
	return s.stats.Get(employeeID, d), nil
}
