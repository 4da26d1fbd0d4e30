package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// EmployeeAvailability prevents double booking and short turnarounds.
//
//   - ERROR if the employee already has any schedule on the date, overlapping or not
//   - WARNING if the rest since the previous day's latest shift end is below
//     BufferTimeBetweenShifts, computed as 24h - previousEnd + currentStart
type EmployeeAvailability struct{}

func (EmployeeAvailability) Name() model.RuleName {
	return model.RuleEmployeeAvailability
}

func (r EmployeeAvailability) Check(candidate *Candidate, ctx *Context) []model.Violation {
	var violations []model.Violation

	existing := ctx.Repo.ByEmployeeAndDate(candidate.EmployeeID(), candidate.DateString())
	if len(existing) > 0 {
		violations = append(violations, violation(r.Name(), model.SeverityError,
			fmt.Sprintf("employee %s is already scheduled on %s (%s-%s)",
				candidate.EmployeeID(), candidate.DateString(), existing[0].ShiftStart, existing[0].ShiftEnd),
			map[string]any{
				"existingScheduleId": existing[0].ID,
			}))
	}

	previousDate := shiftcalc.FormatDate(candidate.Date.AddDate(0, 0, -1))
	latestEnd := -1
	for _, record := range ctx.Repo.ByEmployeeAndDate(candidate.EmployeeID(), previousDate) {
		end, err := shiftcalc.TimeToMinutes(record.ShiftEnd)
		if err != nil {
			continue
		}
		latestEnd = max(latestEnd, end)
	}

	if latestEnd >= 0 {
		restMinutes := shiftcalc.MinutesPerDay - latestEnd + candidate.Interval.Start
		restHours := float64(restMinutes) / shiftcalc.MinutesPerHour
		if restHours < ctx.Catalog.BufferTimeBetweenShifts {
			violations = append(violations, violation(r.Name(), model.SeverityWarning,
				fmt.Sprintf("only %.1fh rest since the previous shift ended at %s (minimum %.0fh)",
					restHours, shiftcalc.MinutesToTime(latestEnd), ctx.Catalog.BufferTimeBetweenShifts),
				map[string]any{
					"restHours":   restHours,
					"bufferHours": ctx.Catalog.BufferTimeBetweenShifts,
				}))
		}
	}

	return violations
}
