package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/stats"
)

// ConsecutiveWorkLimits caps working streaks and weekly hours.
//
//   - ERROR if the employee has already worked MaxConsecutiveDays or more days in a row
//   - WARNING if the candidate pushes the ISO week total above WeeklyMaxHours
type ConsecutiveWorkLimits struct{}

func (ConsecutiveWorkLimits) Name() model.RuleName {
	return model.RuleConsecutiveWorkLimits
}

func (r ConsecutiveWorkLimits) Check(candidate *Candidate, ctx *Context) []model.Violation {
	var violations []model.Violation

	streak := stats.ConsecutiveDaysEndingBefore(ctx.Repo, candidate.EmployeeID(), candidate.Date)
	if streak >= ctx.Catalog.MaxConsecutiveDays {
		violations = append(violations, violation(r.Name(), model.SeverityError,
			fmt.Sprintf("employee %s has worked %d consecutive days (maximum %d)",
				candidate.EmployeeID(), streak, ctx.Catalog.MaxConsecutiveDays),
			map[string]any{
				"consecutiveDays":    streak,
				"maxConsecutiveDays": ctx.Catalog.MaxConsecutiveDays,
			}))
	}

	weekly := stats.WeeklyHours(ctx.Repo, candidate.EmployeeID(), candidate.Date)
	if weekly+candidate.Hours > ctx.Catalog.WeeklyMaxHours {
		violations = append(violations, violation(r.Name(), model.SeverityWarning,
			fmt.Sprintf("weekly hours would reach %.1fh (maximum %.0fh)",
				weekly+candidate.Hours, ctx.Catalog.WeeklyMaxHours),
			map[string]any{
				"currentWeeklyHours": weekly,
				"projectedHours":     weekly + candidate.Hours,
				"weeklyMaxHours":     ctx.Catalog.WeeklyMaxHours,
			}))
	}

	return violations
}
