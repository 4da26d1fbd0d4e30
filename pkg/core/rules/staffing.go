package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// MinimumStaffing warns when a shift would still be understaffed.
//
//   - WARNING if the schedules overlapping the candidate on the same date,
//     counting the candidate, are fewer than the minimum for the shift type.
//     On Saturdays and Sundays the weekend minimum always applies.
type MinimumStaffing struct{}

func (MinimumStaffing) Name() model.RuleName {
	return model.RuleMinimumStaffing
}

func (r MinimumStaffing) Check(candidate *Candidate, ctx *Context) []model.Violation {
	staffed := len(ctx.Repo.ByDateAndOverlap(candidate.DateString(), candidate.Interval)) + 1
	required := ctx.Catalog.MinimumStaffing(candidate.ShiftType, candidate.Date)

	if staffed >= required {
		return nil
	}

	return []model.Violation{violation(r.Name(), model.SeverityWarning,
		fmt.Sprintf("%s shift on %s has %d of %d required staff", candidate.ShiftType, candidate.DateString(), staffed, required),
		map[string]any{
			"staffed":  staffed,
			"required": required,
		})}
}
