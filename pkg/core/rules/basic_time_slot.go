package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// BasicTimeSlot keeps shifts inside business hours and within sane durations.
//
//   - ERROR if the shift starts or ends outside business hours
//   - WARNING if the duration is outside [MinShiftHours, MaxShiftHours]
type BasicTimeSlot struct{}

func (BasicTimeSlot) Name() model.RuleName {
	return model.RuleBasicTimeSlot
}

func (r BasicTimeSlot) Check(candidate *Candidate, ctx *Context) []model.Violation {
	var violations []model.Violation

	business, err := ctx.Catalog.BusinessInterval()
	if err == nil && !business.Contains(candidate.Interval) {
		violations = append(violations, violation(r.Name(), model.SeverityError,
			fmt.Sprintf("shift %s-%s is outside business hours %s-%s",
				candidate.Input.ShiftStart, candidate.Input.ShiftEnd,
				ctx.Catalog.BusinessHours.Open, ctx.Catalog.BusinessHours.Close),
			map[string]any{
				"businessOpen":  ctx.Catalog.BusinessHours.Open,
				"businessClose": ctx.Catalog.BusinessHours.Close,
			}))
	}

	if candidate.Hours < ctx.Catalog.MinShiftHours || candidate.Hours > ctx.Catalog.MaxShiftHours {
		violations = append(violations, violation(r.Name(), model.SeverityWarning,
			fmt.Sprintf("shift length %.2fh is outside %.0f-%.0fh",
				candidate.Hours, ctx.Catalog.MinShiftHours, ctx.Catalog.MaxShiftHours),
			map[string]any{
				"hours":    candidate.Hours,
				"minHours": ctx.Catalog.MinShiftHours,
				"maxHours": ctx.Catalog.MaxShiftHours,
			}))
	}

	return violations
}
