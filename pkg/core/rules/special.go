package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// SpecialRequirements consults the special-events calendar, never the repository.
//
//   - INFO if the date is a public holiday
//   - WARNING if the shift overlaps a training or special event for the employee
//   - skipped when no calendar is configured
type SpecialRequirements struct{}

func (SpecialRequirements) Name() model.RuleName {
	return model.RuleSpecialRequirements
}

func (r SpecialRequirements) Check(candidate *Candidate, ctx *Context) []model.Violation {
	if ctx.Events == nil {
		return nil
	}

	var violations []model.Violation

	if name, ok := ctx.Events.Holiday(candidate.Date); ok {
		violations = append(violations, violation(r.Name(), model.SeverityInfo,
			fmt.Sprintf("%s is a public holiday (%s)", candidate.DateString(), name),
			map[string]any{"holiday": name}))
	}

	for _, event := range ctx.Events.EventsFor(candidate.EmployeeID(), candidate.Date) {
		interval, err := shiftcalc.ParseInterval(event.Start, event.End)
		if err != nil {
			continue
		}
		if shiftcalc.Overlaps(interval, candidate.Interval) {
			violations = append(violations, violation(r.Name(), model.SeverityWarning,
				fmt.Sprintf("shift overlaps %s (%s-%s)", event.Name, event.Start, event.End),
				map[string]any{
					"event":      event.Name,
					"eventStart": event.Start,
					"eventEnd":   event.End,
				}))
		}
	}

	return violations
}
