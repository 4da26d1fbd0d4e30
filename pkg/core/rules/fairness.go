package rules

import (
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/stats"
)

// FairnessDistribution reports uneven weekly workloads. It never blocks.
//
//   - INFO if, with the candidate's hours added, max-min weekly hours across the
//     roster exceeds MaxWeeklyHoursDifference
//   - skipped when no roster is supplied
type FairnessDistribution struct{}

func (FairnessDistribution) Name() model.RuleName {
	return model.RuleFairnessDistribution
}

func (r FairnessDistribution) Check(candidate *Candidate, ctx *Context) []model.Violation {
	roster := scopedRoster(ctx.Roster, ctx.FairnessScope, candidate.Input.StoreID)
	if len(roster) == 0 {
		return nil
	}

	hours := make(map[string]float64, len(roster)+1)
	for _, e := range roster {
		hours[e.ID] = stats.WeeklyHours(ctx.Repo, e.ID, candidate.Date)
	}
	if _, ok := hours[candidate.EmployeeID()]; !ok {
		hours[candidate.EmployeeID()] = stats.WeeklyHours(ctx.Repo, candidate.EmployeeID(), candidate.Date)
	}
	hours[candidate.EmployeeID()] += candidate.Hours

	first := true
	var lowest, highest float64
	for _, h := range hours {
		if first {
			lowest, highest = h, h
			first = false
			continue
		}
		lowest = min(lowest, h)
		highest = max(highest, h)
	}

	spread := highest - lowest
	if spread <= ctx.Catalog.MaxWeeklyHoursDifference {
		return nil
	}

	return []model.Violation{violation(r.Name(), model.SeverityInfo,
		fmt.Sprintf("weekly hours spread would be %.1fh (maximum %.0fh)", spread, ctx.Catalog.MaxWeeklyHoursDifference),
		map[string]any{
			"spread":        spread,
			"maxDifference": ctx.Catalog.MaxWeeklyHoursDifference,
			"rosterSize":    len(hours),
		})}
}

// scopedRoster narrows the roster to the candidate's store when asked to.
// An empty scope behaves like ScopeCompany.
func scopedRoster(roster []model.Employee, scope FairnessScope, storeID string) []model.Employee {
	if scope != ScopeStore || storeID == "" {
		return roster
	}
	var out []model.Employee
	for _, e := range roster {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out
}
