// Package suggest ranks employees for open shifts and builds weekly staffing
// suggestions. It only reads the schedule repository.
package suggest

import (
	"time"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/stats"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

const (
	// Employees above the roster average are less suitable
	overworkedFactor = 0.7
	// Employees below underworkedRatio of the roster average are more suitable
	underworkedFactor = 1.3
	underworkedRatio  = 0.8
	// Employees on a long streak are less suitable
	fatigueFactor = 0.6
	fatigueDays   = 5
	// A preference of +1 adds 20%, -1 removes 20%
	preferenceWeight = 0.2
)

// PreferenceProvider supplies an employee's preference for working a shift,
// in [-1, 1]. Values outside the range are clamped.
type PreferenceProvider interface {
	Preference(employee model.Employee, date time.Time, template model.ShiftTemplate) float64
}

// NeutralPreferences gives every employee a preference of 0
type NeutralPreferences struct{}

func (NeutralPreferences) Preference(model.Employee, time.Time, model.ShiftTemplate) float64 {
	return 0
}

// RosterPreferences reads the preference recorded on the employee's roster entry
type RosterPreferences struct{}

func (RosterPreferences) Preference(employee model.Employee, _ time.Time, _ model.ShiftTemplate) float64 {
	return employee.Preference
}

// Scorer computes suitability scores
type Scorer struct {
	Preferences PreferenceProvider
}

// NewScorer creates a scorer. A nil provider means neutral preferences.
func NewScorer(preferences PreferenceProvider) *Scorer {
	if preferences == nil {
		preferences = NeutralPreferences{}
	}
	return &Scorer{Preferences: preferences}
}

// Score returns how suitable the employee is for template on date, in [0, 1].
// An employee who already works on date always scores 0.
func (s *Scorer) Score(r repository.Reader, employee model.Employee, date time.Time, template model.ShiftTemplate, rosterAverage float64) float64 {
	if len(r.ByEmployeeAndDate(employee.ID, shiftcalc.FormatDate(date))) > 0 {
		return 0
	}

	score := 1.0

	weekly := stats.WeeklyHours(r, employee.ID, date)
	if weekly > rosterAverage {
		score *= overworkedFactor
	} else if weekly < underworkedRatio*rosterAverage {
		score *= underworkedFactor
	}

	if stats.ConsecutiveDaysEndingBefore(r, employee.ID, date) >= fatigueDays {
		score *= fatigueFactor
	}

	preference := clamp(s.Preferences.Preference(employee, date, template), -1, 1)
	score *= 1 + preference*preferenceWeight

	// Clamped once, after every adjustment
	return clamp(score, 0, 1)
}

// Score scores with neutral preferences
func Score(r repository.Reader, employee model.Employee, date time.Time, template model.ShiftTemplate, rosterAverage float64) float64 {
	return NewScorer(nil).Score(r, employee, date, template, rosterAverage)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
