package rules

import (
	"time"

	"github.com/jakechorley/shift-rules/pkg/core/catalog"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// FairnessScope decides which part of the roster the fairness spread is computed over
type FairnessScope string

const (
	// ScopeCompany compares the candidate against every roster employee
	ScopeCompany FairnessScope = "company"
	// ScopeStore compares the candidate only against roster employees of the same store
	ScopeStore FairnessScope = "store"
)

// IsValid returns true for a known scope
func (s FairnessScope) IsValid() bool {
	return s == ScopeCompany || s == ScopeStore
}

// SpecialEvents provides holidays and per-employee training sessions
type SpecialEvents interface {
	// Holiday returns the holiday name and true if date is a public holiday
	Holiday(date time.Time) (string, bool)
	// EventsFor returns the special events registered for the employee on date
	EventsFor(employeeID string, date time.Time) []model.SpecialEvent
}

// Candidate is a parsed schedule input ready to be checked
type Candidate struct {
	Input     model.ScheduleInput
	Date      time.Time
	Interval  shiftcalc.Interval
	Hours     float64
	ShiftType model.ShiftCode
}

// NewCandidate parses the input's date and times. Any malformed value is a FormatError.
func NewCandidate(input model.ScheduleInput, templates []model.ShiftTemplate) (*Candidate, error) {
	date, err := shiftcalc.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	interval, err := shiftcalc.ParseInterval(input.ShiftStart, input.ShiftEnd)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Input:     input,
		Date:      date,
		Interval:  interval,
		Hours:     interval.Hours(),
		ShiftType: shiftcalc.ClassifyInterval(interval, templates),
	}, nil
}

// EmployeeID is shorthand for the candidate's employee
func (c *Candidate) EmployeeID() string {
	return c.Input.EmployeeID
}

// DateString returns the candidate's date in DateLayout
func (c *Candidate) DateString() string {
	return shiftcalc.FormatDate(c.Date)
}

// Context is everything a checker may read besides the candidate
type Context struct {
	Repo    repository.Reader
	Catalog *catalog.Catalog

	// Roster is optional; fairness is skipped without it
	Roster        []model.Employee
	FairnessScope FairnessScope

	// Events is optional; special requirements are skipped without it
	Events SpecialEvents
}

// Checker is one independent rule category.
// Check must not mutate anything it is given and returns no violations when the rule holds.
type Checker interface {
	Name() model.RuleName
	Check(candidate *Candidate, ctx *Context) []model.Violation
}

func violation(rule model.RuleName, severity model.Severity, message string, details map[string]any) model.Violation {
	return model.Violation{Rule: rule, Severity: severity, Message: message, Details: details}
}
