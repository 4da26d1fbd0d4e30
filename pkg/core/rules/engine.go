// Package rules implements the six independent rule checks a schedule
// candidate must pass, and the engine that runs them.
package rules

import "github.com/jakechorley/shift-rules/pkg/core/model"

// Engine runs every checker, in order, without short-circuiting
type Engine struct {
	checkers []Checker
}

// NewEngine creates an engine with the given checkers
func NewEngine(checkers ...Checker) *Engine {
	return &Engine{checkers: checkers}
}

// DefaultEngine returns the engine with the six standard rules
func DefaultEngine() *Engine {
	return NewEngine(
		BasicTimeSlot{},
		EmployeeAvailability{},
		MinimumStaffing{},
		ConsecutiveWorkLimits{},
		FairnessDistribution{},
		SpecialRequirements{},
	)
}

// Checkers returns the rules this engine runs
func (e *Engine) Checkers() []Checker {
	return e.checkers
}

// Validate runs all checkers and concatenates their violations. Every rule is
// run even after an ERROR so callers see every reason at once.
func (e *Engine) Validate(candidate *Candidate, ctx *Context) model.ValidationResult {
	violations := []model.Violation{}
	for _, checker := range e.checkers {
		violations = append(violations, checker.Check(candidate, ctx)...)
	}
	return model.NewValidationResult(violations)
}
