package model

import "fmt"

// Severity is the weight of a single rule finding
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// IsValid returns true for the three known severities
func (s Severity) IsValid() bool {
	return s == SeverityError || s == SeverityWarning || s == SeverityInfo
}

// RuleName identifies the rule that produced a violation
type RuleName string

const (
	RuleBasicTimeSlot         RuleName = "basicTimeSlot"
	RuleEmployeeAvailability  RuleName = "employeeAvailability"
	RuleMinimumStaffing       RuleName = "minimumStaffing"
	RuleConsecutiveWorkLimits RuleName = "consecutiveWorkLimits"
	RuleFairnessDistribution  RuleName = "fairnessDistribution"
	RuleSpecialRequirements   RuleName = "specialRequirements"
)

// Violation is a single rule-check finding
type Violation struct {
	Rule     RuleName       `json:"rule"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Rule, v.Message)
}

// OverallStatus summarises a validation run
type OverallStatus string

const (
	StatusFailed  OverallStatus = "FAILED"
	StatusWarning OverallStatus = "WARNING"
	StatusPassed  OverallStatus = "PASSED"
)

// ValidationResult is the full, ordered set of violations for a candidate
type ValidationResult struct {
	Violations    []Violation
	OverallStatus OverallStatus
}

// NewValidationResult derives the overall status from the worst severity present.
// Violations with an unknown severity are treated as errors.
func NewValidationResult(violations []Violation) ValidationResult {
	if violations == nil {
		violations = []Violation{}
	}

	status := StatusPassed
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			status = StatusFailed
		case SeverityWarning:
			if status != StatusFailed {
				status = StatusWarning
			}
		case SeverityInfo:
		default:
			status = StatusFailed
		}
	}

	return ValidationResult{
		Violations:    violations,
		OverallStatus: status,
	}
}

// Failed returns true if any violation blocks creation
func (r ValidationResult) Failed() bool {
	return r.OverallStatus == StatusFailed
}

// BySeverity returns the violations with the given severity, in order
func (r ValidationResult) BySeverity(severity Severity) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == severity {
			out = append(out, v)
		}
	}
	return out
}

// NonBlocking returns the warnings and infos that are stored on a created record
func (r ValidationResult) NonBlocking() []Violation {
	out := []Violation{}
	for _, v := range r.Violations {
		if v.Severity != SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// HasRule returns true if any violation of the given rule and severity is present
func (r ValidationResult) HasRule(rule RuleName, severity Severity) bool {
	for _, v := range r.Violations {
		if v.Rule == rule && v.Severity == severity {
			return true
		}
	}
	return false
}
