package model

import (
	"maps"
	"time"
)

// DateLayout is the layout used for every calendar date in the module
const DateLayout = "2006-01-02"

// ShiftCode identifies a shift template, or CUSTOM when no template matches
type ShiftCode string

const (
	ShiftMorning   ShiftCode = "MORNING"
	ShiftAfternoon ShiftCode = "AFTERNOON"
	ShiftEvening   ShiftCode = "EVENING"
	ShiftFullDay   ShiftCode = "FULL_DAY"
	ShiftRest      ShiftCode = "REST"
	ShiftCustom    ShiftCode = "CUSTOM"
)

// ShiftTemplate is a named, fixed time interval from the rule catalog
type ShiftTemplate struct {
	Name  string    `yaml:"name" json:"name" validate:"required"`
	Code  ShiftCode `yaml:"code" json:"code" validate:"required"`
	Start string    `yaml:"start" json:"start,omitempty" validate:"required_unless=Rest true"`
	End   string    `yaml:"end" json:"end,omitempty" validate:"required_unless=Rest true"`
	// Rest templates carry no interval and are never classified or suggested
	Rest bool `yaml:"rest,omitempty" json:"rest,omitempty"`
}

// ScheduleStatus is the lifecycle state of a schedule record
type ScheduleStatus string

const (
	StatusScheduled ScheduleStatus = "SCHEDULED"
)

// ScheduleRecord is a persisted work assignment.
// Hours and ShiftType are derived from ShiftStart/ShiftEnd when the record is created.
type ScheduleRecord struct {
	ID                string         `json:"id"`
	EmployeeID        string         `json:"employeeId"`
	StoreID           string         `json:"storeId,omitempty"`
	Date              string         `json:"date"`       // DateLayout
	ShiftStart        string         `json:"shiftStart"` // HH:MM
	ShiftEnd          string         `json:"shiftEnd"`   // HH:MM
	ShiftType         ShiftCode      `json:"shiftType"`
	Hours             float64        `json:"hours"`
	Status            ScheduleStatus `json:"status"`
	ViolationWarnings []Violation    `json:"violationWarnings"`
	CreatedAt         time.Time      `json:"createdAt"`
	CreatedBy         string         `json:"createdBy,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	DedupKey          string         `json:"dedupKey,omitempty"` // client-assigned, empty if none
}

// Clone returns a copy that shares no slices or maps with r
func (r ScheduleRecord) Clone() ScheduleRecord {
	r.ViolationWarnings = CloneViolations(r.ViolationWarnings)
	return r
}

// CloneViolations copies the violations and their details
func CloneViolations(violations []Violation) []Violation {
	if violations == nil {
		return nil
	}
	out := make([]Violation, len(violations))
	for i, v := range violations {
		v.Details = maps.Clone(v.Details)
		out[i] = v
	}
	return out
}

// ScheduleInput is a candidate assignment as supplied by a caller
type ScheduleInput struct {
	EmployeeID string `validate:"required"`
	StoreID    string
	Date       string `validate:"required,datetime=2006-01-02"`
	ShiftStart string `validate:"required"`
	ShiftEnd   string `validate:"required"`
	CreatedBy  string
	Notes      string `validate:"max=500"`
	DedupKey   string `validate:"max=128"`
}

// WeeklyStatistics aggregates an employee's schedules over one ISO week
type WeeklyStatistics struct {
	EmployeeID  string
	WeekStart   string // Monday, DateLayout
	TotalHours  float64
	TotalShifts int
}

// Employee is a roster entry supplied by the employee directory
type Employee struct {
	ID      string
	Name    string
	StoreID string
	Skill   string
	// Preference ranges from -1 (avoid work) to 1 (wants work); 0 is neutral
	Preference float64
	Email      string
	Status     string
}

// IsActive reports whether the employee can be scheduled
func (e Employee) IsActive() bool {
	return e.Status == "" || e.Status == "Active"
}

// SpecialEvent is a training session or other event blocking an employee's time
type SpecialEvent struct {
	EmployeeID string
	Name       string
	Date       string
	Start      string
	End        string
}

// RankedEmployee is an employee together with their suitability score for a shift
type RankedEmployee struct {
	EmployeeID string  `json:"employeeId"`
	Name       string  `json:"name,omitempty"`
	Score      float64 `json:"score"`
}

// Suggestion is a staffing recommendation for one date and shift template
type Suggestion struct {
	Date                 string           `json:"date"`
	Shift                ShiftTemplate    `json:"shift"`
	RequiredStaff        int              `json:"requiredStaff"`
	RecommendedEmployees []RankedEmployee `json:"recommendedEmployees"`
	Confidence           float64          `json:"confidence"`
	Reasoning            string           `json:"reasoning"`
	Issues               []string         `json:"issues,omitempty"`
}

// HasShortage reports whether the suggestion could not be staffed with usable employees
func (s Suggestion) HasShortage() bool {
	return len(s.Issues) > 0
}

// SuggestionSet is the output of a suggestion pass over one week
type SuggestionSet struct {
	WeekStart   string       `json:"weekStart"`
	Suggestions []Suggestion `json:"suggestions"`
	Shortages   int          `json:"shortages"`
}
