// Package catalog holds the static business rules the validator and the
// suggestion generator are configured with.
package catalog

import (
	"fmt"
	"time"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// BusinessHours is the daily window a shift must start and end within
type BusinessHours struct {
	Open  string `yaml:"open" validate:"required"`
	Close string `yaml:"close" validate:"required"`
}

// Staffing holds the minimum number of overlapping schedules per shift classification
type Staffing struct {
	// Weekday minima keyed by template code; CUSTOM shifts use DefaultMinimum
	Weekday map[model.ShiftCode]int `yaml:"weekday"`
	// Weekend minimum always takes precedence on Saturdays and Sundays
	WeekendMinimum int `yaml:"weekendMinimum" validate:"min=0"`
	DefaultMinimum int `yaml:"defaultMinimum" validate:"min=0"`
}

// Catalog is the rule configuration loaded at startup
type Catalog struct {
	BusinessHours BusinessHours         `yaml:"businessHours"`
	Templates     []model.ShiftTemplate `yaml:"templates" validate:"min=1,dive"`
	Staffing      Staffing              `yaml:"staffing"`

	MinShiftHours            float64 `yaml:"minShiftHours" validate:"gte=0"`
	MaxShiftHours            float64 `yaml:"maxShiftHours" validate:"gtfield=MinShiftHours"`
	BufferTimeBetweenShifts  float64 `yaml:"bufferTimeBetweenShifts" validate:"gte=0"`
	MaxConsecutiveDays       int     `yaml:"maxConsecutiveDays" validate:"min=1"`
	WeeklyMaxHours           float64 `yaml:"weeklyMaxHours" validate:"gt=0"`
	MaxWeeklyHoursDifference float64 `yaml:"maxWeeklyHoursDifference" validate:"gte=0"`

	// Suggestion tuning
	UsabilityFloor     float64 `yaml:"usabilityFloor" validate:"gte=0,lte=1"`
	ShortageConfidence float64 `yaml:"shortageConfidence" validate:"gte=0,lte=1"`
}

// Default returns the catalog used when no configuration overrides it
func Default() *Catalog {
	return &Catalog{
		BusinessHours: BusinessHours{Open: "09:00", Close: "21:00"},
		Templates: []model.ShiftTemplate{
			{Name: "Morning", Code: model.ShiftMorning, Start: "09:00", End: "13:00"},
			{Name: "Afternoon", Code: model.ShiftAfternoon, Start: "13:00", End: "17:00"},
			{Name: "Evening", Code: model.ShiftEvening, Start: "17:00", End: "21:00"},
			{Name: "Full day", Code: model.ShiftFullDay, Start: "09:00", End: "21:00"},
			{Name: "Rest", Code: model.ShiftRest, Rest: true},
		},
		Staffing: Staffing{
			Weekday: map[model.ShiftCode]int{
				model.ShiftMorning:   2,
				model.ShiftAfternoon: 2,
				model.ShiftEvening:   2,
				model.ShiftFullDay:   1,
			},
			WeekendMinimum: 3,
			DefaultMinimum: 1,
		},
		MinShiftHours:            4,
		MaxShiftHours:            12,
		BufferTimeBetweenShifts:  8,
		MaxConsecutiveDays:       6,
		WeeklyMaxHours:           40,
		MaxWeeklyHoursDifference: 8,
		UsabilityFloor:           0.5,
		ShortageConfidence:       0.3,
	}
}

// Check verifies the parts of the catalog that struct tags cannot:
// parseable times, templates inside business hours and unique codes.
func (c *Catalog) Check() error {
	if _, err := c.BusinessInterval(); err != nil {
		return fmt.Errorf("business hours: %w", err)
	}

	seen := make(map[model.ShiftCode]bool)
	for i, tmpl := range c.Templates {
		if seen[tmpl.Code] {
			return fmt.Errorf("templates[%d]: duplicate code %s", i, tmpl.Code)
		}
		seen[tmpl.Code] = true

		if tmpl.Code == model.ShiftCustom {
			return fmt.Errorf("templates[%d]: %s is reserved", i, model.ShiftCustom)
		}
		if tmpl.Rest {
			continue
		}
		if _, err := shiftcalc.ParseInterval(tmpl.Start, tmpl.End); err != nil {
			return fmt.Errorf("templates[%d] %s: %w", i, tmpl.Code, err)
		}
	}

	for code, minimum := range c.Staffing.Weekday {
		if minimum < 0 {
			return fmt.Errorf("staffing minimum for %s must not be negative", code)
		}
	}

	return nil
}

// BusinessInterval returns the business hours as an interval
func (c *Catalog) BusinessInterval() (shiftcalc.Interval, error) {
	return shiftcalc.ParseInterval(c.BusinessHours.Open, c.BusinessHours.Close)
}

// Template returns the template with the given code
func (c *Catalog) Template(code model.ShiftCode) (model.ShiftTemplate, bool) {
	for _, tmpl := range c.Templates {
		if tmpl.Code == code {
			return tmpl, true
		}
	}
	return model.ShiftTemplate{}, false
}

// WorkTemplates returns the templates that can be staffed (everything but rest)
func (c *Catalog) WorkTemplates() []model.ShiftTemplate {
	templates := make([]model.ShiftTemplate, 0, len(c.Templates))
	for _, tmpl := range c.Templates {
		if !tmpl.Rest {
			templates = append(templates, tmpl)
		}
	}
	return templates
}

// MinimumStaffing returns the required number of overlapping schedules for a
// shift classification on the given date
func (c *Catalog) MinimumStaffing(code model.ShiftCode, date time.Time) int {
	if shiftcalc.IsWeekend(date) {
		return c.Staffing.WeekendMinimum
	}
	if minimum, ok := c.Staffing.Weekday[code]; ok {
		return minimum
	}
	return c.Staffing.DefaultMinimum
}
