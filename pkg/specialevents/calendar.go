// Package specialevents answers which dates are public holidays and which
// employees have training or other events on a date. Entries are either a
// single date or a recurrence rule.
package specialevents

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// Holiday is a public holiday on a fixed date or recurring by RRule
type Holiday struct {
	Name  string `yaml:"name" validate:"required"`
	Date  string `yaml:"date,omitempty" validate:"required_without=RRule,omitempty,datetime=2006-01-02"`
	RRule string `yaml:"rrule,omitempty" validate:"required_without=Date"`
}

// Training blocks part of an employee's day, once or recurring by RRule
type Training struct {
	EmployeeID string `yaml:"employeeId" validate:"required"`
	Name       string `yaml:"name" validate:"required"`
	Date       string `yaml:"date,omitempty" validate:"required_without=RRule,omitempty,datetime=2006-01-02"`
	RRule      string `yaml:"rrule,omitempty" validate:"required_without=Date"`
	// From anchors the recurrence; rules with INTERVAL > 1 need it
	From  string `yaml:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// recurrence matches dates either exactly or through a parsed rule
type recurrence struct {
	date   string
	option *rrule.ROption
	from   time.Time
}

func newRecurrence(date, rule, from string) (recurrence, error) {
	if rule == "" {
		if _, err := shiftcalc.ParseDate(date); err != nil {
			return recurrence{}, err
		}
		return recurrence{date: date}, nil
	}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		return recurrence{}, fmt.Errorf("invalid rrule %q: %w", rule, err)
	}

	r := recurrence{option: option}
	if from != "" {
		if r.from, err = shiftcalc.ParseDate(from); err != nil {
			return recurrence{}, err
		}
	}
	return r, nil
}

// matches builds a fresh rule per call so a Calendar is safe for concurrent use
func (r recurrence) matches(date time.Time) bool {
	if r.option == nil {
		return r.date == shiftcalc.FormatDate(date)
	}

	option := *r.option
	option.Dtstart = r.from
	if option.Dtstart.IsZero() || option.Dtstart.After(date) {
		option.Dtstart = date.AddDate(-1, 0, 0)
	}

	rule, err := rrule.NewRRule(option)
	if err != nil {
		return false
	}
	return len(rule.Between(date, date, true)) > 0
}

type holiday struct {
	name string
	when recurrence
}

type training struct {
	event model.SpecialEvent
	when  recurrence
}

// Calendar is an immutable set of holidays and trainings
type Calendar struct {
	holidays  []holiday
	trainings map[string][]training
}

// NewCalendar parses every entry up front and fails on the first bad one
func NewCalendar(holidays []Holiday, trainings []Training) (*Calendar, error) {
	c := &Calendar{trainings: make(map[string][]training)}

	for i, h := range holidays {
		when, err := newRecurrence(h.Date, h.RRule, "")
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %d (%s): %w", i, h.Name, err)
		}
		c.holidays = append(c.holidays, holiday{name: h.Name, when: when})
	}

	for i, t := range trainings {
		if _, err := shiftcalc.ParseInterval(t.Start, t.End); err != nil {
			return nil, fmt.Errorf("invalid training %d (%s): %w", i, t.Name, err)
		}
		when, err := newRecurrence(t.Date, t.RRule, t.From)
		if err != nil {
			return nil, fmt.Errorf("invalid training %d (%s): %w", i, t.Name, err)
		}
		c.trainings[t.EmployeeID] = append(c.trainings[t.EmployeeID], training{
			event: model.SpecialEvent{
				EmployeeID: t.EmployeeID,
				Name:       t.Name,
				Start:      t.Start,
				End:        t.End,
			},
			when: when,
		})
	}

	return c, nil
}

// Holiday returns the name of the first holiday falling on date
func (c *Calendar) Holiday(date time.Time) (string, bool) {
	for _, h := range c.holidays {
		if h.when.matches(date) {
			return h.name, true
		}
	}
	return "", false
}

// EventsFor returns the employee's trainings occurring on date
func (c *Calendar) EventsFor(employeeID string, date time.Time) []model.SpecialEvent {
	var events []model.SpecialEvent
	for _, t := range c.trainings[employeeID] {
		if t.when.matches(date) {
			event := t.event
			event.Date = shiftcalc.FormatDate(date)
			events = append(events, event)
		}
	}
	return events
}
