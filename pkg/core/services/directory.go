package services

import (
	"context"
	"sort"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// RosterDirectory is an EmployeeDirectory over a fixed list of employees,
// typically loaded once from the database or the roster sheet
type RosterDirectory struct {
	byID  map[string]model.Employee
	order []string
}

func NewRosterDirectory(employees []model.Employee) *RosterDirectory {
	d := &RosterDirectory{byID: make(map[string]model.Employee, len(employees))}
	for _, e := range employees {
		if _, exists := d.byID[e.ID]; !exists {
			d.order = append(d.order, e.ID)
		}
		d.byID[e.ID] = e
	}
	sort.Strings(d.order)
	return d
}

// GetEmployee returns the employee, or a NotFoundError for unknown or inactive ids
func (d *RosterDirectory) GetEmployee(_ context.Context, id string) (*model.Employee, error) {
	e, ok := d.byID[id]
	if !ok || !e.IsActive() {
		return nil, &model.NotFoundError{Kind: "employee", ID: id}
	}
	return &e, nil
}

// ListEmployees returns active employees ordered by id
func (d *RosterDirectory) ListEmployees(context.Context) ([]model.Employee, error) {
	employees := make([]model.Employee, 0, len(d.order))
	for _, id := range d.order {
		if e := d.byID[id]; e.IsActive() {
			employees = append(employees, e)
		}
	}
	return employees, nil
}
