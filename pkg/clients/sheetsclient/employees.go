package sheetsclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// Columns that must be present in the employees tab header.
// Skill, Preference and Email are read when present.
var requiredEmployeeFields = []string{
	"Employee ID",
	"Name",
	"Store",
	"Status",
}

// ListEmployees retrieves and parses the roster from the configured tab
func (c *Client) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	values, err := c.GetValues(ctx, c.employeesTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	employees, err := parseEmployees(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse employees: %w", err)
	}

	return employees, nil
}

// parseEmployees maps rows to employees using the header row for column positions
func parseEmployees(raw [][]interface{}) ([]model.Employee, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	fieldIndexes := make(map[string]int)
	for i, cell := range raw[0] {
		if name, ok := cell.(string); ok {
			fieldIndexes[strings.TrimSpace(name)] = i
		}
	}
	for _, field := range requiredEmployeeFields {
		if _, ok := fieldIndexes[field]; !ok {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return strings.TrimSpace(fmt.Sprint(row[index]))
	}

	employees := make([]model.Employee, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		id := getField("Employee ID", row)
		// Skip empty rows
		if id == "" {
			continue
		}

		preference := 0.0
		if value := getField("Preference", row); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid preference %q for employee %s in row %d", value, id, i+1)
			}
			if parsed < -1 || parsed > 1 {
				return nil, fmt.Errorf("preference %v for employee %s in row %d is outside [-1, 1]", parsed, id, i+1)
			}
			preference = parsed
		}

		employees = append(employees, model.Employee{
			ID:         id,
			Name:       getField("Name", row),
			StoreID:    getField("Store", row),
			Skill:      getField("Skill", row),
			Preference: preference,
			Email:      getField("Email", row),
			Status:     getField("Status", row),
		})
	}

	return employees, nil
}
