package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// EmployeeSource lists the employees of an external roster
type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// ImportEmployeesStore defines the database operations needed to import employees
type ImportEmployeesStore interface {
	GetEmployees(ctx context.Context) ([]model.Employee, error)
	InsertEmployees(ctx context.Context, employees []model.Employee) error
}

// ImportEmployeesResult summarizes an import
type ImportEmployeesResult struct {
	Total   int
	Added   int
	Updated int
}

// ImportEmployees copies the source roster into the database. Existing
// employees are updated in place; nobody is ever removed.
func ImportEmployees(ctx context.Context, database ImportEmployeesStore, source EmployeeSource, logger *zap.Logger) (*ImportEmployeesResult, error) {
	logger.Debug("Fetching employees from source")
	incoming, err := source.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	existing, err := database.GetEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stored employees: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.ID] = true
	}

	result := &ImportEmployeesResult{Total: len(incoming)}
	seen := make(map[string]bool, len(incoming))
	toStore := make([]model.Employee, 0, len(incoming))
	for _, e := range incoming {
		if e.ID == "" {
			logger.Warn("Skipping employee without id", zap.String("name", e.Name))
			continue
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate employee id %s in source", e.ID)
		}
		seen[e.ID] = true

		if known[e.ID] {
			result.Updated++
		} else {
			result.Added++
		}
		toStore = append(toStore, e)
	}

	if err := database.InsertEmployees(ctx, toStore); err != nil {
		return nil, fmt.Errorf("failed to store employees: %w", err)
	}

	logger.Info("Imported employees",
		zap.Int("total", result.Total),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated))

	return result, nil
}
