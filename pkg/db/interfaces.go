// Package db defines the persistence contract for schedules and employees and
// moves records between a store and the in-memory repository.
package db

import (
	"context"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// ScheduleStore persists schedule records. InsertSchedules is idempotent on
// record id; a duplicate dedup key is an ErrConflict.
type ScheduleStore interface {
	GetSchedules(ctx context.Context) ([]model.ScheduleRecord, error)
	InsertSchedules(ctx context.Context, records []model.ScheduleRecord) error
}

// EmployeeStore persists the roster. InsertEmployees upserts on id.
type EmployeeStore interface {
	GetEmployees(ctx context.Context) ([]model.Employee, error)
	InsertEmployees(ctx context.Context, employees []model.Employee) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and sqlite.DB implement this interface.
type Database interface {
	ScheduleStore
	EmployeeStore
	RunMigrations(ctx context.Context) error
	Close()
}
