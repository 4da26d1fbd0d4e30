package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

const uniqueViolation = "23505"

// GetSchedules retrieves all schedule records in creation order
func (d *DB) GetSchedules(ctx context.Context) ([]model.ScheduleRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, employee_id, store_id, date, shift_start, shift_end, shift_type,
		       hours, status, violation_warnings, created_at, created_by, notes, dedup_key
		FROM schedule
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var records []model.ScheduleRecord
	for rows.Next() {
		var r model.ScheduleRecord
		var date time.Time
		var storeID, createdBy, notes, dedupKey *string
		if err := rows.Scan(&r.ID, &r.EmployeeID, &storeID, &date, &r.ShiftStart, &r.ShiftEnd, &r.ShiftType,
			&r.Hours, &r.Status, &r.ViolationWarnings, &r.CreatedAt, &createdBy, &notes, &dedupKey); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		r.Date = date.Format(model.DateLayout)
		r.CreatedAt = r.CreatedAt.UTC()
		r.StoreID = deref(storeID)
		r.CreatedBy = deref(createdBy)
		r.Notes = deref(notes)
		r.DedupKey = deref(dedupKey)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return records, nil
}

// InsertSchedules inserts schedule records in one transaction.
// Records already stored under the same id are left untouched.
func (d *DB) InsertSchedules(ctx context.Context, records []model.ScheduleRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		warnings := r.ViolationWarnings
		if warnings == nil {
			warnings = []model.Violation{}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO schedule (id, employee_id, store_id, date, shift_start, shift_end, shift_type,
			                      hours, status, violation_warnings, created_at, created_by, notes, dedup_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.EmployeeID, nullable(r.StoreID), r.Date, r.ShiftStart, r.ShiftEnd, r.ShiftType,
			r.Hours, r.Status, warnings, r.CreatedAt.UTC(), nullable(r.CreatedBy), nullable(r.Notes), nullable(r.DedupKey))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("schedule %s clashes with a stored schedule (%s): %w", r.ID, pgErr.ConstraintName, model.ErrConflict)
			}
			return fmt.Errorf("failed to insert schedule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
