package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// GetEmployees retrieves all employees ordered by id
func (d *DB) GetEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, store_id, skill, preference, email, status
		FROM employee
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		var storeID, skill, email, status *string
		if err := rows.Scan(&e.ID, &e.Name, &storeID, &skill, &e.Preference, &email, &status); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.StoreID = deref(storeID)
		e.Skill = deref(skill)
		e.Email = deref(email)
		e.Status = deref(status)
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// InsertEmployees upserts employees by id
func (d *DB) InsertEmployees(ctx context.Context, employees []model.Employee) error {
	if len(employees) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range employees {
		_, err := tx.Exec(ctx, `
			INSERT INTO employee (id, name, store_id, skill, preference, email, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				store_id = EXCLUDED.store_id,
				skill = EXCLUDED.skill,
				preference = EXCLUDED.preference,
				email = EXCLUDED.email,
				status = EXCLUDED.status,
				updated_at = NOW()
		`, e.ID, e.Name, nullable(e.StoreID), nullable(e.Skill), e.Preference, nullable(e.Email), nullable(e.Status))
		if err != nil {
			return fmt.Errorf("failed to upsert employee %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
