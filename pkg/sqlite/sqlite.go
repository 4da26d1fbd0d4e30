// Package sqlite stores schedules and employees in a local SQLite file, for
// single-machine use without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB provides database operations using SQLite
type DB struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDB opens (creating if needed) the database at path. ":memory:" is allowed.
func NewDB(ctx context.Context, path string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	logger.Debug("Opened sqlite database", zap.String("path", path))
	return &DB{db: db, logger: logger}, nil
}

// Close closes the database
func (d *DB) Close() {
	d.db.Close()
}

// RunMigrations applies every embedded migration not yet recorded
func (d *DB) RunMigrations(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, filename := range files {
		var exists int
		err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, filename).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", filename, err)
		}
		if exists > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", filename, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)`,
			filename, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", filename, err)
		}

		d.logger.Info("Applied migration", zap.String("filename", filename))
	}

	return nil
}

// GetSchedules retrieves all schedule records in creation order
func (d *DB) GetSchedules(ctx context.Context) ([]model.ScheduleRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
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
		var warnings, createdAt string
		var dedupKey sql.NullString
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.StoreID, &r.Date, &r.ShiftStart, &r.ShiftEnd, &r.ShiftType,
			&r.Hours, &r.Status, &warnings, &createdAt, &r.CreatedBy, &r.Notes, &dedupKey); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &r.ViolationWarnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings of schedule %s: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of schedule %s: %w", r.ID, err)
		}
		r.DedupKey = dedupKey.String
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		warnings := r.ViolationWarnings
		if warnings == nil {
			warnings = []model.Violation{}
		}
		encoded, err := json.Marshal(warnings)
		if err != nil {
			return fmt.Errorf("failed to encode warnings of schedule %s: %w", r.ID, err)
		}

		var dedupKey sql.NullString
		if r.DedupKey != "" {
			dedupKey = sql.NullString{String: r.DedupKey, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO schedule (id, employee_id, store_id, date, shift_start, shift_end, shift_type,
			                      hours, status, violation_warnings, created_at, created_by, notes, dedup_key)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.EmployeeID, r.StoreID, r.Date, r.ShiftStart, r.ShiftEnd, string(r.ShiftType),
			r.Hours, string(r.Status), string(encoded), r.CreatedAt.UTC().Format(time.RFC3339Nano),
			r.CreatedBy, r.Notes, dedupKey)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("schedule %s clashes with a stored schedule: %w", r.ID, model.ErrConflict)
			}
			return fmt.Errorf("failed to insert schedule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEmployees retrieves all employees ordered by id
func (d *DB) GetEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := d.db.QueryContext(ctx, `
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
		if err := rows.Scan(&e.ID, &e.Name, &e.StoreID, &e.Skill, &e.Preference, &e.Email, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range employees {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employee (id, name, store_id, skill, preference, email, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				store_id = excluded.store_id,
				skill = excluded.skill,
				preference = excluded.preference,
				email = excluded.email,
				status = excluded.status
		`, e.ID, e.Name, e.StoreID, e.Skill, e.Preference, e.Email, e.Status)
		if err != nil {
			return fmt.Errorf("failed to upsert employee %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
