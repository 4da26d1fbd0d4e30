package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := NewDB(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.RunMigrations(ctx))
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.RunMigrations(context.Background()))
}

func TestSchedules_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	records := []model.ScheduleRecord{
		{
			ID:         "a",
			EmployeeID: "1",
			StoreID:    "store-1",
			Date:       "2025-08-12",
			ShiftStart: "09:00",
			ShiftEnd:   "13:00",
			ShiftType:  model.ShiftMorning,
			Hours:      4,
			Status:     model.StatusScheduled,
			ViolationWarnings: []model.Violation{{
				Rule:     model.RuleMinimumStaffing,
				Severity: model.SeverityWarning,
				Message:  "MORNING shift on 2025-08-12 has 1 of 2 required staff",
			}},
			CreatedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
			CreatedBy: "manager",
			DedupKey:  "req-1",
		},
		{
			ID:                "b",
			EmployeeID:        "2",
			Date:              "2025-08-12",
			ShiftStart:        "13:00",
			ShiftEnd:          "24:00",
			ShiftType:         model.ShiftCustom,
			Hours:             11,
			Status:            model.StatusScheduled,
			ViolationWarnings: []model.Violation{},
			CreatedAt:         time.Date(2025, 8, 1, 12, 0, 1, 0, time.UTC),
		},
	}
	require.NoError(t, db.InsertSchedules(ctx, records))

	got, err := db.GetSchedules(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("schedules mismatch (-want +got):\n%s", diff)
	}

	// Same ids again is a no-op
	require.NoError(t, db.InsertSchedules(ctx, records))
	got, err = db.GetSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSchedules_DuplicateDedupKeyIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := model.ScheduleRecord{ID: "a", EmployeeID: "1", Date: "2025-08-12", ShiftStart: "09:00", ShiftEnd: "13:00",
		ShiftType: model.ShiftMorning, Hours: 4, Status: model.StatusScheduled, CreatedAt: time.Now(), DedupKey: "k"}
	second := first
	second.ID = "b"
	second.EmployeeID = "2"

	require.NoError(t, db.InsertSchedules(ctx, []model.ScheduleRecord{first}))
	err := db.InsertSchedules(ctx, []model.ScheduleRecord{second})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestEmployees_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertEmployees(ctx, []model.Employee{
		{ID: "2", Name: "Bob", StoreID: "store-1"},
		{ID: "1", Name: "Alice", Preference: 0.5, Status: "Active"},
	}))
	require.NoError(t, db.InsertEmployees(ctx, []model.Employee{{ID: "2", Name: "Robert", StoreID: "store-2"}}))

	employees, err := db.GetEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, model.Employee{ID: "1", Name: "Alice", Preference: 0.5, Status: "Active"}, employees[0])
	assert.Equal(t, "Robert", employees[1].Name)
	assert.Equal(t, "store-2", employees[1].StoreID)
}
