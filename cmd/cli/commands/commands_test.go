package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/internal/config"
	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// newTestApp builds an app over the memory driver and an inline roster
func newTestApp(t *testing.T) *AppContext {
	t.Helper()

	cfg := config.Default()
	cfg.Roster.Employees = []config.EmployeeConfig{
		{ID: "emp1", Name: "Alice", StoreID: "store-a", Preference: 0.5, Skill: "barista"},
		{ID: "emp2", Name: "Bob", StoreID: "store-a"},
		{ID: "emp3", Name: "Cara", StoreID: "store-b", Status: "Inactive"},
	}
	require.NoError(t, config.Validate(cfg))

	app := &AppContext{}
	require.NoError(t, app.Init(context.Background(), "test", cfg, zap.NewNop()))
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_DoNotLeakGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.Default()
	app := &AppContext{}
	require.NoError(t, app.Init(context.Background(), "test", cfg, zap.NewNop()))
	require.NoError(t, app.Flush())
	require.NoError(t, app.Close())
}

func TestValidateCmd(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, ValidateCmd(app), "emp1", "2025-08-11", "09:00", "13:00")
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, string(model.RuleMinimumStaffing))

	// Nothing was stored
	assert.Equal(t, 0, app.Scheduler.Repository().Len())
}

func TestValidateCmd_MalformedTime(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, ValidateCmd(app), "emp1", "2025-08-11", "9am", "13:00")
	require.Error(t, err)

	var formatErr *model.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestCreateScheduleCmd(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, CreateScheduleCmd(app), "emp1", "2025-08-11", "09:00", "13:00", "--notes", "opening")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule created")
	assert.Contains(t, out, "MORNING")
	assert.Contains(t, out, "store-a", "store filled from the roster")

	records := app.Scheduler.Repository().All()
	require.Len(t, records, 1)
	assert.Equal(t, "opening", records[0].Notes)

	// Second shift on the same day is refused
	out, err = run(t, CreateScheduleCmd(app), "emp1", "2025-08-11", "13:00", "17:00")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED")

	var failure *model.ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.Result.HasRule(model.RuleEmployeeAvailability, model.SeverityError))
	assert.Equal(t, 1, app.Scheduler.Repository().Len())
}

func TestCreateScheduleCmd_InactiveEmployee(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, CreateScheduleCmd(app), "emp3", "2025-08-11", "09:00", "13:00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestWeeklyStatsCmd(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, CreateScheduleCmd(app), "emp1", "2025-08-11", "09:00", "17:00")
	require.NoError(t, err)
	_, err = run(t, CreateScheduleCmd(app), "emp1", "2025-08-12", "09:00", "13:00")
	require.NoError(t, err)

	out, err := run(t, WeeklyStatsCmd(app), "2025-08-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Week starting 2025-08-11")
	assert.Contains(t, out, "emp1")
	assert.Contains(t, out, "12.0")

	out, err = run(t, WeeklyStatsCmd(app), "2025-08-18")
	require.NoError(t, err)
	assert.Contains(t, out, "No schedules in this week.")
}

func TestSuggestCmd_JSON(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, SuggestCmd(app), "2025-08-11", "--templates", "morning", "--min", "MORNING=1", "--weekend-min", "1", "--json")
	require.NoError(t, err)

	var set model.SuggestionSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Equal(t, "2025-08-11", set.WeekStart)
	require.Len(t, set.Suggestions, 7)
	for _, s := range set.Suggestions {
		assert.Equal(t, model.ShiftMorning, s.Shift.Code)
		assert.Equal(t, 1, s.RequiredStaff)
		for _, e := range s.RecommendedEmployees {
			assert.NotEqual(t, "emp3", e.EmployeeID, "inactive employees are never suggested")
		}
	}
}

func TestSuggestCmd_Table(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, SuggestCmd(app), "2025-08-11", "--templates", "EVENING")
	require.NoError(t, err)
	assert.Contains(t, out, "Suggestions for the week of 2025-08-11")
	assert.Contains(t, out, "2025-08-17")
	assert.Contains(t, out, "EVENING")
	assert.Contains(t, out, "Alice")
}

func TestSuggestCmd_BadDate(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, SuggestCmd(app), "next monday")
	require.Error(t, err)
}

func TestListEmployeesCmd(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, ListEmployeesCmd(app))
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 employees")
	assert.Contains(t, out, "- Alice (emp1) - store-a - preference +0.5 [barista]")
	assert.NotContains(t, out, "Cara")
}

func TestImportEmployeesCmd_NeedsDatabase(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, ImportEmployeesCmd(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a postgres or sqlite database")
}
