package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rules/pkg/core/catalog"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// mockEvents implements SpecialEvents for testing
type mockEvents struct {
	holidays map[string]string
	events   map[string][]model.SpecialEvent // keyed by employee|date
}

func (m *mockEvents) Holiday(date time.Time) (string, bool) {
	name, ok := m.holidays[shiftcalc.FormatDate(date)]
	return name, ok
}

func (m *mockEvents) EventsFor(employeeID string, date time.Time) []model.SpecialEvent {
	return m.events[employeeID+"|"+shiftcalc.FormatDate(date)]
}

func seed(t *testing.T, store *repository.MemoryStore, employeeID, date, start, end string) {
	t.Helper()
	hours, err := shiftcalc.ShiftHours(start, end)
	require.NoError(t, err)
	_, err = store.Insert(model.ScheduleRecord{
		ID:         fmt.Sprintf("%s-%s", employeeID, date),
		EmployeeID: employeeID,
		Date:       date,
		ShiftStart: start,
		ShiftEnd:   end,
		Hours:      hours,
		Status:     model.StatusScheduled,
	})
	require.NoError(t, err)
}

func candidate(t *testing.T, employeeID, date, start, end string) *Candidate {
	t.Helper()
	c, err := NewCandidate(model.ScheduleInput{
		EmployeeID: employeeID,
		StoreID:    "store-1",
		Date:       date,
		ShiftStart: start,
		ShiftEnd:   end,
	}, catalog.Default().Templates)
	require.NoError(t, err)
	return c
}

func newContext(store repository.Reader) *Context {
	return &Context{Repo: store, Catalog: catalog.Default()}
}

func TestNewCandidate_DerivesHoursAndType(t *testing.T) {
	c := candidate(t, "1", "2025-08-12", "09:00", "13:00")
	assert.Equal(t, 4.0, c.Hours)
	assert.Equal(t, model.ShiftMorning, c.ShiftType)
	assert.Equal(t, "2025-08-12", c.DateString())

	_, err := NewCandidate(model.ScheduleInput{EmployeeID: "1", Date: "2025-13-01", ShiftStart: "09:00", ShiftEnd: "13:00"}, nil)
	var formatErr *model.FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestBasicTimeSlot(t *testing.T) {
	ctx := newContext(repository.NewMemoryStore())

	assert.Empty(t, BasicTimeSlot{}.Check(candidate(t, "1", "2025-08-12", "09:00", "17:00"), ctx))

	violations := BasicTimeSlot{}.Check(candidate(t, "1", "2025-08-12", "08:00", "17:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityError, violations[0].Severity)
	assert.Equal(t, model.RuleBasicTimeSlot, violations[0].Rule)

	violations = BasicTimeSlot{}.Check(candidate(t, "1", "2025-08-12", "18:00", "21:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityWarning, violations[0].Severity, "3h is below the minimum")

	violations = BasicTimeSlot{}.Check(candidate(t, "1", "2025-08-12", "07:00", "20:00"), ctx)
	require.Len(t, violations, 2, "outside hours and longer than 12h")
}

func TestEmployeeAvailability_SameDay(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-12", "09:00", "13:00")

	// Non-overlapping second shift is still a double booking
	violations := EmployeeAvailability{}.Check(candidate(t, "1", "2025-08-12", "17:00", "21:00"), newContext(store))
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityError, violations[0].Severity)
	assert.Equal(t, "1-2025-08-12", violations[0].Details["existingScheduleId"])

	assert.Empty(t, EmployeeAvailability{}.Check(candidate(t, "2", "2025-08-12", "09:00", "13:00"), newContext(store)))
}

func TestEmployeeAvailability_RestBuffer(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-11", "17:00", "21:00")

	// 24 - 21 + 9 = 12h rest
	assert.Empty(t, EmployeeAvailability{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), newContext(store)))

	ctx := newContext(store)
	ctx.Catalog.BufferTimeBetweenShifts = 13
	violations := EmployeeAvailability{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityWarning, violations[0].Severity)
	assert.Equal(t, 12.0, violations[0].Details["restHours"])
}

func TestMinimumStaffing(t *testing.T) {
	store := repository.NewMemoryStore()

	// Tuesday morning needs 2: the candidate alone is short
	violations := MinimumStaffing{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), newContext(store))
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityWarning, violations[0].Severity)
	assert.Equal(t, 1, violations[0].Details["staffed"])

	seed(t, store, "2", "2025-08-12", "10:00", "14:00")
	assert.Empty(t, MinimumStaffing{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), newContext(store)))

	// Non-overlapping schedules do not count
	assert.NotEmpty(t, MinimumStaffing{}.Check(candidate(t, "1", "2025-08-12", "17:00", "21:00"), newContext(store)))
}

func TestMinimumStaffing_WeekendMinimum(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "2", "2025-08-16", "09:00", "13:00")

	// Saturday full day would need 1 on a weekday, but the weekend minimum of 3 applies
	violations := MinimumStaffing{}.Check(candidate(t, "1", "2025-08-16", "09:00", "21:00"), newContext(store))
	require.Len(t, violations, 1)
	assert.Equal(t, 3, violations[0].Details["required"])
	assert.Equal(t, 2, violations[0].Details["staffed"])
}

func TestConsecutiveWorkLimits_Streak(t *testing.T) {
	store := repository.NewMemoryStore()
	for _, date := range []string{"2025-08-04", "2025-08-05", "2025-08-06", "2025-08-07", "2025-08-08", "2025-08-09"} {
		seed(t, store, "4", date, "09:00", "13:00")
	}

	violations := ConsecutiveWorkLimits{}.Check(candidate(t, "4", "2025-08-10", "09:00", "13:00"), newContext(store))
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityError, violations[0].Severity)
	assert.Equal(t, 6, violations[0].Details["consecutiveDays"])

	// A gap day resets the streak
	assert.Empty(t, ConsecutiveWorkLimits{}.Check(candidate(t, "4", "2025-08-11", "09:00", "13:00"), newContext(store)))
}

func TestConsecutiveWorkLimits_WeeklyHours(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "2", "2025-08-11", "09:00", "21:00")
	seed(t, store, "2", "2025-08-12", "09:00", "21:00")
	seed(t, store, "2", "2025-08-13", "09:00", "21:00") // 36h

	violations := ConsecutiveWorkLimits{}.Check(candidate(t, "2", "2025-08-15", "09:00", "17:00"), newContext(store))
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityWarning, violations[0].Severity)
	assert.Equal(t, 44.0, violations[0].Details["projectedHours"])

	assert.Empty(t, ConsecutiveWorkLimits{}.Check(candidate(t, "2", "2025-08-15", "09:00", "13:00"), newContext(store)), "exactly 40h is allowed")
}

func TestFairnessDistribution(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-11", "09:00", "17:00")
	seed(t, store, "2", "2025-08-11", "09:00", "13:00")

	ctx := newContext(store)

	// No roster: rule is skipped
	assert.Empty(t, FairnessDistribution{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx))

	ctx.Roster = []model.Employee{{ID: "1", StoreID: "store-1"}, {ID: "2", StoreID: "store-1"}, {ID: "3", StoreID: "store-2"}}

	// 1: 8+4=12, 2: 4, 3: 0 -> spread 12
	violations := FairnessDistribution{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityInfo, violations[0].Severity)
	assert.Equal(t, 12.0, violations[0].Details["spread"])

	// Store scope drops employee 3: spread 12-4 = 8, within limit
	ctx.FairnessScope = ScopeStore
	assert.Empty(t, FairnessDistribution{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx))
}

func TestFairnessDistribution_NeverErrors(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := newContext(store)
	ctx.Roster = []model.Employee{{ID: "1"}, {ID: "2"}}

	violations := FairnessDistribution{}.Check(candidate(t, "1", "2025-08-12", "09:00", "21:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityInfo, violations[0].Severity)
}

func TestSpecialRequirements(t *testing.T) {
	events := &mockEvents{
		holidays: map[string]string{"2025-08-25": "Summer bank holiday"},
		events: map[string][]model.SpecialEvent{
			"1|2025-08-12": {{EmployeeID: "1", Name: "Till training", Date: "2025-08-12", Start: "12:00", End: "14:00"}},
		},
	}
	ctx := newContext(repository.NewMemoryStore())

	assert.Empty(t, SpecialRequirements{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx), "no calendar configured")

	ctx.Events = events

	violations := SpecialRequirements{}.Check(candidate(t, "1", "2025-08-12", "09:00", "13:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityWarning, violations[0].Severity)

	assert.Empty(t, SpecialRequirements{}.Check(candidate(t, "1", "2025-08-12", "14:00", "18:00"), ctx))

	violations = SpecialRequirements{}.Check(candidate(t, "2", "2025-08-25", "09:00", "13:00"), ctx)
	require.Len(t, violations, 1)
	assert.Equal(t, model.SeverityInfo, violations[0].Severity)
}

func TestEngine_RunsEveryRule(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-12", "09:00", "13:00")

	// Outside business hours AND a double booking: both errors are reported
	result := DefaultEngine().Validate(candidate(t, "1", "2025-08-12", "08:00", "17:00"), newContext(store))

	assert.Equal(t, model.StatusFailed, result.OverallStatus)
	assert.True(t, result.HasRule(model.RuleBasicTimeSlot, model.SeverityError))
	assert.True(t, result.HasRule(model.RuleEmployeeAvailability, model.SeverityError))
	assert.Len(t, result.BySeverity(model.SeverityError), 2)

	// Violations come out in rule order
	assert.Equal(t, model.RuleBasicTimeSlot, result.Violations[0].Rule)
}

func TestEngine_Statuses(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "2", "2025-08-12", "09:00", "13:00")

	result := DefaultEngine().Validate(candidate(t, "1", "2025-08-12", "09:00", "13:00"), newContext(store))
	assert.Equal(t, model.StatusPassed, result.OverallStatus)
	assert.Empty(t, result.Violations)

	result = DefaultEngine().Validate(candidate(t, "3", "2025-08-12", "17:00", "21:00"), newContext(store))
	assert.Equal(t, model.StatusWarning, result.OverallStatus)
	assert.True(t, result.HasRule(model.RuleMinimumStaffing, model.SeverityWarning))
}

func TestDefaultEngine_HasSixRules(t *testing.T) {
	names := make([]model.RuleName, 0)
	for _, c := range DefaultEngine().Checkers() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []model.RuleName{
		model.RuleBasicTimeSlot,
		model.RuleEmployeeAvailability,
		model.RuleMinimumStaffing,
		model.RuleConsecutiveWorkLimits,
		model.RuleFairnessDistribution,
		model.RuleSpecialRequirements,
	}, names)
}
