package suggest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

var morning = model.ShiftTemplate{Name: "Morning", Code: model.ShiftMorning, Start: "09:00", End: "13:00"}

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

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := shiftcalc.ParseDate(value)
	require.NoError(t, err)
	return d
}

type fixedPreferences float64

func (p fixedPreferences) Preference(model.Employee, time.Time, model.ShiftTemplate) float64 {
	return float64(p)
}

func TestScore_ZeroWhenAlreadyScheduled(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-12", "17:00", "21:00")

	score := Score(store, model.Employee{ID: "1"}, mustDate(t, "2025-08-12"), morning, 0)
	assert.Equal(t, 0.0, score)
}

func TestScore_Adjustments(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "busy", "2025-08-11", "09:00", "21:00") // 12h this week
	seed(t, store, "light", "2025-08-11", "09:00", "13:00") // 4h this week
	date := mustDate(t, "2025-08-13")

	tests := []struct {
		name     string
		employee string
		average  float64
		expected float64
	}{
		{name: "above average", employee: "busy", average: 8, expected: 0.7},
		{name: "below 80% of average", employee: "light", average: 8, expected: 1.0}, // 1.3 clamped
		{name: "between 80% and 100% of average", employee: "light", average: 4.5, expected: 1.0},
		{name: "no hours and no average", employee: "new", average: 0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(store, model.Employee{ID: tt.employee}, date, morning, tt.average)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestScore_Fatigue(t *testing.T) {
	store := repository.NewMemoryStore()
	for _, date := range []string{"2025-08-04", "2025-08-05", "2025-08-06", "2025-08-07", "2025-08-08"} {
		seed(t, store, "1", date, "09:00", "13:00")
	}

	// 20h this week against an average of 20: no workload adjustment, streak of 5
	score := Score(store, model.Employee{ID: "1"}, mustDate(t, "2025-08-09"), morning, 20)
	assert.InDelta(t, 0.6, score, 1e-9)

	// Workload and fatigue compound: 0.7 * 0.6
	score = Score(store, model.Employee{ID: "1"}, mustDate(t, "2025-08-09"), morning, 10)
	assert.InDelta(t, 0.42, score, 1e-9)
}

func TestScore_Preferences(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "1", "2025-08-11", "09:00", "21:00")
	date := mustDate(t, "2025-08-13")
	employee := model.Employee{ID: "1", Preference: 0.5}

	// 0.7 base from being above average
	assert.InDelta(t, 0.7*1.1, NewScorer(RosterPreferences{}).Score(store, employee, date, morning, 4), 1e-9)
	assert.InDelta(t, 0.7, NewScorer(nil).Score(store, employee, date, morning, 4), 1e-9)
	assert.InDelta(t, 0.7*0.8, NewScorer(fixedPreferences(-1)).Score(store, employee, date, morning, 4), 1e-9)

	// Out-of-range preferences are clamped to [-1, 1]
	assert.InDelta(t, 0.7*0.8, NewScorer(fixedPreferences(-7)).Score(store, employee, date, morning, 4), 1e-9)
}

func TestScore_ClampedAfterAllAdjustments(t *testing.T) {
	store := repository.NewMemoryStore()
	for _, date := range []string{"2025-08-06", "2025-08-07", "2025-08-08", "2025-08-09", "2025-08-10"} {
		seed(t, store, "1", date, "09:00", "13:00")
	}

	// New week: 0h vs average 10 -> 1.3, streak 5 -> 0.6, total 0.78 (not 1.0*0.6)
	score := Score(store, model.Employee{ID: "1"}, mustDate(t, "2025-08-11"), morning, 10)
	assert.InDelta(t, 0.78, score, 1e-9)
}
