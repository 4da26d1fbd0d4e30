package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/suggest"
)

func TestGenerateSuggestions_ShortageForFourPersonRoster(t *testing.T) {
	s, publisher := newTestScheduler(t)
	mustCreate(t, s, input("1", "2025-08-12", "17:00", "21:00"))
	mustCreate(t, s, input("2", "2025-08-12", "17:00", "21:00"))
	mustCreate(t, s, input("3", "2025-08-12", "13:00", "17:00"))

	roster := []model.Employee{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	set, err := s.GenerateSuggestions(context.Background(), "2025-08-11", roster, &suggest.Requirements{
		Templates: []model.ShiftCode{model.ShiftMorning},
	})
	require.NoError(t, err)

	var tuesday *model.Suggestion
	for i := range set.Suggestions {
		if set.Suggestions[i].Date == "2025-08-12" {
			tuesday = &set.Suggestions[i]
		}
	}
	require.NotNil(t, tuesday)
	assert.Equal(t, 2, tuesday.RequiredStaff)
	assert.Equal(t, 0.3, tuesday.Confidence)
	require.Len(t, tuesday.Issues, 1)
	require.Len(t, tuesday.RecommendedEmployees, 1)
	assert.Equal(t, "4", tuesday.RecommendedEmployees[0].EmployeeID)

	shortages := publisher.ofType(model.EventShortageDetected)
	assert.Len(t, shortages, set.Shortages)
	found := false
	for _, e := range shortages {
		if e.Date == "2025-08-12" {
			found = true
			assert.Equal(t, model.ShiftMorning, e.Suggestion.Shift.Code)
		}
	}
	assert.True(t, found)

	assert.Equal(t, 3, s.Repository().Len(), "suggestions never write")
}

func TestGenerateSuggestions_DefaultsToDirectoryRoster(t *testing.T) {
	directory := NewRosterDirectory([]model.Employee{{ID: "b"}, {ID: "a"}, {ID: "c", Status: "Inactive"}})
	s, _ := newTestScheduler(t, WithDirectory(directory))

	set, err := s.GenerateSuggestions(context.Background(), "2025-08-13", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "2025-08-11", set.WeekStart)
	first := set.Suggestions[0]
	require.Len(t, first.RecommendedEmployees, 2)
	assert.Equal(t, "a", first.RecommendedEmployees[0].EmployeeID)
	assert.Equal(t, "b", first.RecommendedEmployees[1].EmployeeID)
}

func TestGenerateSuggestions_MalformedDate(t *testing.T) {
	s, _ := newTestScheduler(t)

	_, err := s.GenerateSuggestions(context.Background(), "next week", nil, nil)
	var formatErr *model.FormatError
	assert.ErrorAs(t, err, &formatErr)
}
