package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
	"github.com/jakechorley/shift-rules/pkg/core/suggest"
)

// GenerateSuggestions proposes staff for every shift of the ISO week
// containing weekStartDate. With a nil roster the directory's employees are
// used. A SHORTAGE_DETECTED event is published per understaffed shift.
// Suggestions are per shift; accepting several for one employee on the same
// date still goes through CreateSchedule, which allows one record per day.
func (s *Scheduler) GenerateSuggestions(ctx context.Context, weekStartDate string, roster []model.Employee, req *suggest.Requirements) (*model.SuggestionSet, error) {
	weekStart, err := shiftcalc.ParseDate(weekStartDate)
	if err != nil {
		return nil, err
	}

	if roster == nil && s.directory != nil {
		roster, err = s.directory.ListEmployees(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
	}

	s.logger.Debug("Starting generateSuggestions",
		zap.String("week_start", weekStartDate),
		zap.Int("roster_size", len(roster)))

	// One consistent view for the whole pass
	set, err := s.generator.Generate(ctx, s.repo.Snapshot(), weekStart, roster, req)
	if err != nil {
		return nil, err
	}

	for i := range set.Suggestions {
		suggestion := set.Suggestions[i]
		if !suggestion.HasShortage() {
			continue
		}
		s.publish(ctx, model.Event{
			Type:       model.EventShortageDetected,
			Date:       suggestion.Date,
			Suggestion: &suggestion,
		})
	}

	s.logger.Info("Generated suggestions",
		zap.String("week_start", set.WeekStart),
		zap.Int("suggestions", len(set.Suggestions)),
		zap.Int("shortages", set.Shortages))

	return set, nil
}
