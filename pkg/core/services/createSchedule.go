package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/rules"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
	"github.com/jakechorley/shift-rules/pkg/lock"
	"github.com/jakechorley/shift-rules/pkg/utils/validation"
)

// CreateSchedule validates the input against every rule and stores it unless
// an ERROR is found. Malformed input, unknown employees and lost races are
// returned as errors; a refusal by the rules is a result with Success=false.
func (s *Scheduler) CreateSchedule(ctx context.Context, input model.ScheduleInput, opts ValidationOptions) (*CreationResult, error) {
	logger := s.logger.With(
		zap.String("employee_id", input.EmployeeID),
		zap.String("date", input.Date))
	logger.Debug("Starting createSchedule",
		zap.String("start", input.ShiftStart),
		zap.String("end", input.ShiftEnd))

	candidate, err := s.prepare(ctx, &input)
	if err != nil {
		return nil, err
	}

	// Validate-then-write is serialized per employee
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, lock.EmployeeKey(input.EmployeeID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock employee %s: %w", input.EmployeeID, err)
	}
	defer unlock()

	result := s.engine.Validate(candidate, s.ruleContext(opts))
	logger.Debug("Validated schedule",
		zap.String("status", string(result.OverallStatus)),
		zap.Int("violations", len(result.Violations)))

	if result.Failed() {
		logger.Info("Schedule rejected", zap.Int("errors", len(result.BySeverity(model.SeverityError))))
		s.publish(ctx, model.Event{
			Type:       model.EventScheduleRejected,
			EmployeeID: input.EmployeeID,
			Date:       candidate.DateString(),
			Violations: model.CloneViolations(result.Violations),
		})
		return &CreationResult{
			Success:          false,
			ValidationResult: result,
			Err:              &model.ValidationFailure{Result: result},
		}, nil
	}

	record := model.ScheduleRecord{
		ID:                s.newID(),
		EmployeeID:        input.EmployeeID,
		StoreID:           input.StoreID,
		Date:              candidate.DateString(),
		ShiftStart:        shiftcalc.MinutesToTime(candidate.Interval.Start),
		ShiftEnd:          shiftcalc.MinutesToTime(candidate.Interval.End),
		ShiftType:         candidate.ShiftType,
		Hours:             candidate.Hours,
		Status:            model.StatusScheduled,
		ViolationWarnings: result.NonBlocking(),
		CreatedAt:         s.now(),
		CreatedBy:         input.CreatedBy,
		Notes:             input.Notes,
		DedupKey:          input.DedupKey,
	}

	if _, err := s.repo.Insert(record.Clone()); err != nil {
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}
	if err := s.stats.Record(record); err != nil {
		logger.Warn("Failed to update weekly statistics", zap.Error(err))
	}

	logger.Info("Schedule created",
		zap.String("schedule_id", record.ID),
		zap.String("shift_type", string(record.ShiftType)),
		zap.Float64("hours", record.Hours),
		zap.Int("warnings", len(record.ViolationWarnings)))

	// The event is serialised asynchronously, so it gets its own copy
	published := record.Clone()
	s.publish(ctx, model.Event{
		Type:       model.EventScheduleCreated,
		EmployeeID: published.EmployeeID,
		Date:       published.Date,
		Record:     &published,
		Violations: published.ViolationWarnings,
	})

	return &CreationResult{
		Success:          true,
		Record:           &record,
		ValidationResult: result,
	}, nil
}

// Validate runs every rule without storing anything or publishing events
func (s *Scheduler) Validate(ctx context.Context, input model.ScheduleInput, opts ValidationOptions) (model.ValidationResult, error) {
	candidate, err := s.prepare(ctx, &input)
	if err != nil {
		return model.ValidationResult{}, err
	}
	return s.engine.Validate(candidate, s.ruleContext(opts)), nil
}

// prepare checks the input's shape, parses it and resolves the employee.
// A missing store id is filled from the directory.
func (s *Scheduler) prepare(ctx context.Context, input *model.ScheduleInput) (*rules.Candidate, error) {
	if err := s.validator.Struct(input); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, &model.FormatError{Field: fieldErrs[0].Field, Value: fieldErrs[0].Value, Reason: fieldErrs[0].Message}
		}
		return nil, fmt.Errorf("failed to validate input: %w", err)
	}

	candidate, err := rules.NewCandidate(*input, s.catalog.Templates)
	if err != nil {
		return nil, err
	}

	if s.directory != nil {
		employee, err := s.directory.GetEmployee(ctx, input.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve employee: %w", err)
		}
		if input.StoreID == "" {
			input.StoreID = employee.StoreID
			candidate.Input.StoreID = employee.StoreID
		}
	}

	return candidate, nil
}

func (s *Scheduler) ruleContext(opts ValidationOptions) *rules.Context {
	scope := opts.FairnessScope
	if scope == "" {
		scope = s.defaultScope
	}
	return &rules.Context{
		Repo:          s.repo,
		Catalog:       s.catalog,
		Roster:        opts.Roster,
		FairnessScope: scope,
		Events:        s.events,
	}
}
