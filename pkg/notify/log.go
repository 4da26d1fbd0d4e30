package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// LogPublisher writes every event to the structured log
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.Event) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.String("employee_id", event.EmployeeID),
		zap.String("date", event.Date),
		zap.Int("violations", len(event.Violations)),
	}
	if event.Record != nil {
		fields = append(fields, zap.String("schedule_id", event.Record.ID))
	}
	if event.Suggestion != nil {
		fields = append(fields,
			zap.String("shift", string(event.Suggestion.Shift.Code)),
			zap.Int("required_staff", event.Suggestion.RequiredStaff),
			zap.Int("recommended", len(event.Suggestion.RecommendedEmployees)))
	}

	if event.Type == model.EventScheduleCreated {
		p.logger.Info("Schedule event", fields...)
	} else {
		p.logger.Warn("Schedule event", fields...)
	}
	return nil
}
