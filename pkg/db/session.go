package db

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
)

// Hydrator accepts previously persisted records
type Hydrator interface {
	Hydrate(records []model.ScheduleRecord) error
}

// Session remembers which records are already persisted so Flush only
// writes what was created since
type Session struct {
	store  ScheduleStore
	logger *zap.Logger

	mu        sync.Mutex
	persisted map[string]bool
}

// Hydrate loads every stored schedule into target and starts a session
func Hydrate(ctx context.Context, store ScheduleStore, target Hydrator, logger *zap.Logger) (*Session, error) {
	records, err := store.GetSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	if err := target.Hydrate(records); err != nil {
		return nil, fmt.Errorf("failed to hydrate repository: %w", err)
	}

	s := &Session{store: store, logger: logger, persisted: make(map[string]bool, len(records))}
	for _, r := range records {
		s.persisted[r.ID] = true
	}

	logger.Debug("Loaded schedules", zap.Int("count", len(records)))
	return s, nil
}

// Flush writes the records in r that this session has not persisted yet
func (s *Session) Flush(ctx context.Context, r repository.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []model.ScheduleRecord
	for _, record := range r.All() {
		if !s.persisted[record.ID] {
			pending = append(pending, record)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := s.store.InsertSchedules(ctx, pending); err != nil {
		return 0, fmt.Errorf("failed to persist %d schedules: %w", len(pending), err)
	}
	for _, record := range pending {
		s.persisted[record.ID] = true
	}

	s.logger.Debug("Persisted schedules", zap.Int("count", len(pending)))
	return len(pending), nil
}
