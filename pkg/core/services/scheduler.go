package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/catalog"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/rules"
	"github.com/jakechorley/shift-rules/pkg/core/stats"
	"github.com/jakechorley/shift-rules/pkg/core/suggest"
	"github.com/jakechorley/shift-rules/pkg/lock"
	"github.com/jakechorley/shift-rules/pkg/utils/validation"
)

// EventPublisher receives domain events. Publishing is fire-and-forget:
// errors are logged by the scheduler and never returned to its callers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// EmployeeDirectory resolves employees. GetEmployee returns an error matching
// model.ErrNotFound for unknown ids.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// ValidationOptions are per-call inputs to the rule engine
type ValidationOptions struct {
	// Roster enables the fairness rule
	Roster []model.Employee
	// FairnessScope overrides the scheduler's default scope
	FairnessScope rules.FairnessScope
}

// CreationResult is the outcome of CreateSchedule.
// On refusal Success is false, Record is nil and Err is a *model.ValidationFailure.
type CreationResult struct {
	Success          bool
	Record           *model.ScheduleRecord
	ValidationResult model.ValidationResult
	Err              error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.Event) error { return nil }

// Scheduler owns the schedule repository and runs every operation against it
type Scheduler struct {
	repo      repository.Repository
	catalog   *catalog.Catalog
	stats     *stats.Aggregator
	engine    *rules.Engine
	generator *suggest.Generator
	validator *validation.Validator

	events       rules.SpecialEvents
	locker       lock.Locker
	publisher    EventPublisher
	directory    EmployeeDirectory
	preferences  suggest.PreferenceProvider
	defaultScope rules.FairnessScope
	lockTimeout  time.Duration

	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Scheduler
type Option func(*Scheduler)

func WithEngine(engine *rules.Engine) Option {
	return func(s *Scheduler) { s.engine = engine }
}

func WithSpecialEvents(events rules.SpecialEvents) Option {
	return func(s *Scheduler) { s.events = events }
}

func WithLocker(locker lock.Locker) Option {
	return func(s *Scheduler) { s.locker = locker }
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Scheduler) { s.publisher = publisher }
}

// WithDirectory makes unknown employees fail with a NotFoundError and lets
// suggestion passes default to the directory's roster
func WithDirectory(directory EmployeeDirectory) Option {
	return func(s *Scheduler) { s.directory = directory }
}

func WithPreferences(preferences suggest.PreferenceProvider) Option {
	return func(s *Scheduler) { s.preferences = preferences }
}

func WithFairnessScope(scope rules.FairnessScope) Option {
	return func(s *Scheduler) { s.defaultScope = scope }
}

// WithLockTimeout bounds how long CreateSchedule waits for the employee lock
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) { s.lockTimeout = timeout }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Scheduler) { s.newID = newID }
}

// NewScheduler creates a scheduler over repo. Statistics are rebuilt from
// whatever repo already holds.
func NewScheduler(repo repository.Repository, cat *catalog.Catalog, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		repo:         repo,
		catalog:      cat,
		stats:        stats.NewAggregator(),
		engine:       rules.DefaultEngine(),
		locker:       lock.NewKeyedMutex(),
		publisher:    nopPublisher{},
		defaultScope: rules.ScopeCompany,
		lockTimeout:  10 * time.Second,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	s.validator = v
	s.generator = suggest.NewGenerator(cat, suggest.NewScorer(s.preferences))

	if err := s.stats.Rebuild(repo); err != nil {
		return nil, fmt.Errorf("failed to build statistics: %w", err)
	}

	return s, nil
}

// Repository returns the live repository, for persistence collaborators
func (s *Scheduler) Repository() repository.Repository {
	return s.repo
}

// Catalog returns the rule catalog in use
func (s *Scheduler) Catalog() *catalog.Catalog {
	return s.catalog
}

// Hydrate loads persisted records into the repository and rebuilds statistics
func (s *Scheduler) Hydrate(records []model.ScheduleRecord) error {
	if err := s.repo.Hydrate(records); err != nil {
		return err
	}
	if err := s.stats.Rebuild(s.repo); err != nil {
		return fmt.Errorf("failed to rebuild statistics: %w", err)
	}
	s.logger.Debug("Hydrated schedules", zap.Int("count", len(records)), zap.Int("total", s.repo.Len()))
	return nil
}

func (s *Scheduler) publish(ctx context.Context, event model.Event) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("employee_id", event.EmployeeID),
			zap.Error(err))
	}
}
