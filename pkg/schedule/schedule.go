// Package schedule runs saved execution requests on cron expressions.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/robfig/cron/v3"
)

var (
	ErrScheduleIDRequired   = errors.New("schedule ID is required")
	ErrCronRequired         = errors.New("schedule cron expression is required")
	ErrNodeTypeRequired     = errors.New("schedule node type is required")
	ErrDuplicateSchedule    = errors.New("schedule already exists")
	ErrSchedulerNotStarted  = errors.New("scheduler not started")
	ErrSchedulerAlreadyRuns = errors.New("scheduler already running")
)

// Schedule runs Request every time Cron fires.
type Schedule struct {
	ID      string           `json:"id"`
	Cron    string           `json:"cron"`
	Request executor.Request `json:"request"`
}

func (s Schedule) Validate() error {
	if s.ID == "" {
		return ErrScheduleIDRequired
	}

	if s.Cron == "" {
		return ErrCronRequired
	}

	if _, err := cron.ParseStandard(s.Cron); err != nil {
		return fmt.Errorf("invalid cron expression for schedule %s: %w", s.ID, err)
	}

	if s.Request.NodeType == "" {
		return ErrNodeTypeRequired
	}

	return nil
}

// LoadSchedules reads a JSON array of schedules from path.
func LoadSchedules(path string) ([]Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedules: %w", err)
	}

	var schedules []Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("failed to parse schedules: %w", err)
	}

	for _, s := range schedules {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	return schedules, nil
}

// Dispatch hands a due request to whatever executes it.
type Dispatch func(ctx context.Context, req executor.Request) error

type Runner interface {
	Execute(ctx context.Context, req executor.Request) (*models.Execution, error)
}

// RunDispatch executes due requests in process.
func RunDispatch(runner Runner) Dispatch {
	return func(ctx context.Context, req executor.Request) error {
		_, err := runner.Execute(ctx, req)

		return err
	}
}

// PublishDispatch emits an execution.requested event for every due request.
func PublishDispatch(publisher eventbus.EventPublisher) Dispatch {
	return func(ctx context.Context, req executor.Request) error {
		return publisher.Publish(ctx, req.NodeType, events.ExecutionRequested{
			BaseEvent:  events.NewBaseEvent(events.ExecutionRequestedEvent),
			NodeType:   req.NodeType,
			Parameters: req.Parameters,
			Items:      req.Items,
		})
	}
}

type Scheduler struct {
	dispatch Dispatch
	logger   *slog.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	schedules map[string]cron.EntryID
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(dispatch Dispatch, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("module", "scheduler")
	cronLogger := slogAdapter{logger: logger}

	return &Scheduler{
		dispatch: dispatch,
		logger:   logger,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		)),
		schedules: make(map[string]cron.EntryID),
	}
}

// Add registers a schedule. Schedules added after Start fire as well.
func (s *Scheduler) Add(schedule Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[schedule.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSchedule, schedule.ID)
	}

	id, err := s.cron.AddFunc(schedule.Cron, func() { s.run(schedule) })
	if err != nil {
		return fmt.Errorf("failed to add cron job for schedule %s: %w", schedule.ID, err)
	}

	s.schedules[schedule.ID] = id
	s.logger.Info("Added schedule", "schedule_id", schedule.ID, "cron", schedule.Cron, "entry_id", id)

	return nil
}

// Remove unregisters a schedule and reports whether it existed.
func (s *Scheduler) Remove(scheduleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.schedules[scheduleID]
	if !exists {
		return false
	}

	s.cron.Remove(id)
	delete(s.schedules, scheduleID)

	return true
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerAlreadyRuns
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.logger.Info("Scheduler started", "schedules", len(s.schedules))

	return nil
}

// Stop halts the cron loop and waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.cancel == nil {
		s.mu.Unlock()

		return ErrSchedulerNotStarted
	}

	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
	}

	cancel()
	s.logger.Info("Scheduler stopped")

	return nil
}

func (s *Scheduler) run(schedule Schedule) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		return
	}

	logger := s.logger.With("schedule_id", schedule.ID, "node_type", schedule.Request.NodeType)
	logger.Info("Cron job triggered")

	if err := s.dispatch(ctx, schedule.Request); err != nil {
		logger.Error("Failed to dispatch scheduled request", "error", err)
	}
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
