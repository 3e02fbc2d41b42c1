package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/timer"
)

// TaskStore is the task store used by the tracker.
type TaskStore interface {
	GetActiveTask() (*model.Task, bool)
	LogSession(ctx context.Context, e model.TimeLogEntry) (*model.Task, error)
}

// ServiceConfig is the configuration of the tracker service.
type ServiceConfig struct {
	Store TaskStore
	// MaxTrackedEvents is the number of completion event IDs remembered for
	// deduplication.
	MaxTrackedEvents int
	Logger           log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}

	if c.MaxTrackedEvents <= 0 {
		c.MaxTrackedEvents = 1024
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tracker.Service"})

	return nil
}

// Result is the outcome of handling a completion event.
type Result struct {
	// Attributed is true when the session time was accrued to a task.
	Attributed bool
	// Duplicate is true when the event had already been handled.
	Duplicate bool
	// Task is the task the time was accrued to.
	Task *model.Task
}

// Service logs completed timer sessions to the active task.
type Service struct {
	store  TaskStore
	logger log.Logger

	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSeen int
}

// NewService returns a new tracker service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:   cfg.Store,
		logger:  cfg.Logger,
		seen:    map[string]struct{}{},
		maxSeen: cfg.MaxTrackedEvents,
	}, nil
}

// OnSessionComplete handles a timer completion event. Each event is handled
// at most once.
//
// A work session is accrued to the active task, without an active task the
// session is dropped. Break sessions are logged unattributed and the backend
// decides if it keeps them.
func (s *Service) OnSessionComplete(ctx context.Context, ev timer.CompletionEvent) (Result, error) {
	if ev.ID == "" {
		return Result{}, fmt.Errorf("event id is required: %w", model.ErrNotValid)
	}
	if !s.claim(ev.ID) {
		s.logger.Debugf("Ignoring already handled completion event %s", ev.ID)
		return Result{Duplicate: true}, nil
	}

	res, err := s.handle(ctx, ev)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			s.logger.Debugf("Completion event %s already logged", ev.ID)
			return Result{Duplicate: true}, nil
		}
		s.release(ev.ID)
		return Result{}, err
	}

	return res, nil
}

func (s *Service) handle(ctx context.Context, ev timer.CompletionEvent) (Result, error) {
	entry := model.TimeLogEntry{
		ID:              ev.ID,
		DurationSeconds: ev.DurationSeconds,
		Kind:            ev.Kind,
		CreatedAt:       ev.CompletedAt,
	}

	if ev.Kind == model.SessionKindBreak {
		if _, err := s.store.LogSession(ctx, entry); err != nil {
			return Result{}, fmt.Errorf("could not log break session: %w", err)
		}
		return Result{}, nil
	}

	active, ok := s.store.GetActiveTask()
	if !ok {
		s.logger.Infof("Work session of %ds completed without an active task, not logged", ev.DurationSeconds)
		return Result{}, nil
	}

	entry.TaskID = active.ID
	t, err := s.store.LogSession(ctx, entry)
	if err != nil {
		return Result{}, fmt.Errorf("could not log work session: %w", err)
	}

	s.logger.Infof("%d minutes logged to %q", ev.DurationSeconds/60, active.Title)
	return Result{Attributed: true, Task: t}, nil
}

// Handler returns a timer completion handler that logs the sessions.
func (s *Service) Handler(ctx context.Context) timer.CompletionHandler {
	return func(ev timer.CompletionEvent) {
		if _, err := s.OnSessionComplete(ctx, ev); err != nil {
			s.logger.Errorf("Could not log %s session: %s", ev.Kind, err)
		}
	}
}

func (s *Service) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return false
	}

	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.maxSeen {
		delete(s.seen, s.order[0])
		s.order = s.order[1:]
	}
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.seen, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
