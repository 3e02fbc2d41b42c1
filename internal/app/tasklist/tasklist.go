package tasklist

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	ListTasks() []model.Task
}

// ServiceConfig is the configuration for the task list service.
type ServiceConfig struct {
	Store  TaskStore
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists the board tasks with optional filtering.
type Service struct {
	store  TaskStore
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// Request represents the task list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show tasks of this column.
	StatusFilter *model.TaskStatus
}

// Run lists the tasks in board order.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	tasks := s.store.ListTasks()

	if req.StatusFilter != nil {
		filtered := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status == *req.StatusFilter {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	s.logger.Debugf("found %d tasks", len(tasks))
	return tasks, nil
}
