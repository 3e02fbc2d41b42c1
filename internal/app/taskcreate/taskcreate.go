package taskcreate

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	CreateTask(ctx context.Context, title, description string) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
}

// ServiceConfig is the configuration for the task create service.
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

// Service adds tasks to the board.
type Service struct {
	store  TaskStore
	logger log.Logger
}

// NewService creates a new task create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// Request represents the task create request parameters.
type Request struct {
	Title       string
	Description string
	// Color is an optional display color.
	Color string
	// Start makes the new task the active one.
	Start bool
}

// Run creates a todo task, optionally starting it right away.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	t, err := s.store.CreateTask(ctx, req.Title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}
	s.logger.Debugf("task created: %s", t.ID)

	var patch model.TaskPatch
	if req.Color != "" {
		patch.Color = &req.Color
	}
	if req.Start {
		doing := model.TaskStatusDoing
		patch.Status = &doing
	}
	if patch.IsEmpty() {
		return &t, nil
	}

	t, err = s.store.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("task created but could not be updated: %w", err)
	}

	return &t, nil
}
