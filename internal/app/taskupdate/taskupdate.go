package taskupdate

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	ResolveTask(ref string) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
}

// ServiceConfig is the configuration for the task update service.
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

// Service edits and moves tasks between board columns.
type Service struct {
	store  TaskStore
	logger log.Logger
}

// NewService creates a new task update service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// Request represents the task update request parameters. Nil fields are
// left untouched.
type Request struct {
	// Ref is the task ID, ID prefix or title.
	Ref         string
	Title       *string
	Description *string
	Color       *string
	Status      *model.TaskStatus
}

// Run applies the changes to the referenced task.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Status:      req.Status,
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("nothing to update: %w", model.ErrNotValid)
	}

	current, err := s.store.ResolveTask(req.Ref)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("updating task: %s", current.ID)

	t, err := s.store.UpdateTask(ctx, current.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	return &t, nil
}
