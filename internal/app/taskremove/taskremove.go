package taskremove

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	ResolveTask(ref string) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ServiceConfig is the configuration for the task remove service.
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

// Service removes tasks from the board.
type Service struct {
	store  TaskStore
	logger log.Logger
}

// NewService creates a new task remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// Request represents the task remove request parameters.
type Request struct {
	// Ref is the task ID, ID prefix or title.
	Ref string
}

// Run removes the referenced task and returns it.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	t, err := s.store.ResolveTask(req.Ref)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteTask(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("could not remove task: %w", err)
	}
	s.logger.Debugf("task removed: %s", t.ID)

	return &t, nil
}
