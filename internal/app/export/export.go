package export

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	ListTasks() []model.Task
	GetActiveTask() (*model.Task, bool)
}

// ServiceConfig is the configuration for the export service.
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

// Service exports the board, it's the hand off payload used to move the
// guest data to an account.
type Service struct {
	store  TaskStore
	logger log.Logger
}

// NewService creates a new export service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// Request represents the export request parameters.
type Request struct{}

// Data is the exported board.
type Data struct {
	Tasks []model.Task
	// CurrentTaskID is the active task ID, empty if there is none.
	CurrentTaskID string
}

// Run exports the board.
func (s *Service) Run(ctx context.Context, req Request) (*Data, error) {
	data := &Data{Tasks: s.store.ListTasks()}
	if t, ok := s.store.GetActiveTask(); ok {
		data.CurrentTaskID = t.ID
	}

	s.logger.Debugf("exported %d tasks", len(data.Tasks))
	return data, nil
}
