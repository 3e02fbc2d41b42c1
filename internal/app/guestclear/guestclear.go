package guestclear

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/pomo/internal/log"
)

// Clearer removes stored data.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ServiceConfig is the configuration for the guest clear service.
type ServiceConfig struct {
	Tasks  Clearer
	Timer  Clearer
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("tasks clearer is required")
	}

	if c.Timer == nil {
		return fmt.Errorf("timer clearer is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service removes the guest data, the timer goes back to its defaults.
type Service struct {
	tasks  Clearer
	timer  Clearer
	logger log.Logger
}

// NewService creates a new guest clear service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:  cfg.Tasks,
		timer:  cfg.Timer,
		logger: cfg.Logger,
	}, nil
}

// Request represents the guest clear request parameters.
type Request struct{}

// Run clears the guest tasks and timer. Both are attempted even if one fails.
func (s *Service) Run(ctx context.Context, req Request) error {
	var errs []error
	if err := s.tasks.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not clear tasks: %w", err))
	}
	if err := s.timer.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not clear timer: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Debugf("guest data cleared")
	return nil
}
