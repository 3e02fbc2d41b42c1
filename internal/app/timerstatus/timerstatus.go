package timerstatus

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/timer"
)

// ServiceConfig is the configuration for the timer status service.
type ServiceConfig struct {
	Repository storage.TimerRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service returns the stored timer status.
type Service struct {
	repo   storage.TimerRepository
	logger log.Logger
}

// NewService creates a new timer status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the timer status request parameters.
type Request struct{}

// Run returns the timer settings and the state it would resume from.
func (s *Service) Run(ctx context.Context, req Request) (*model.TimerSnapshot, error) {
	snap, err := s.repo.GetTimer(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get timer: %w", err)
	}

	m, err := timer.NewMachine(timer.MachineConfig{
		Settings:     snap.Settings,
		InitialState: timer.RestoredState(*snap),
		Logger:       s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not restore timer: %w", err)
	}
	defer m.Close()

	status := m.Snapshot()
	return &status, nil
}
