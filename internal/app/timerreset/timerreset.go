package timerreset

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/timer"
)

// ServiceConfig is the configuration for the timer reset service.
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

// Service resets the stored timer.
type Service struct {
	repo   storage.TimerRepository
	logger log.Logger
}

// NewService creates a new timer reset service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the timer reset request parameters.
type Request struct {
	// Full also resets the session counters, starting again from the first
	// work interval.
	Full bool
}

// Run resets the countdown of the current interval, or the whole timer when
// requested, and stores the result.
func (s *Service) Run(ctx context.Context, req Request) (*model.TimerSnapshot, error) {
	snap, err := s.repo.GetTimer(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get timer: %w", err)
	}

	restored := timer.RestoredState(*snap)
	if req.Full {
		restored = nil
	}

	m, err := timer.NewMachine(timer.MachineConfig{
		Settings:     snap.Settings,
		InitialState: restored,
		Logger:       s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not restore timer: %w", err)
	}
	defer m.Close()

	m.Reset()
	reset := m.Snapshot()
	if err := s.repo.SaveTimer(ctx, reset); err != nil {
		return nil, fmt.Errorf("could not save timer: %w", err)
	}
	s.logger.Debugf("timer reset to %ds", reset.State.RemainingSeconds)

	return &reset, nil
}
