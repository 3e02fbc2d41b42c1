package timersettings

import (
	"context"
	"fmt"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/timer"
)

// SettingsLoader loads timer settings from a file on top of base ones.
type SettingsLoader interface {
	GetSettings(ctx context.Context, path string, base model.TimerSettings) (model.TimerSettings, error)
}

// ServiceConfig is the configuration for the timer settings service.
type ServiceConfig struct {
	Repository     storage.TimerRepository
	SettingsLoader SettingsLoader
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.SettingsLoader == nil {
		return fmt.Errorf("settings loader is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service updates the stored timer settings.
type Service struct {
	repo   storage.TimerRepository
	loader SettingsLoader
	logger log.Logger
}

// NewService creates a new timer settings service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		loader: cfg.SettingsLoader,
		logger: cfg.Logger,
	}, nil
}

// Request represents the timer settings request parameters. The file is
// applied first and the fields override it. Nil fields are left untouched.
type Request struct {
	// File is an optional settings YAML file.
	File                    string
	WorkMinutes             *int
	ShortBreakMinutes       *int
	LongBreakMinutes        *int
	SessionsBeforeLongBreak *int
	SoundEnabled            *bool
}

// Run applies the new settings and stores the timer. The countdown is
// recomputed for the new settings.
func (s *Service) Run(ctx context.Context, req Request) (*model.TimerSnapshot, error) {
	snap, err := s.repo.GetTimer(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get timer: %w", err)
	}

	settings := snap.Settings
	if req.File != "" {
		settings, err = s.loader.GetSettings(ctx, req.File, settings)
		if err != nil {
			return nil, fmt.Errorf("could not load settings file: %w", err)
		}
	}
	if req.WorkMinutes != nil {
		settings.WorkMinutes = *req.WorkMinutes
	}
	if req.ShortBreakMinutes != nil {
		settings.ShortBreakMinutes = *req.ShortBreakMinutes
	}
	if req.LongBreakMinutes != nil {
		settings.LongBreakMinutes = *req.LongBreakMinutes
	}
	if req.SessionsBeforeLongBreak != nil {
		settings.SessionsBeforeLongBreak = *req.SessionsBeforeLongBreak
	}
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
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

	m.UpdateSettings(settings)
	updated := m.Snapshot()
	if err := s.repo.SaveTimer(ctx, updated); err != nil {
		return nil, fmt.Errorf("could not save timer: %w", err)
	}
	s.logger.Debugf("timer settings updated")

	return &updated, nil
}
