package io

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/pomo/internal/model"
)

// SettingsYAMLRepository loads timer settings from YAML files.
type SettingsYAMLRepository struct {
	fs fs.FS
}

// NewSettingsYAMLRepository creates a new YAML settings repository.
func NewSettingsYAMLRepository(filesystem fs.FS) *SettingsYAMLRepository {
	return &SettingsYAMLRepository{fs: filesystem}
}

// GetSettings loads the settings file at path and applies it over base. Fields
// missing in the file keep the base value, out of range values are normalized.
func (r *SettingsYAMLRepository) GetSettings(ctx context.Context, path string, base model.TimerSettings) (model.TimerSettings, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.TimerSettings{}, fmt.Errorf("reading settings file: %w", err)
	}

	if ctx.Err() != nil {
		return model.TimerSettings{}, ctx.Err()
	}

	var cfg TimerSettings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return model.TimerSettings{}, fmt.Errorf("parsing YAML: %w: %w", model.ErrNotValid, err)
	}

	return cfg.apply(base).Normalize(), nil
}

// TimerSettings represents the YAML structure for the timer settings.
type TimerSettings struct {
	WorkMinutes             *int  `yaml:"work_minutes"`
	ShortBreakMinutes       *int  `yaml:"short_break_minutes"`
	LongBreakMinutes        *int  `yaml:"long_break_minutes"`
	SessionsBeforeLongBreak *int  `yaml:"sessions_before_long_break"`
	SoundEnabled            *bool `yaml:"sound_enabled"`
}

func (c TimerSettings) apply(base model.TimerSettings) model.TimerSettings {
	s := base
	if c.WorkMinutes != nil {
		s.WorkMinutes = *c.WorkMinutes
	}
	if c.ShortBreakMinutes != nil {
		s.ShortBreakMinutes = *c.ShortBreakMinutes
	}
	if c.LongBreakMinutes != nil {
		s.LongBreakMinutes = *c.LongBreakMinutes
	}
	if c.SessionsBeforeLongBreak != nil {
		s.SessionsBeforeLongBreak = *c.SessionsBeforeLongBreak
	}
	if c.SoundEnabled != nil {
		s.SoundEnabled = *c.SoundEnabled
	}
	return s
}
