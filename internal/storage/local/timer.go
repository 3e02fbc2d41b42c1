package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/slok/pomo/internal/conventions"
	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/utils/file"
)

// TimerRepositoryConfig is the configuration for the local timer repository.
type TimerRepositoryConfig struct {
	DataDir string
	Logger  log.Logger
}

func (c *TimerRepositoryConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.LocalTimer"})
	return nil
}

// TimerRepository persists the timer settings and state in the timer blob.
// The running flag is never persisted.
type TimerRepository struct {
	path   string
	logger log.Logger
}

var _ storage.TimerRepository = &TimerRepository{}

// NewTimerRepository returns a new local timer repository.
func NewTimerRepository(cfg TimerRepositoryConfig) (*TimerRepository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &TimerRepository{
		path:   conventions.TimerFilePath(cfg.DataDir),
		logger: cfg.Logger,
	}, nil
}

// GetTimer returns the stored timer. When nothing has been stored it returns
// the default settings and a zero state.
func (r *TimerRepository) GetTimer(ctx context.Context) (*model.TimerSnapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &model.TimerSnapshot{Settings: model.DefaultTimerSettings()}, nil
		}
		return nil, fmt.Errorf("could not read timer file: %w: %w", model.ErrBackend, err)
	}

	var blob timerJSON
	if err := json.Unmarshal(data, &blob); err != nil {
		// A corrupted timer blob isn't worth failing for, start fresh.
		r.logger.Warningf("Ignoring unreadable timer file %s: %s", r.path, err)
		return &model.TimerSnapshot{Settings: model.DefaultTimerSettings()}, nil
	}

	return blob.toModel(), nil
}

// SaveTimer stores the timer.
func (r *TimerRepository) SaveTimer(ctx context.Context, s model.TimerSnapshot) error {
	data, err := json.MarshalIndent(timerToJSON(s), "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal timer: %w", err)
	}

	if err := file.WriteAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("could not write timer file: %w: %w", model.ErrBackend, err)
	}

	r.logger.Debugf("Timer saved")
	return nil
}

// Clear removes the timer blob.
func (r *TimerRepository) Clear(ctx context.Context) error {
	if err := file.RemoveIfExists(r.path); err != nil {
		return fmt.Errorf("could not remove timer file: %w: %w", model.ErrBackend, err)
	}
	return nil
}

type timerJSON struct {
	Settings timerSettingsJSON `json:"settings"`
	State    *timerStateJSON   `json:"state,omitempty"`
}

type timerSettingsJSON struct {
	WorkMinutes             int  `json:"workMinutes"`
	ShortBreakMinutes       int  `json:"shortBreakMinutes"`
	LongBreakMinutes        int  `json:"longBreakMinutes"`
	SessionsBeforeLongBreak int  `json:"sessionsBeforeLongBreak"`
	SoundEnabled            bool `json:"soundEnabled"`
}

type timerStateJSON struct {
	RemainingSeconds      int  `json:"remainingSeconds"`
	IntervalSeconds       int  `json:"intervalSeconds"`
	IsBreak               bool `json:"isBreak"`
	CompletedWorkSessions int  `json:"completedWorkSessions"`
	CurrentCycle          int  `json:"currentCycle"`
}

func timerToJSON(s model.TimerSnapshot) timerJSON {
	t := timerJSON{
		Settings: timerSettingsJSON{
			WorkMinutes:             s.Settings.WorkMinutes,
			ShortBreakMinutes:       s.Settings.ShortBreakMinutes,
			LongBreakMinutes:        s.Settings.LongBreakMinutes,
			SessionsBeforeLongBreak: s.Settings.SessionsBeforeLongBreak,
			SoundEnabled:            s.Settings.SoundEnabled,
		},
	}
	if !s.State.IsZero() {
		t.State = &timerStateJSON{
			RemainingSeconds:      s.State.RemainingSeconds,
			IntervalSeconds:       s.State.IntervalSeconds,
			IsBreak:               s.State.IsBreak,
			CompletedWorkSessions: s.State.CompletedWorkSessions,
			CurrentCycle:          s.State.CurrentCycle,
		}
	}
	return t
}

func (t timerJSON) toModel() *model.TimerSnapshot {
	s := &model.TimerSnapshot{
		Settings: model.TimerSettings{
			WorkMinutes:             t.Settings.WorkMinutes,
			ShortBreakMinutes:       t.Settings.ShortBreakMinutes,
			LongBreakMinutes:        t.Settings.LongBreakMinutes,
			SessionsBeforeLongBreak: t.Settings.SessionsBeforeLongBreak,
			SoundEnabled:            t.Settings.SoundEnabled,
		}.Normalize(),
	}
	if t.State != nil {
		s.State = model.TimerState{
			RemainingSeconds:      t.State.RemainingSeconds,
			IntervalSeconds:       t.State.IntervalSeconds,
			IsBreak:               t.State.IsBreak,
			CompletedWorkSessions: t.State.CompletedWorkSessions,
			CurrentCycle:          t.State.CurrentCycle,
		}
	}
	return s
}
