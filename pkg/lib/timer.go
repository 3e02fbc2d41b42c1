package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/pomo/internal/app/focus"
	"github.com/slok/pomo/internal/app/timerreset"
	"github.com/slok/pomo/internal/app/timersettings"
	"github.com/slok/pomo/internal/app/timerstatus"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage/io"
	"github.com/slok/pomo/internal/timer"
	"github.com/slok/pomo/internal/tracker"
)

// TimerStatus returns the timer settings and the state a focus run would
// resume from.
func (c *Client) TimerStatus(ctx context.Context) (*Timer, error) {
	svc, err := timerstatus.NewService(timerstatus.ServiceConfig{Repository: c.timerRepo, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, timerstatus.Request{})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTimer(*snap)
	return &result, nil
}

// ResetTimer restarts the current interval. When full is true the session
// counters are reset too.
func (c *Client) ResetTimer(ctx context.Context, full bool) (*Timer, error) {
	svc, err := timerreset.NewService(timerreset.ServiceConfig{Repository: c.timerRepo, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, timerreset.Request{Full: full})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTimer(*snap)
	return &result, nil
}

// UpdateTimerSettings changes the timer settings. Values below their minimum
// are replaced by the defaults.
func (c *Client) UpdateTimerSettings(ctx context.Context, opts UpdateTimerSettingsOpts) (*Timer, error) {
	file := opts.File
	if file != "" && !filepath.IsAbs(file) {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("could not resolve settings file path: %w", err)
		}
		file = abs
	}
	if file != "" {
		// The loader reads from the root filesystem.
		file = file[1:]
	}

	svc, err := timersettings.NewService(timersettings.ServiceConfig{
		Repository:     c.timerRepo,
		SettingsLoader: io.NewSettingsYAMLRepository(os.DirFS("/")),
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, timersettings.Request{
		File:                    file,
		WorkMinutes:             opts.WorkMinutes,
		ShortBreakMinutes:       opts.ShortBreakMinutes,
		LongBreakMinutes:        opts.LongBreakMinutes,
		SessionsBeforeLongBreak: opts.SessionsBeforeLongBreak,
		SoundEnabled:            opts.SoundEnabled,
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTimer(*snap)
	return &result, nil
}

// Focus runs the timer, logging every completed work session to the active
// task. It blocks until the requested intervals are done or the context is
// cancelled, the timer is stored so the next run resumes from it.
func (c *Client) Focus(ctx context.Context, opts FocusOpts) (*FocusResult, error) {
	var notifier timer.Notifier
	if opts.OnNotify != nil {
		notifier = timer.NotifierFunc(func(kind model.SessionKind) { opts.OnNotify(SessionKind(kind)) })
	}

	svc, err := focus.NewService(focus.ServiceConfig{
		Store:           c.store,
		Tracker:         c.tracker,
		TimerRepository: c.timerRepo,
		Clock:           c.clock,
		Notifier:        notifier,
		Logger:          c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := focus.Request{Intervals: opts.Intervals}
	if opts.OnChange != nil {
		req.OnChange = func(s model.TimerSnapshot) { opts.OnChange(fromInternalTimer(s)) }
	}
	if opts.OnSession != nil {
		req.OnSession = func(ev timer.CompletionEvent, res tracker.Result) {
			opts.OnSession(fromInternalSession(ev, res.Attributed))
		}
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	result := &FocusResult{
		Failed: res.Failed,
		Timer:  fromInternalTimer(res.Timer),
	}
	for _, ss := range res.Sessions {
		result.Sessions = append(result.Sessions, fromInternalSession(ss.Event, ss.Logged.Attributed))
	}
	return result, nil
}
