package focus

import (
	"context"
	"fmt"

	"github.com/oklog/run"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/timer"
	"github.com/slok/pomo/internal/tracker"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	Watch(ctx context.Context) error
}

// SessionTracker logs the completed sessions.
type SessionTracker interface {
	OnSessionComplete(ctx context.Context, ev timer.CompletionEvent) (tracker.Result, error)
}

// ServiceConfig is the configuration for the focus service.
type ServiceConfig struct {
	Store           TaskStore
	Tracker         SessionTracker
	TimerRepository storage.TimerRepository
	Clock           timer.Clock
	Notifier        timer.Notifier
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}

	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.TimerRepository == nil {
		return fmt.Errorf("timer repository is required")
	}

	if c.Clock == nil {
		c.Clock = timer.RealClock
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service runs the live timer, logging every completed session and keeping
// the task board in sync while it runs.
type Service struct {
	store     TaskStore
	tracker   SessionTracker
	timerRepo storage.TimerRepository
	clock     timer.Clock
	notifier  timer.Notifier
	logger    log.Logger
}

// NewService creates a new focus service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:     cfg.Store,
		tracker:   cfg.Tracker,
		timerRepo: cfg.TimerRepository,
		clock:     cfg.Clock,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the focus request parameters.
type Request struct {
	// Intervals is the number of intervals to run, 0 runs until the context
	// is cancelled.
	Intervals int
	// OnChange is called with the timer on every change.
	OnChange func(model.TimerSnapshot)
	// OnSession is called after every completed and logged session.
	OnSession func(ev timer.CompletionEvent, res tracker.Result)
}

// Session is a completed session of the run.
type Session struct {
	Event  timer.CompletionEvent
	Logged tracker.Result
	// Err is set when the session could not be logged.
	Err error
}

// Result is the focus run result.
type Result struct {
	Sessions   []Session
	Attributed int
	// Failed is the number of sessions that could not be logged.
	Failed int
	Timer  model.TimerSnapshot
}

// Run starts the timer from its stored state and runs it until the requested
// intervals are done or the context is cancelled. The timer is stored after
// every interval and on exit, so a later run resumes where this one stopped.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Intervals < 0 {
		return nil, fmt.Errorf("intervals can't be negative: %w", model.ErrNotValid)
	}

	snap, err := s.timerRepo.GetTimer(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get timer: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	completions := make(chan timer.CompletionEvent)
	m, err := timer.NewMachine(timer.MachineConfig{
		Settings:     snap.Settings,
		InitialState: timer.RestoredState(*snap),
		Clock:        s.clock,
		Notifier:     s.notifier,
		OnComplete: func(ev timer.CompletionEvent) {
			select {
			case completions <- ev:
			case <-ctx.Done():
			}
		},
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not restore timer: %w", err)
	}

	if req.OnChange != nil {
		unsubscribe := m.Subscribe(req.OnChange)
		defer unsubscribe()
	}

	res := &Result{}
	var g run.Group

	// Remote changes.
	{
		g.Add(
			func() error {
				return s.store.Watch(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Timer.
	{
		g.Add(
			func() error {
				m.Start()
				for {
					select {
					case <-ctx.Done():
						return nil
					case ev := <-completions:
						s.handleCompletion(ctx, m, ev, req, res)
						if req.Intervals > 0 && len(res.Sessions) >= req.Intervals {
							return nil
						}
						m.Start()
					}
				}
			},
			func(_ error) {
				cancel()
			},
		)
	}

	runErr := g.Run()

	_ = m.Close()
	res.Timer = m.Snapshot()
	if err := s.timerRepo.SaveTimer(context.WithoutCancel(ctx), res.Timer); err != nil {
		s.logger.Errorf("Could not save timer: %s", err)
	}

	if runErr != nil {
		return res, fmt.Errorf("focus run failed: %w", runErr)
	}

	return res, nil
}

func (s *Service) handleCompletion(ctx context.Context, m *timer.Machine, ev timer.CompletionEvent, req Request, res *Result) {
	tr, err := s.tracker.OnSessionComplete(ctx, ev)
	if err != nil {
		res.Failed++
		s.logger.Errorf("Could not log %s session: %s", ev.Kind, err)
	} else if tr.Attributed {
		res.Attributed++
	}
	res.Sessions = append(res.Sessions, Session{Event: ev, Logged: tr, Err: err})

	if err := s.timerRepo.SaveTimer(ctx, m.Snapshot()); err != nil {
		s.logger.Warningf("Could not save timer: %s", err)
	}

	if req.OnSession != nil {
		req.OnSession(ev, tr)
	}
}
