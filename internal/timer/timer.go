package timer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// CompletionEvent is emitted once every time an interval finishes.
type CompletionEvent struct {
	ID   string
	Kind model.SessionKind
	// DurationSeconds is the duration the finished interval was initialized with.
	DurationSeconds int
	CompletedAt     time.Time
}

// CompletionHandler receives completion events.
type CompletionHandler func(ev CompletionEvent)

// Notifier is the side effect fired on completion when sound is enabled.
type Notifier interface {
	Notify(kind model.SessionKind)
}

// NotifierFunc is a helper to use functions as Notifier.
type NotifierFunc func(kind model.SessionKind)

// Notify satisfies Notifier.
func (f NotifierFunc) Notify(kind model.SessionKind) { f(kind) }

var noopNotifier = NotifierFunc(func(model.SessionKind) {})

// MachineConfig is the configuration of the timer machine.
type MachineConfig struct {
	Settings model.TimerSettings
	// InitialState restores a previous state, it's always restored paused.
	InitialState *model.TimerState
	Clock        Clock
	Notifier     Notifier
	OnComplete   CompletionHandler
	Logger       log.Logger
}

func (c *MachineConfig) defaults() error {
	c.Settings = c.Settings.Normalize()

	if c.Clock == nil {
		c.Clock = RealClock
	}

	if c.Notifier == nil {
		c.Notifier = noopNotifier
	}

	if c.OnComplete == nil {
		c.OnComplete = func(CompletionEvent) {}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "timer.Machine"})

	return nil
}

type tickLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
	// delivering is set while the loop calls the subscribers with a tick.
	delivering atomic.Bool
}

// Machine is the work/break interval state machine.
//
// While running a tick loop decrements the countdown once per second, when an
// interval finishes the machine moves to the next interval paused and emits a
// completion event.
type Machine struct {
	mu       sync.Mutex
	settings model.TimerSettings
	state    model.TimerState
	loop     *tickLoop
	closed   bool

	subsMu  sync.Mutex
	subs    map[int]func(model.TimerSnapshot)
	nextSub int

	clock      Clock
	notifier   Notifier
	onComplete CompletionHandler
	logger     log.Logger
}

// NewMachine returns a new paused timer machine.
func NewMachine(cfg MachineConfig) (*Machine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m := &Machine{
		settings:   cfg.Settings,
		subs:       map[int]func(model.TimerSnapshot){},
		clock:      cfg.Clock,
		notifier:   cfg.Notifier,
		onComplete: cfg.OnComplete,
		logger:     cfg.Logger,
	}
	m.state = m.initialState(cfg.InitialState)

	return m, nil
}

func (m *Machine) initialState(restored *model.TimerState) model.TimerState {
	if restored == nil {
		d := DurationFor(m.settings, false, 0)
		return model.TimerState{
			RemainingSeconds: d,
			IntervalSeconds:  d,
			CurrentCycle:     1,
		}
	}

	st := *restored
	st.IsRunning = false
	if st.CompletedWorkSessions < 0 {
		st.CompletedWorkSessions = 0
	}
	if st.CurrentCycle < 1 {
		st.CurrentCycle = 1
	}
	if st.IntervalSeconds <= 0 {
		st.IntervalSeconds = DurationFor(m.settings, st.IsBreak, st.CompletedWorkSessions)
	}
	if st.RemainingSeconds <= 0 || st.RemainingSeconds > st.IntervalSeconds {
		st.RemainingSeconds = st.IntervalSeconds
	}
	return st
}

// Start resumes the countdown. It's a no-op if already running.
func (m *Machine) Start() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.Warningf("start called on a closed timer")
		return
	}
	if m.state.IsRunning {
		m.mu.Unlock()
		return
	}
	m.state.IsRunning = true
	m.startLoopLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debugf("timer started (%s, %ds left)", snap.State.SessionKind(), snap.State.RemainingSeconds)
	m.publish(snap)
}

// Pause stops the countdown. It's a no-op if already paused.
func (m *Machine) Pause() {
	m.mu.Lock()
	if !m.state.IsRunning {
		m.mu.Unlock()
		return
	}
	m.state.IsRunning = false
	m.stopLoopLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debugf("timer paused (%ds left)", snap.State.RemainingSeconds)
	m.publish(snap)
}

// Reset pauses the timer and sets the countdown to the full length of the
// current interval. The interval kind and the counters are kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.state.IsRunning = false
	m.stopLoopLocked()
	m.resetIntervalLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

// UpdateSettings replaces the settings. When the timer is paused the current
// interval is recomputed, a running countdown is not altered.
func (m *Machine) UpdateSettings(settings model.TimerSettings) {
	settings = settings.Normalize()

	m.mu.Lock()
	m.settings = settings
	if !m.state.IsRunning {
		m.resetIntervalLocked()
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

// Tick advances the countdown by one second. The tick loop calls it once per
// second while running, it does nothing while paused.
func (m *Machine) Tick() {
	m.advance(nil)
}

// Snapshot returns the current settings and state.
func (m *Machine) Snapshot() model.TimerSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be called with a snapshot after every state change.
func (m *Machine) Subscribe(fn func(model.TimerSnapshot)) (unsubscribe func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

// Close stops the timer and waits until the tick loop has finished. It can be
// called from a subscriber: while the loop is delivering a tick snapshot Close
// doesn't wait, the detached loop exits once the delivery returns.
func (m *Machine) Close() error {
	m.mu.Lock()
	m.closed = true
	m.state.IsRunning = false
	loop := m.loop
	m.stopLoopLocked()
	m.mu.Unlock()

	if loop != nil && !loop.delivering.Load() {
		<-loop.done
	}
	return nil
}

func (m *Machine) resetIntervalLocked() {
	d := DurationFor(m.settings, m.state.IsBreak, m.state.CompletedWorkSessions)
	m.state.RemainingSeconds = d
	m.state.IntervalSeconds = d
}

func (m *Machine) snapshotLocked() model.TimerSnapshot {
	return model.TimerSnapshot{Settings: m.settings, State: m.state}
}

func (m *Machine) startLoopLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	loop := &tickLoop{cancel: cancel, done: make(chan struct{})}
	m.loop = loop
	ticker := m.clock.NewTicker(time.Second)

	go func() {
		defer close(loop.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if !m.advance(loop) {
					return
				}
			}
		}
	}()
}

// stopLoopLocked detaches the tick loop. Once detached, ticks of the loop
// have no effect even if they were already in flight.
func (m *Machine) stopLoopLocked() {
	if m.loop == nil {
		return
	}
	m.loop.cancel()
	m.loop = nil
}

// advance applies one tick. When loop is not nil the tick is ignored unless
// the loop is still the machine's current one. Returns false when the loop
// should stop.
func (m *Machine) advance(loop *tickLoop) bool {
	m.mu.Lock()
	if loop != nil && m.loop != loop {
		m.mu.Unlock()
		return false
	}
	if !m.state.IsRunning {
		m.mu.Unlock()
		return false
	}

	if m.state.RemainingSeconds > 1 {
		m.state.RemainingSeconds--
		snap := m.snapshotLocked()
		if loop != nil {
			loop.delivering.Store(true)
		}
		m.mu.Unlock()

		m.publish(snap)
		if loop != nil {
			loop.delivering.Store(false)
		}
		return true
	}

	ev, soundEnabled := m.completeLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Infof("%s session completed (%ds)", ev.Kind, ev.DurationSeconds)
	if soundEnabled {
		m.notifier.Notify(ev.Kind)
	}
	m.publish(snap)
	m.onComplete(ev)

	return false
}

// completeLocked moves the machine to the next interval.
func (m *Machine) completeLocked() (CompletionEvent, bool) {
	ev := CompletionEvent{
		ID:              ulid.Make().String(),
		Kind:            m.state.SessionKind(),
		DurationSeconds: m.state.IntervalSeconds,
		CompletedAt:     m.clock.Now(),
	}

	if m.state.IsBreak {
		m.state.CurrentCycle++
		m.state.IsBreak = false
	} else {
		m.state.CompletedWorkSessions++
		m.state.IsBreak = true
	}
	m.state.IsRunning = false
	m.stopLoopLocked()
	m.resetIntervalLocked()

	return ev, m.settings.SoundEnabled
}

func (m *Machine) publish(snap model.TimerSnapshot) {
	m.subsMu.Lock()
	subs := make([]func(model.TimerSnapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// RestoredState returns the state to restore from a stored snapshot, nil when
// nothing was stored.
func RestoredState(snap model.TimerSnapshot) *model.TimerState {
	if snap.State.IsZero() {
		return nil
	}
	st := snap.State
	return &st
}
