package timer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/timer"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []timer.CompletionEvent
}

func (e *eventRecorder) handle(ev timer.CompletionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventRecorder) all() []timer.CompletionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]timer.CompletionEvent{}, e.events...)
}

func newTestMachine(t *testing.T, settings model.TimerSettings, notifier timer.Notifier) (*timer.Machine, *eventRecorder, *timer.ManualClock) {
	t.Helper()

	rec := &eventRecorder{}
	clock := timer.NewManualClock(time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC))
	m, err := timer.NewMachine(timer.MachineConfig{
		Settings:   settings,
		Clock:      clock,
		Notifier:   notifier,
		OnComplete: rec.handle,
		Logger:     log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m, rec, clock
}

func defaultSettings() model.TimerSettings {
	return model.TimerSettings{WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsBeforeLongBreak: 4, SoundEnabled: true}
}

func TestMachineInitialState(t *testing.T) {
	tests := map[string]struct {
		settings model.TimerSettings
		restored *model.TimerState
		expState model.TimerState
	}{
		"A new machine should start paused on a work interval.": {
			settings: defaultSettings(),
			expState: model.TimerState{RemainingSeconds: 1500, IntervalSeconds: 1500, CurrentCycle: 1},
		},

		"A restored running state should be restored paused.": {
			settings: defaultSettings(),
			restored: &model.TimerState{RemainingSeconds: 120, IntervalSeconds: 300, IsRunning: true, IsBreak: true, CompletedWorkSessions: 1, CurrentCycle: 1},
			expState: model.TimerState{RemainingSeconds: 120, IntervalSeconds: 300, IsBreak: true, CompletedWorkSessions: 1, CurrentCycle: 1},
		},

		"A restored state without interval should use the policy.": {
			settings: defaultSettings(),
			restored: &model.TimerState{RemainingSeconds: 100, IsBreak: true, CompletedWorkSessions: 4},
			expState: model.TimerState{RemainingSeconds: 100, IntervalSeconds: 900, IsBreak: true, CompletedWorkSessions: 4, CurrentCycle: 1},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := timer.NewMachine(timer.MachineConfig{Settings: test.settings, InitialState: test.restored})
			require.NoError(t, err)
			defer m.Close()

			assert.Equal(t, test.expState, m.Snapshot().State)
		})
	}
}

func TestMachineWorkIntervalCompletes(t *testing.T) {
	assert := assert.New(t)

	m, rec, _ := newTestMachine(t, defaultSettings(), nil)
	assert.Equal(1500, m.Snapshot().State.RemainingSeconds)

	m.Start()
	for i := 0; i < 1499; i++ {
		m.Tick()
	}
	assert.Equal(1, m.Snapshot().State.RemainingSeconds)
	assert.Empty(rec.all())

	m.Tick()

	events := rec.all()
	if assert.Len(events, 1) {
		assert.Equal(model.SessionKindWork, events[0].Kind)
		assert.Equal(1500, events[0].DurationSeconds)
		assert.NotEmpty(events[0].ID)
	}

	st := m.Snapshot().State
	assert.False(st.IsRunning)
	assert.True(st.IsBreak)
	assert.Equal(1, st.CompletedWorkSessions)
	assert.Equal(1, st.CurrentCycle)
	assert.Equal(300, st.RemainingSeconds)

	// Breaks don't start on their own.
	m.Tick()
	assert.Len(rec.all(), 1)
	assert.Equal(300, m.Snapshot().State.RemainingSeconds)
}

func TestMachineFullCycles(t *testing.T) {
	assert := assert.New(t)

	settings := model.TimerSettings{WorkMinutes: 1, ShortBreakMinutes: 1, LongBreakMinutes: 2, SessionsBeforeLongBreak: 2}
	m, rec, _ := newTestMachine(t, settings, nil)

	runInterval := func() {
		m.Start()
		for m.Snapshot().State.IsRunning {
			m.Tick()
		}
	}

	// Work 1 -> short break.
	runInterval()
	assert.Equal(60, m.Snapshot().State.RemainingSeconds)
	runInterval()
	assert.Equal(2, m.Snapshot().State.CurrentCycle)

	// Work 2 -> long break.
	runInterval()
	st := m.Snapshot().State
	assert.True(st.IsBreak)
	assert.Equal(2, st.CompletedWorkSessions)
	assert.Equal(120, st.RemainingSeconds)
	runInterval()

	events := rec.all()
	if assert.Len(events, 4) {
		assert.Equal(model.SessionKindWork, events[0].Kind)
		assert.Equal(model.SessionKindBreak, events[1].Kind)
		assert.Equal(60, events[1].DurationSeconds)
		assert.Equal(model.SessionKindWork, events[2].Kind)
		assert.Equal(model.SessionKindBreak, events[3].Kind)
		assert.Equal(120, events[3].DurationSeconds)
	}
	st = m.Snapshot().State
	assert.False(st.IsBreak)
	assert.Equal(3, st.CurrentCycle)
}

func TestMachineStartPause(t *testing.T) {
	assert := assert.New(t)

	m, _, _ := newTestMachine(t, defaultSettings(), nil)

	// Ticks while paused do nothing.
	m.Tick()
	assert.Equal(1500, m.Snapshot().State.RemainingSeconds)

	m.Start()
	m.Start()
	assert.True(m.Snapshot().State.IsRunning)
	assert.Equal(1500, m.Snapshot().State.RemainingSeconds)

	m.Tick()
	m.Pause()
	m.Pause()
	assert.False(m.Snapshot().State.IsRunning)
	assert.Equal(1499, m.Snapshot().State.RemainingSeconds)

	m.Tick()
	assert.Equal(1499, m.Snapshot().State.RemainingSeconds)
}

func TestMachineResetIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	m, _, _ := newTestMachine(t, defaultSettings(), nil)
	m.Start()
	for i := 0; i < 10; i++ {
		m.Tick()
	}

	m.Reset()
	once := m.Snapshot().State
	m.Reset()
	twice := m.Snapshot().State

	assert.Equal(once, twice)
	assert.Equal(1500, twice.RemainingSeconds)
	assert.False(twice.IsRunning)
}

func TestMachineResetKeepsIntervalAndCounters(t *testing.T) {
	assert := assert.New(t)

	settings := model.TimerSettings{WorkMinutes: 1, ShortBreakMinutes: 2, LongBreakMinutes: 3, SessionsBeforeLongBreak: 2}
	m, _, _ := newTestMachine(t, settings, nil)
	m.Start()
	for m.Snapshot().State.IsRunning {
		m.Tick()
	}
	m.Start()
	m.Tick()

	m.Reset()
	st := m.Snapshot().State
	assert.True(st.IsBreak)
	assert.Equal(1, st.CompletedWorkSessions)
	assert.Equal(1, st.CurrentCycle)
	assert.Equal(120, st.RemainingSeconds)
}

func TestMachineUpdateSettings(t *testing.T) {
	tests := map[string]struct {
		running      bool
		expRemaining int
	}{
		"Changing settings while paused should recompute the countdown.": {
			running:      false,
			expRemaining: 1800,
		},

		"Changing settings while running should not alter the countdown.": {
			running:      true,
			expRemaining: 1490,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m, _, _ := newTestMachine(t, defaultSettings(), nil)
			if test.running {
				m.Start()
				for i := 0; i < 10; i++ {
					m.Tick()
				}
			}

			s := defaultSettings()
			s.WorkMinutes = 30
			m.UpdateSettings(s)

			assert.Equal(test.expRemaining, m.Snapshot().State.RemainingSeconds)
			assert.Equal(30, m.Snapshot().Settings.WorkMinutes)
		})
	}
}

func TestMachineRunningSettingsChangeAppliesOnNextInterval(t *testing.T) {
	assert := assert.New(t)

	settings := model.TimerSettings{WorkMinutes: 1, ShortBreakMinutes: 1, LongBreakMinutes: 2, SessionsBeforeLongBreak: 4}
	m, rec, _ := newTestMachine(t, settings, nil)
	m.Start()
	m.Tick()

	settings.WorkMinutes = 2
	settings.ShortBreakMinutes = 3
	m.UpdateSettings(settings)
	for m.Snapshot().State.IsRunning {
		m.Tick()
	}

	events := rec.all()
	if assert.Len(events, 1) {
		// The finished interval keeps the duration it started with.
		assert.Equal(60, events[0].DurationSeconds)
	}
	assert.Equal(180, m.Snapshot().State.RemainingSeconds)
}

func TestMachineNotifier(t *testing.T) {
	tests := map[string]struct {
		sound        bool
		expNotifyLen int
	}{
		"With sound enabled the notifier should be called.":  {sound: true, expNotifyLen: 1},
		"With sound disabled the notifier should be skipped.": {sound: false, expNotifyLen: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var got []model.SessionKind
			notifier := timer.NotifierFunc(func(k model.SessionKind) { got = append(got, k) })

			settings := defaultSettings()
			settings.WorkMinutes = 1
			settings.SoundEnabled = test.sound
			m, _, _ := newTestMachine(t, settings, notifier)

			m.Start()
			for m.Snapshot().State.IsRunning {
				m.Tick()
			}

			assert.Len(t, got, test.expNotifyLen)
		})
	}
}

func TestMachineSubscribe(t *testing.T) {
	assert := assert.New(t)

	m, _, _ := newTestMachine(t, defaultSettings(), nil)

	var snaps []model.TimerSnapshot
	unsubscribe := m.Subscribe(func(s model.TimerSnapshot) { snaps = append(snaps, s) })

	m.Start()
	m.Tick()
	m.Pause()
	unsubscribe()
	m.Start()

	if assert.Len(snaps, 3) {
		assert.True(snaps[0].State.IsRunning)
		assert.Equal(1499, snaps[1].State.RemainingSeconds)
		assert.False(snaps[2].State.IsRunning)
	}
}

func TestMachineTickLoop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	settings := defaultSettings()
	settings.WorkMinutes = 1
	m, rec, clock := newTestMachine(t, settings, nil)

	m.Start()
	require.Eventually(func() bool { return clock.ActiveTickers() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 10; i++ {
		require.Equal(1, clock.Fire())
	}
	require.Eventually(func() bool { return m.Snapshot().State.RemainingSeconds == 50 }, time.Second, time.Millisecond)

	// Pausing stops the scheduled ticks.
	m.Pause()
	require.Eventually(func() bool { return clock.ActiveTickers() == 0 }, time.Second, time.Millisecond)
	assert.Equal(50, m.Snapshot().State.RemainingSeconds)

	// Resume until completion, the loop finishes on its own.
	m.Start()
	require.Eventually(func() bool { return clock.ActiveTickers() == 1 }, time.Second, time.Millisecond)
	for i := 0; i < 50; i++ {
		require.Equal(1, clock.Fire())
	}
	require.Eventually(func() bool { return len(rec.all()) == 1 }, time.Second, time.Millisecond)
	require.Eventually(func() bool { return clock.ActiveTickers() == 0 }, time.Second, time.Millisecond)
	assert.True(m.Snapshot().State.IsBreak)
	assert.False(m.Snapshot().State.IsRunning)
}

func TestMachineClose(t *testing.T) {
	clock := timer.NewManualClock(time.Now())
	m, err := timer.NewMachine(timer.MachineConfig{Clock: clock})
	require.NoError(t, err)

	m.Start()
	require.NoError(t, m.Close())
	assert.Equal(t, 0, clock.ActiveTickers())

	m.Start()
	assert.False(t, m.Snapshot().State.IsRunning)
}

func TestMachineCloseFromSubscriber(t *testing.T) {
	require := require.New(t)

	m, rec, clock := newTestMachine(t, defaultSettings(), nil)

	closed := make(chan struct{})
	var once sync.Once
	m.Subscribe(func(s model.TimerSnapshot) {
		if !s.State.IsRunning || s.State.RemainingSeconds == s.State.IntervalSeconds {
			return
		}
		once.Do(func() {
			_ = m.Close()
			close(closed)
		})
	})

	m.Start()
	require.Eventually(func() bool { return clock.ActiveTickers() == 1 }, time.Second, time.Millisecond)
	require.Equal(1, clock.Fire())

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close called from a subscriber didn't return")
	}

	require.Eventually(func() bool { return clock.ActiveTickers() == 0 }, time.Second, time.Millisecond)
	state := m.Snapshot().State
	require.False(state.IsRunning)
	require.Equal(state.IntervalSeconds-1, state.RemainingSeconds)
	require.Empty(rec.all())
}
