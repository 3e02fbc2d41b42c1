package model

const (
	DefaultWorkMinutes             = 25
	DefaultShortBreakMinutes       = 5
	DefaultLongBreakMinutes        = 15
	DefaultSessionsBeforeLongBreak = 4

	// MinSessionsBeforeLongBreak is the lowest accepted long break cadence.
	MinSessionsBeforeLongBreak = 2
)

// TimerSettings are the user editable timer settings.
type TimerSettings struct {
	WorkMinutes             int
	ShortBreakMinutes       int
	LongBreakMinutes        int
	SessionsBeforeLongBreak int
	SoundEnabled            bool
}

// DefaultTimerSettings returns the default timer settings.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		WorkMinutes:             DefaultWorkMinutes,
		ShortBreakMinutes:       DefaultShortBreakMinutes,
		LongBreakMinutes:        DefaultLongBreakMinutes,
		SessionsBeforeLongBreak: DefaultSessionsBeforeLongBreak,
		SoundEnabled:            true,
	}
}

// Normalize returns a copy of the settings where values below their minimum
// have been replaced by the defaults.
func (s TimerSettings) Normalize() TimerSettings {
	if s.WorkMinutes < 1 {
		s.WorkMinutes = DefaultWorkMinutes
	}
	if s.ShortBreakMinutes < 1 {
		s.ShortBreakMinutes = DefaultShortBreakMinutes
	}
	if s.LongBreakMinutes < 1 {
		s.LongBreakMinutes = DefaultLongBreakMinutes
	}
	if s.SessionsBeforeLongBreak < MinSessionsBeforeLongBreak {
		s.SessionsBeforeLongBreak = DefaultSessionsBeforeLongBreak
	}
	return s
}

// TimerState is the state of the interval timer.
type TimerState struct {
	RemainingSeconds      int
	IsRunning             bool
	IsBreak               bool
	CompletedWorkSessions int
	CurrentCycle          int
	// IntervalSeconds is the duration the current interval was initialized with.
	IntervalSeconds int
}

// SessionKind returns the kind of the current interval.
func (s TimerState) SessionKind() SessionKind {
	if s.IsBreak {
		return SessionKindBreak
	}
	return SessionKindWork
}

// IsZero returns true if the state has never been initialized.
func (s TimerState) IsZero() bool { return s == TimerState{} }

// TimerSnapshot is the persisted timer information.
type TimerSnapshot struct {
	Settings TimerSettings
	State    TimerState
}
