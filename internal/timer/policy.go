package timer

import "github.com/slok/pomo/internal/model"

// IsLongBreak returns true if the break that follows completedWorkSessions
// work completions is a long break.
func IsLongBreak(settings model.TimerSettings, completedWorkSessions int) bool {
	settings = settings.Normalize()
	return completedWorkSessions > 0 && completedWorkSessions%settings.SessionsBeforeLongBreak == 0
}

// DurationFor returns the length in seconds of an interval. It is the only
// place where interval lengths are decided, every state transition of the
// machine uses it.
func DurationFor(settings model.TimerSettings, isBreak bool, completedWorkSessions int) int {
	settings = settings.Normalize()

	if !isBreak {
		return settings.WorkMinutes * 60
	}

	if IsLongBreak(settings, completedWorkSessions) {
		return settings.LongBreakMinutes * 60
	}
	return settings.ShortBreakMinutes * 60
}
