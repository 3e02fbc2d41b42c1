package lib

import (
	"time"

	"github.com/slok/pomo/internal/app/stats"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/timer"
)

// TaskStatus is the board column of a task.
type TaskStatus string

const (
	// TaskStatusTodo is a task waiting to be worked on.
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusDoing is the active task, there is at most one.
	TaskStatusDoing TaskStatus = "doing"
	// TaskStatusDone is a completed task.
	TaskStatusDone TaskStatus = "done"
)

// Task is a task of the board.
//
// This is a read-only snapshot of the task at the time of the API call.
type Task struct {
	// ID is the unique identifier (ULID) assigned at creation.
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	// Position is the order of the task inside its column.
	Position int
	// Focus is the work time logged to the task.
	Focus     time.Duration
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
	// CompletedAt is set while the task is done.
	CompletedAt *time.Time
}

// CreateTaskOpts configures task creation.
type CreateTaskOpts struct {
	// Title is required.
	Title       string
	Description string
	Color       string
	// Start makes the new task the active one.
	Start bool
}

// UpdateTaskOpts configures a task update. Nil fields are left untouched.
type UpdateTaskOpts struct {
	Title       *string
	Description *string
	Color       *string
	// Status moves the task to another column. Moving a task to doing moves
	// the previous active task back to todo.
	Status *TaskStatus
}

// ListTasksOpts configures the task listing.
type ListTasksOpts struct {
	// Status only lists the tasks of this column.
	Status *TaskStatus
}

// SessionKind is the kind of a timer interval.
type SessionKind string

const (
	SessionKindWork  SessionKind = "work"
	SessionKindBreak SessionKind = "break"
)

// TimerSettings are the timer settings.
type TimerSettings struct {
	WorkMinutes             int
	ShortBreakMinutes       int
	LongBreakMinutes        int
	SessionsBeforeLongBreak int
	SoundEnabled            bool
}

// TimerState is the state of the timer.
type TimerState struct {
	Session               SessionKind
	Remaining             time.Duration
	Interval              time.Duration
	Running               bool
	CompletedWorkSessions int
	CurrentCycle          int
}

// Timer is the timer settings and state.
type Timer struct {
	Settings TimerSettings
	State    TimerState
}

// UpdateTimerSettingsOpts configures a timer settings update. The file is
// applied first and the fields override it. Nil fields are left untouched.
type UpdateTimerSettingsOpts struct {
	// File is an optional settings YAML file path.
	File                    string
	WorkMinutes             *int
	ShortBreakMinutes       *int
	LongBreakMinutes        *int
	SessionsBeforeLongBreak *int
	SoundEnabled            *bool
}

// Session is a completed timer interval.
type Session struct {
	ID          string
	Kind        SessionKind
	Duration    time.Duration
	CompletedAt time.Time
	// Attributed is true when the session time was logged to a task.
	Attributed bool
}

// FocusOpts configures a focus run.
type FocusOpts struct {
	// Intervals is the number of intervals to run, 0 runs until the context
	// is cancelled.
	Intervals int
	// OnChange is called on every timer change.
	OnChange func(Timer)
	// OnSession is called after every completed session.
	OnSession func(Session)
	// OnNotify is called when an interval finishes and the sound is enabled.
	OnNotify func(SessionKind)
}

// FocusResult is the result of a focus run.
type FocusResult struct {
	Sessions []Session
	// Failed is the number of sessions that could not be logged.
	Failed int
	Timer  Timer
}

// Stats are the board statistics.
type Stats struct {
	Todo              int
	Doing             int
	Done              int
	TotalFocus        time.Duration
	AverageCompletion time.Duration
	// CompletedByDay has the done tasks grouped by completion day, newest first.
	CompletedByDay []StatsDay
}

// StatsDay is a group of tasks completed the same day.
type StatsDay struct {
	Date  time.Time
	Tasks []Task
}

// GuestExport is the guest board, used to move the guest data to an account.
type GuestExport struct {
	Tasks []Task
	// CurrentTaskID is the active task ID, empty if there is none.
	CurrentTaskID string
}

// Clock is the time source of the focus timer.
type Clock = timer.Clock

// ManualClock is a clock that only ticks when told to.
type ManualClock = timer.ManualClock

// NewManualClock returns a new manual clock, use it to drive the focus timer
// in tests.
func NewManualClock(now time.Time) *ManualClock { return timer.NewManualClock(now) }

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      TaskStatus(t.Status),
		Position:    t.Position,
		Focus:       time.Duration(t.FocusSeconds) * time.Second,
		Color:       t.Color,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func toInternalStatus(s *TaskStatus) *model.TaskStatus {
	if s == nil {
		return nil
	}
	st := model.TaskStatus(*s)
	return &st
}

func fromInternalTimer(s model.TimerSnapshot) Timer {
	return Timer{
		Settings: TimerSettings{
			WorkMinutes:             s.Settings.WorkMinutes,
			ShortBreakMinutes:       s.Settings.ShortBreakMinutes,
			LongBreakMinutes:        s.Settings.LongBreakMinutes,
			SessionsBeforeLongBreak: s.Settings.SessionsBeforeLongBreak,
			SoundEnabled:            s.Settings.SoundEnabled,
		},
		State: TimerState{
			Session:               SessionKind(s.State.SessionKind()),
			Remaining:             time.Duration(s.State.RemainingSeconds) * time.Second,
			Interval:              time.Duration(s.State.IntervalSeconds) * time.Second,
			Running:               s.State.IsRunning,
			CompletedWorkSessions: s.State.CompletedWorkSessions,
			CurrentCycle:          s.State.CurrentCycle,
		},
	}
}

func fromInternalSession(ev timer.CompletionEvent, attributed bool) Session {
	return Session{
		ID:          ev.ID,
		Kind:        SessionKind(ev.Kind),
		Duration:    time.Duration(ev.DurationSeconds) * time.Second,
		CompletedAt: ev.CompletedAt,
		Attributed:  attributed,
	}
}

func fromInternalStats(st stats.Stats) Stats {
	result := Stats{
		Todo:              st.Todo,
		Doing:             st.Doing,
		Done:              st.Done,
		TotalFocus:        st.TotalFocus,
		AverageCompletion: st.AverageCompletion,
	}
	for _, d := range st.CompletedByDay {
		result.CompletedByDay = append(result.CompletedByDay, StatsDay{
			Date:  d.Date,
			Tasks: fromInternalTaskList(d.Tasks),
		})
	}
	return result
}
