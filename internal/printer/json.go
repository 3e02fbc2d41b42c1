package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/pomo/internal/app/export"
	"github.com/slok/pomo/internal/app/stats"
	"github.com/slok/pomo/internal/model"
)

// JSONPrinter prints board and timer information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type taskOutput struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Position     int        `json:"position"`
	FocusSeconds int        `json:"focus_seconds"`
	Color        string     `json:"color,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type timerOutput struct {
	Settings timerSettingsOutput `json:"settings"`
	State    timerStateOutput    `json:"state"`
}

type timerSettingsOutput struct {
	WorkMinutes             int  `json:"work_minutes"`
	ShortBreakMinutes       int  `json:"short_break_minutes"`
	LongBreakMinutes        int  `json:"long_break_minutes"`
	SessionsBeforeLongBreak int  `json:"sessions_before_long_break"`
	SoundEnabled            bool `json:"sound_enabled"`
}

type timerStateOutput struct {
	Session               string `json:"session"`
	RemainingSeconds      int    `json:"remaining_seconds"`
	IntervalSeconds       int    `json:"interval_seconds"`
	IsRunning             bool   `json:"is_running"`
	CompletedWorkSessions int    `json:"completed_work_sessions"`
	CurrentCycle          int    `json:"current_cycle"`
}

type statsOutput struct {
	Todo                     int              `json:"todo"`
	Doing                    int              `json:"doing"`
	Done                     int              `json:"done"`
	TotalFocusSeconds        int              `json:"total_focus_seconds"`
	AverageCompletionSeconds int              `json:"average_completion_seconds"`
	CompletedByDay           []statsDayOutput `json:"completed_by_day"`
}

type statsDayOutput struct {
	Date  string       `json:"date"`
	Tasks []taskOutput `json:"tasks"`
}

// exportOutput uses the same field names as the guest data files.
type exportOutput struct {
	Tasks         []exportTask `json:"tasks"`
	CurrentTaskID *string      `json:"currentTaskId"`
}

type exportTask struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Position     int        `json:"position"`
	FocusSeconds int        `json:"focusSeconds"`
	Color        string     `json:"color,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskOutput, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toTaskOutput(t))
	}
	return j.encode(items)
}

// PrintTask prints a task in JSON format.
func (j *JSONPrinter) PrintTask(t model.Task) error {
	return j.encode(toTaskOutput(t))
}

// PrintTimer prints the timer in JSON format.
func (j *JSONPrinter) PrintTimer(snap model.TimerSnapshot) error {
	return j.encode(timerOutput{
		Settings: timerSettingsOutput{
			WorkMinutes:             snap.Settings.WorkMinutes,
			ShortBreakMinutes:       snap.Settings.ShortBreakMinutes,
			LongBreakMinutes:        snap.Settings.LongBreakMinutes,
			SessionsBeforeLongBreak: snap.Settings.SessionsBeforeLongBreak,
			SoundEnabled:            snap.Settings.SoundEnabled,
		},
		State: timerStateOutput{
			Session:               string(snap.State.SessionKind()),
			RemainingSeconds:      snap.State.RemainingSeconds,
			IntervalSeconds:       snap.State.IntervalSeconds,
			IsRunning:             snap.State.IsRunning,
			CompletedWorkSessions: snap.State.CompletedWorkSessions,
			CurrentCycle:          snap.State.CurrentCycle,
		},
	})
}

// PrintStats prints the board statistics in JSON format.
func (j *JSONPrinter) PrintStats(st stats.Stats) error {
	out := statsOutput{
		Todo:                     st.Todo,
		Doing:                    st.Doing,
		Done:                     st.Done,
		TotalFocusSeconds:        int(st.TotalFocus / time.Second),
		AverageCompletionSeconds: int(st.AverageCompletion / time.Second),
		CompletedByDay:           make([]statsDayOutput, 0, len(st.CompletedByDay)),
	}
	for _, d := range st.CompletedByDay {
		day := statsDayOutput{Date: d.Date.Format("2006-01-02")}
		for _, t := range d.Tasks {
			day.Tasks = append(day.Tasks, toTaskOutput(t))
		}
		out.CompletedByDay = append(out.CompletedByDay, day)
	}
	return j.encode(out)
}

// PrintExport prints the exported board.
func (j *JSONPrinter) PrintExport(data export.Data) error {
	out := exportOutput{Tasks: make([]exportTask, 0, len(data.Tasks))}
	for _, t := range data.Tasks {
		out.Tasks = append(out.Tasks, exportTask{
			ID:           t.ID,
			Title:        t.Title,
			Description:  t.Description,
			Status:       string(t.Status),
			Position:     t.Position,
			FocusSeconds: t.FocusSeconds,
			Color:        t.Color,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
			CompletedAt:  t.CompletedAt,
		})
	}
	if data.CurrentTaskID != "" {
		out.CurrentTaskID = &data.CurrentTaskID
	}
	return j.encode(out)
}

// PrintMessage prints a message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toTaskOutput(t model.Task) taskOutput {
	return taskOutput{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Position:     t.Position,
		FocusSeconds: t.FocusSeconds,
		Color:        t.Color,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt,
	}
}

func focusOf(t model.Task) string {
	return FormatFocus(time.Duration(t.FocusSeconds) * time.Second)
}
