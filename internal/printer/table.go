package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/pomo/internal/app/stats"
	"github.com/slok/pomo/internal/model"
)

// TablePrinter prints board and timer information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tFOCUS\tCREATED")
	for _, tk := range tasks {
		status := string(tk.Status)
		if tk.IsActive() {
			status += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tk.ID, status, tk.Title, focusOf(tk), TimeAgo(tk.CreatedAt))
	}

	return nil
}

// PrintTask prints the task details.
func (t *TablePrinter) PrintTask(tk model.Task) error {
	fmt.Fprintf(t.writer, "Title:      %s\n", tk.Title)
	fmt.Fprintf(t.writer, "ID:         %s\n", tk.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", tk.Status)
	if tk.Description != "" {
		fmt.Fprintf(t.writer, "Notes:      %s\n", tk.Description)
	}
	if tk.Color != "" {
		fmt.Fprintf(t.writer, "Color:      %s\n", tk.Color)
	}
	fmt.Fprintf(t.writer, "Focus:      %s\n", focusOf(tk))
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(tk.CreatedAt))
	if tk.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*tk.CompletedAt))
	}

	return nil
}

// PrintTimer prints the timer state and settings.
func (t *TablePrinter) PrintTimer(snap model.TimerSnapshot) error {
	st, set := snap.State, snap.Settings

	status := "paused"
	if st.IsRunning {
		status = "running"
	}
	sound := "off"
	if set.SoundEnabled {
		sound = "on"
	}

	fmt.Fprintf(t.writer, "Session:    %s (cycle %d)\n", st.SessionKind(), st.CurrentCycle)
	fmt.Fprintf(t.writer, "Remaining:  %s / %s\n", FormatClock(st.RemainingSeconds), FormatClock(st.IntervalSeconds))
	fmt.Fprintf(t.writer, "Status:     %s\n", status)
	fmt.Fprintf(t.writer, "Completed:  %d work sessions\n", st.CompletedWorkSessions)
	fmt.Fprintf(t.writer, "Settings:   %dm work, %dm short break, %dm long break every %d sessions, sound %s\n",
		set.WorkMinutes, set.ShortBreakMinutes, set.LongBreakMinutes, set.SessionsBeforeLongBreak, sound)

	return nil
}

// PrintStats prints the board statistics.
func (t *TablePrinter) PrintStats(st stats.Stats) error {
	fmt.Fprintf(t.writer, "Tasks:      %d todo, %d doing, %d done\n", st.Todo, st.Doing, st.Done)
	fmt.Fprintf(t.writer, "Focus:      %s\n", FormatFocus(st.TotalFocus))
	if len(st.CompletedByDay) == 0 {
		return nil
	}
	fmt.Fprintf(t.writer, "Avg. done:  %s\n", FormatFocus(st.AverageCompletion))

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DAY\tTITLE\tFOCUS")
	for _, d := range st.CompletedByDay {
		day := d.Date.Format("2006-01-02")
		for _, tk := range d.Tasks {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", day, tk.Title, focusOf(tk))
			day = ""
		}
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
