package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/focus"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/printer"
	"github.com/slok/pomo/internal/timer"
	"github.com/slok/pomo/internal/tracker"
)

type FocusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	intervals int
	quiet     bool
	format    string
}

// NewFocusCommand returns the focus command.
func NewFocusCommand(rootCmd *RootCommand, app *kingpin.Application) *FocusCommand {
	c := &FocusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("focus", "Run the timer, logging the work sessions to the active task.")
	c.Cmd.Flag("intervals", "Number of intervals to run, 0 runs until interrupted.").Short('n').Default("1").IntVar(&c.intervals)
	c.Cmd.Flag("quiet", "Do not show the live countdown.").Short('q').BoolVar(&c.quiet)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c FocusCommand) Name() string { return c.Cmd.FullCommand() }

func (c FocusCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	timerRepo, err := newTimerRepository(c.rootCmd)
	if err != nil {
		return err
	}

	trk, err := tracker.NewService(tracker.ServiceConfig{
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create tracker: %w", err)
	}

	svc, err := focus.NewService(focus.ServiceConfig{
		Store:           store,
		Tracker:         trk,
		TimerRepository: timerRepo,
		// Terminal bell.
		Notifier: timer.NotifierFunc(func(model.SessionKind) { fmt.Fprint(c.rootCmd.Stderr, "\a") }),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if t, ok := store.GetActiveTask(); ok {
		fmt.Fprintf(out, "Focusing on %q\n", t.Title)
	} else {
		fmt.Fprintln(out, "No active task, work sessions will not be logged")
	}

	req := focus.Request{
		Intervals: c.intervals,
		OnSession: func(ev timer.CompletionEvent, res tracker.Result) {
			c.clearLine()
			switch {
			case res.Attributed && res.Task != nil:
				fmt.Fprintf(out, "%s session done, %s logged to %q\n", ev.Kind, printer.FormatClock(ev.DurationSeconds), res.Task.Title)
			default:
				fmt.Fprintf(out, "%s session done\n", ev.Kind)
			}
		},
	}
	if !c.quiet {
		req.OnChange = func(snap model.TimerSnapshot) {
			state := "paused"
			if snap.State.IsRunning {
				state = "running"
			}
			fmt.Fprintf(out, "\r%-5s %s (%s) ", snap.State.SessionKind(), printer.FormatClock(snap.State.RemainingSeconds), state)
		}
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("focus failed: %w", err)
	}
	c.clearLine()

	if res.Failed > 0 {
		logger.Warningf("%d sessions could not be logged", res.Failed)
	}

	if err := newPrinter(c.format, out).PrintTimer(res.Timer); err != nil {
		return fmt.Errorf("could not print timer: %w", err)
	}

	return nil
}

func (c FocusCommand) clearLine() {
	if c.quiet {
		return
	}
	fmt.Fprint(c.rootCmd.Stdout, "\r\033[K")
}
