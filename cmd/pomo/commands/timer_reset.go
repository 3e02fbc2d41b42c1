package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/timerreset"
)

type TimerResetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	full   bool
	format string
}

// NewTimerResetCommand returns the timer reset command.
func NewTimerResetCommand(rootCmd *RootCommand, timerCmd *kingpin.CmdClause) *TimerResetCommand {
	c := &TimerResetCommand{rootCmd: rootCmd}

	c.Cmd = timerCmd.Command("reset", "Restart the countdown of the current interval.")
	c.Cmd.Flag("full", "Also reset the session counters.").BoolVar(&c.full)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TimerResetCommand) Name() string { return c.Cmd.FullCommand() }

func (c TimerResetCommand) Run(ctx context.Context) error {
	repo, err := newTimerRepository(c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := timerreset.NewService(timerreset.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, timerreset.Request{Full: c.full})
	if err != nil {
		return fmt.Errorf("could not reset timer: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTimer(*snap); err != nil {
		return fmt.Errorf("could not print timer: %w", err)
	}

	return nil
}
