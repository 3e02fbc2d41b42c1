package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/timerstatus"
)

type TimerStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTimerStatusCommand returns the timer status command.
func NewTimerStatusCommand(rootCmd *RootCommand, timerCmd *kingpin.CmdClause) *TimerStatusCommand {
	c := &TimerStatusCommand{rootCmd: rootCmd}

	c.Cmd = timerCmd.Command("status", "Show the timer settings and the state the next focus resumes from.")
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TimerStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c TimerStatusCommand) Run(ctx context.Context) error {
	repo, err := newTimerRepository(c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := timerstatus.NewService(timerstatus.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, timerstatus.Request{})
	if err != nil {
		return fmt.Errorf("could not get timer status: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTimer(*snap); err != nil {
		return fmt.Errorf("could not print timer: %w", err)
	}

	return nil
}
