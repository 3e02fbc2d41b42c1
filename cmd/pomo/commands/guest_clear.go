package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/guestclear"
)

type GuestClearCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	yes bool
}

// NewGuestClearCommand returns the guest clear command.
func NewGuestClearCommand(rootCmd *RootCommand, guestCmd *kingpin.CmdClause) *GuestClearCommand {
	c := &GuestClearCommand{rootCmd: rootCmd}

	c.Cmd = guestCmd.Command("clear", "Remove the guest board and reset the timer.")
	c.Cmd.Flag("yes", "Confirm the removal.").Short('y').BoolVar(&c.yes)

	return c
}

func (c GuestClearCommand) Name() string { return c.Cmd.FullCommand() }

func (c GuestClearCommand) Run(ctx context.Context) error {
	if !c.yes {
		return fmt.Errorf("guest data removal needs confirmation, use --yes")
	}

	tasks, err := newGuestRepository(c.rootCmd)
	if err != nil {
		return err
	}

	timerRepo, err := newTimerRepository(c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := guestclear.NewService(guestclear.ServiceConfig{
		Tasks:  tasks,
		Timer:  timerRepo,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, guestclear.Request{}); err != nil {
		return fmt.Errorf("could not clear guest data: %w", err)
	}

	fmt.Fprintln(c.rootCmd.Stdout, "Guest data cleared")

	return nil
}
