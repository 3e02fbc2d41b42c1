package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/stats"
)

type StatsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewStatsCommand returns the stats command.
func NewStatsCommand(rootCmd *RootCommand, app *kingpin.Application) *StatsCommand {
	c := &StatsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("stats", "Show the board statistics and the completed tasks by day.")
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c StatsCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatsCommand) Run(ctx context.Context) error {
	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := stats.NewService(stats.ServiceConfig{
		Store:  store,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	st, err := svc.Run(ctx, stats.Request{})
	if err != nil {
		return fmt.Errorf("could not compute stats: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintStats(*st); err != nil {
		return fmt.Errorf("could not print stats: %w", err)
	}

	return nil
}
