package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/export"
	"github.com/slok/pomo/internal/printer"
	"github.com/slok/pomo/internal/task"
)

type GuestExportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	output string
}

// NewGuestExportCommand returns the guest export command.
func NewGuestExportCommand(rootCmd *RootCommand, guestCmd *kingpin.CmdClause) *GuestExportCommand {
	c := &GuestExportCommand{rootCmd: rootCmd}

	c.Cmd = guestCmd.Command("export", "Export the guest board as JSON, to migrate it to an account.")
	c.Cmd.Flag("output", "Output file, stdout when empty.").Short('o').StringVar(&c.output)

	return c
}

func (c GuestExportCommand) Name() string { return c.Cmd.FullCommand() }

func (c GuestExportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := newGuestRepository(c.rootCmd)
	if err != nil {
		return err
	}

	store, err := task.NewStore(task.StoreConfig{Backend: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create task store: %w", err)
	}
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("could not load guest tasks: %w", err)
	}

	svc, err := export.NewService(export.ServiceConfig{
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	data, err := svc.Run(ctx, export.Request{})
	if err != nil {
		return fmt.Errorf("could not export guest board: %w", err)
	}

	out := c.rootCmd.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := printer.NewJSONPrinter(out).PrintExport(*data); err != nil {
		return fmt.Errorf("could not write export: %w", err)
	}

	if c.output != "" {
		logger.Infof("Exported %d guest tasks to %s", len(data.Tasks), c.output)
	}

	return nil
}
