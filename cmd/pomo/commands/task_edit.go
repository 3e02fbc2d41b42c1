package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/taskupdate"
)

type TaskEditCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref         string
	title       string
	description string
	color       string
	format      string

	titleSet       bool
	descriptionSet bool
	colorSet       bool
}

// NewTaskEditCommand returns the task edit command.
func NewTaskEditCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskEditCommand {
	c := &TaskEditCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("edit", "Edit the fields of a task.")
	c.Cmd.Arg("task", "Task ID, ID prefix or title.").Required().StringVar(&c.ref)
	c.Cmd.Flag("title", "New title.").IsSetByUser(&c.titleSet).StringVar(&c.title)
	c.Cmd.Flag("description", "New description.").Short('d').IsSetByUser(&c.descriptionSet).StringVar(&c.description)
	c.Cmd.Flag("color", "New display color, empty removes it.").IsSetByUser(&c.colorSet).StringVar(&c.color)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskEditCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskEditCommand) Run(ctx context.Context) error {
	// Only the flags set by the user are changed.
	req := taskupdate.Request{Ref: c.ref}
	if c.titleSet {
		req.Title = &c.title
	}
	if c.descriptionSet {
		req.Description = &c.description
	}
	if c.colorSet {
		req.Color = &c.color
	}

	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := taskupdate.NewService(taskupdate.ServiceConfig{
		Store:  store,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not edit task: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTask(*t); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}

