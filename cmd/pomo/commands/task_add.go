package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/taskcreate"
)

type TaskAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	title       string
	description string
	color       string
	start       bool
	format      string
}

// NewTaskAddCommand returns the task add command.
func NewTaskAddCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskAddCommand {
	c := &TaskAddCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("add", "Add a task to the todo column.")
	c.Cmd.Arg("title", "Task title.").Required().StringVar(&c.title)
	c.Cmd.Flag("description", "Task description.").Short('d').StringVar(&c.description)
	c.Cmd.Flag("color", "Task display color.").StringVar(&c.color)
	c.Cmd.Flag("start", "Make the new task the active one.").BoolVar(&c.start)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskAddCommand) Run(ctx context.Context) error {
	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Store:  store,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskcreate.Request{
		Title:       c.title,
		Description: c.description,
		Color:       c.color,
		Start:       c.start,
	})
	if err != nil {
		return fmt.Errorf("could not add task: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTask(*t); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
