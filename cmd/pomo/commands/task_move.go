package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/taskupdate"
)

type TaskMoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref    string
	status string
	format string
}

// NewTaskMoveCommand returns the task move command.
func NewTaskMoveCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskMoveCommand {
	c := &TaskMoveCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("move", "Move a task to another column, moving it to doing makes it the active task.").Alias("mv")
	c.Cmd.Arg("task", "Task ID, ID prefix or title.").Required().StringVar(&c.ref)
	c.Cmd.Arg("status", "Destination column (todo, doing, done).").Required().StringVar(&c.status)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskMoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskMoveCommand) Run(ctx context.Context) error {
	status, err := parseStatus(c.status)
	if err != nil {
		return err
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

	t, err := svc.Run(ctx, taskupdate.Request{Ref: c.ref, Status: &status})
	if err != nil {
		return fmt.Errorf("could not move task: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTask(*t); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
