package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/tasklist"
	"github.com/slok/pomo/internal/model"
)

type TaskListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	format       string
}

// NewTaskListCommand returns the task list command.
func NewTaskListCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskListCommand {
	c := &TaskListCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("list", "List the tasks of the board.").Alias("ls")
	c.Cmd.Flag("status", "Filter by status (todo, doing, done).").StringVar(&c.statusFilter)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskListCommand) Run(ctx context.Context) error {
	var statusFilter *model.TaskStatus
	if c.statusFilter != "" {
		status, err := parseStatus(c.statusFilter)
		if err != nil {
			return err
		}
		statusFilter = &status
	}

	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Store:  store,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, tasklist.Request{StatusFilter: statusFilter})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTasks(tasks); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
