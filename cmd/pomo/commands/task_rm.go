package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/taskremove"
)

type TaskRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	refs []string
}

// NewTaskRmCommand returns the task rm command.
func NewTaskRmCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskRmCommand {
	c := &TaskRmCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("rm", "Remove one or more tasks.")
	c.Cmd.Arg("tasks", "Task IDs, ID prefixes or titles.").Required().StringsVar(&c.refs)

	return c
}

func (c TaskRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskRmCommand) Run(ctx context.Context) error {
	store, closeFn, err := newTaskStore(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := taskremove.NewService(taskremove.ServiceConfig{
		Store:  store,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	for _, ref := range c.refs {
		t, err := svc.Run(ctx, taskremove.Request{Ref: ref})
		if err != nil {
			return fmt.Errorf("could not remove task %q: %w", ref, err)
		}
		fmt.Fprintf(c.rootCmd.Stdout, "Removed task %s (%s)\n", t.Title, t.ID)
	}

	return nil
}
