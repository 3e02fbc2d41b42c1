package lib

import (
	"context"
	"fmt"
	"io"

	"github.com/slok/pomo/internal/app/export"
	"github.com/slok/pomo/internal/app/guestclear"
	"github.com/slok/pomo/internal/app/stats"
	"github.com/slok/pomo/internal/app/taskcreate"
	"github.com/slok/pomo/internal/app/tasklist"
	"github.com/slok/pomo/internal/app/taskremove"
	"github.com/slok/pomo/internal/app/taskupdate"
	"github.com/slok/pomo/internal/printer"
	"github.com/slok/pomo/internal/storage/local"
	"github.com/slok/pomo/internal/task"
)

// CreateTask adds a task at the end of the todo column.
//
// Returns [ErrNotValid] if the title is empty.
func (c *Client) CreateTask(ctx context.Context, opts CreateTaskOpts) (*Task, error) {
	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskcreate.Request{
		Title:       opts.Title,
		Description: opts.Description,
		Color:       opts.Color,
		Start:       opts.Start,
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTask(*t)
	return &result, nil
}

// UpdateTask edits the task referenced by ID, unambiguous ID prefix or title.
//
// Returns [ErrNotFound] if the task does not exist, or [ErrNotValid] if the
// reference is ambiguous or there is nothing to update.
func (c *Client) UpdateTask(ctx context.Context, ref string, opts UpdateTaskOpts) (*Task, error) {
	svc, err := taskupdate.NewService(taskupdate.ServiceConfig{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskupdate.Request{
		Ref:         ref,
		Title:       opts.Title,
		Description: opts.Description,
		Color:       opts.Color,
		Status:      toInternalStatus(opts.Status),
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTask(*t)
	return &result, nil
}

// MoveTask moves the referenced task to another column. Moving a task to
// doing makes it the active task.
func (c *Client) MoveTask(ctx context.Context, ref string, status TaskStatus) (*Task, error) {
	return c.UpdateTask(ctx, ref, UpdateTaskOpts{Status: &status})
}

// RemoveTask removes the referenced task and returns it.
func (c *Client) RemoveTask(ctx context.Context, ref string) (*Task, error) {
	svc, err := taskremove.NewService(taskremove.ServiceConfig{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskremove.Request{Ref: ref})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalTask(*t)
	return &result, nil
}

// ListTasks lists the tasks in board order. Pass nil opts to list all of them.
func (c *Client) ListTasks(ctx context.Context, opts *ListTasksOpts) ([]Task, error) {
	svc, err := tasklist.NewService(tasklist.ServiceConfig{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	var req tasklist.Request
	if opts != nil {
		req.StatusFilter = toInternalStatus(opts.Status)
	}

	tasks, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// ActiveTask returns the doing task, nil if there is none.
func (c *Client) ActiveTask(ctx context.Context) (*Task, error) {
	t, ok := c.store.GetActiveTask()
	if !ok {
		return nil, nil
	}
	result := fromInternalTask(*t)
	return &result, nil
}

// Stats returns the board statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	svc, err := stats.NewService(stats.ServiceConfig{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	st, err := svc.Run(ctx, stats.Request{})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalStats(*st)
	return &result, nil
}

// ExportGuest returns the guest board, regardless of the client account.
func (c *Client) ExportGuest(ctx context.Context) (*GuestExport, error) {
	data, err := c.exportGuest(ctx)
	if err != nil {
		return nil, err
	}

	return &GuestExport{
		Tasks:         fromInternalTaskList(data.Tasks),
		CurrentTaskID: data.CurrentTaskID,
	}, nil
}

// ExportGuestJSON writes the guest board as JSON, using the same format as
// the guest data files.
func (c *Client) ExportGuestJSON(ctx context.Context, w io.Writer) error {
	data, err := c.exportGuest(ctx)
	if err != nil {
		return err
	}

	if err := printer.NewJSONPrinter(w).PrintExport(*data); err != nil {
		return fmt.Errorf("could not write export: %w", err)
	}
	return nil
}

func (c *Client) exportGuest(ctx context.Context) (*export.Data, error) {
	store, err := c.guestStore(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := export.NewService(export.ServiceConfig{Store: store, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	data, err := svc.Run(ctx, export.Request{})
	if err != nil {
		return nil, mapError(err)
	}
	return data, nil
}

// ClearGuest removes the guest board and resets the timer to its defaults.
func (c *Client) ClearGuest(ctx context.Context) error {
	repo, err := c.guestRepository()
	if err != nil {
		return err
	}

	svc, err := guestclear.NewService(guestclear.ServiceConfig{
		Tasks:  repo,
		Timer:  c.timerRepo,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, guestclear.Request{}); err != nil {
		return mapError(err)
	}

	// The guest board is the client board when not signed in.
	if c.Guest() {
		return mapError(c.store.Reload(ctx))
	}
	return nil
}

func (c *Client) guestStore(ctx context.Context) (*task.Store, error) {
	if c.Guest() {
		return c.store, nil
	}

	repo, err := c.guestRepository()
	if err != nil {
		return nil, err
	}
	store, err := task.NewStore(task.StoreConfig{Backend: repo, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create task store: %w", err)
	}
	if err := store.Load(ctx); err != nil {
		return nil, mapError(err)
	}
	return store, nil
}

func (c *Client) guestRepository() (*local.TaskRepository, error) {
	if c.guestRepo != nil {
		return c.guestRepo, nil
	}

	repo, err := local.NewTaskRepository(local.TaskRepositoryConfig{DataDir: c.dataDir, Logger: c.logger})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create guest repository: %w", err))
	}
	return repo, nil
}
