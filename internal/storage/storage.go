package storage

import (
	"context"
	"sort"

	"github.com/slok/pomo/internal/model"
)

// Backend is the persistence strategy of the task board.
//
// Every implementation is scoped to a single account, the tasks it returns
// are the ones owned by AccountID.
type Backend interface {
	// AccountID returns the account the backend is scoped to.
	AccountID() string
	// Load returns all the tasks of the account ordered by board column and position.
	Load(ctx context.Context) ([]model.Task, error)
	// Create stores a new task.
	Create(ctx context.Context, t model.Task) error
	// Update replaces the stored tasks. The batch is applied atomically, either
	// all tasks are updated or none of them. The focus time of the given tasks
	// is ignored, it only grows through AppendTimeLog.
	Update(ctx context.Context, tasks ...model.Task) error
	// Delete removes a task.
	Delete(ctx context.Context, id string) error
	// AppendTimeLog appends a time log entry and, if the entry is attributed
	// to a task, increments the task focus time in the same atomic write.
	// Returns the updated task when the entry was attributed.
	AppendTimeLog(ctx context.Context, e model.TimeLogEntry) (*model.Task, error)
	// SubscribeToExternalChanges calls fn every time the account tasks change
	// in the backend, including writes made by other processes. Backends
	// without external writers return a no-op subscription.
	SubscribeToExternalChanges(ctx context.Context, fn func()) (stop func(), err error)
}

// TimerRepository persists the timer settings and state.
type TimerRepository interface {
	GetTimer(ctx context.Context) (*model.TimerSnapshot, error)
	SaveTimer(ctx context.Context, s model.TimerSnapshot) error
}

var statusOrder = map[model.TaskStatus]int{
	model.TaskStatusTodo:  0,
	model.TaskStatusDoing: 1,
	model.TaskStatusDone:  2,
}

// SortTasks sorts the tasks in board order: by column, then position, then
// creation time.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if statusOrder[a.Status] != statusOrder[b.Status] {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// NoopSubscription is the subscription of backends without external writers.
func NoopSubscription(ctx context.Context, fn func()) (stop func(), err error) {
	return func() {}, nil
}
