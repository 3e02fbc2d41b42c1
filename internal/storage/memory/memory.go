package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
)

// PersistFunc is called with the complete task set before a write is
// committed. If it fails the write is discarded.
type PersistFunc func(ctx context.Context, tasks []model.Task) error

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	AccountID string
	// Tasks is the initial task set.
	Tasks []model.Task
	// KeepUnattributed keeps time log entries that don't accrue time to a task.
	KeepUnattributed bool
	Persist          PersistFunc
	Logger           log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.AccountID == "" {
		c.AccountID = model.GuestAccountID
	}

	for _, t := range c.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid initial task %q: %w", t.ID, err)
		}
	}

	if c.Persist == nil {
		c.Persist = func(context.Context, []model.Task) error { return nil }
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Backend.
type Repository struct {
	accountID        string
	tasks            map[string]model.Task
	timeLogs         []model.TimeLogEntry
	keepUnattributed bool
	persist          PersistFunc
	mu               sync.RWMutex
	logger           log.Logger
}

var _ storage.Backend = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tasks := make(map[string]model.Task, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		if t.AccountID == "" {
			t.AccountID = cfg.AccountID
		}
		tasks[t.ID] = t
	}

	return &Repository{
		accountID:        cfg.AccountID,
		tasks:            tasks,
		keepUnattributed: cfg.KeepUnattributed,
		persist:          cfg.Persist,
		logger:           cfg.Logger,
	}, nil
}

// AccountID satisfies storage.Backend.
func (r *Repository) AccountID() string { return r.accountID }

// Load returns all tasks in board order.
func (r *Repository) Load(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(r.tasks), nil
}

// Create stores a new task.
func (r *Repository) Create(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.ownTask(t)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	next := r.cloneLocked()
	next[t.ID] = t
	if err := r.commitLocked(ctx, next); err != nil {
		return err
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// Update replaces the tasks in a single write. The stored focus time is kept.
func (r *Repository) Update(ctx context.Context, tasks ...model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	for _, t := range tasks {
		t, err := r.ownTask(t)
		if err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
		stored, ok := r.tasks[t.ID]
		if !ok {
			return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
		}
		t.FocusSeconds = stored.FocusSeconds
		next[t.ID] = t
	}

	if err := r.commitLocked(ctx, next); err != nil {
		return err
	}

	r.logger.Debugf("Updated %d tasks in repository", len(tasks))
	return nil
}

// Delete deletes a task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	next := r.cloneLocked()
	delete(next, id)
	if err := r.commitLocked(ctx, next); err != nil {
		return err
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

// AppendTimeLog stores the entry and accrues its duration to the task.
func (r *Repository) AppendTimeLog(ctx context.Context, e model.TimeLogEntry) (*model.Task, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid time log entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e.AccountID == "" {
		e.AccountID = r.accountID
	}
	if e.AccountID != r.accountID {
		return nil, fmt.Errorf("time log for account %s: %w", e.AccountID, model.ErrUnauthorized)
	}

	if !e.Attributed() {
		if r.keepUnattributed {
			r.timeLogs = append(r.timeLogs, e)
			r.logger.Debugf("Stored unattributed %s time log: %s", e.Kind, e.ID)
		} else {
			r.logger.Debugf("Ignoring unattributed %s time log: %s", e.Kind, e.ID)
		}
		return nil, nil
	}

	t, ok := r.tasks[e.TaskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", e.TaskID, model.ErrNotFound)
	}
	t.FocusSeconds += e.DurationSeconds
	if e.CreatedAt.After(t.UpdatedAt) {
		t.UpdatedAt = e.CreatedAt
	}

	next := r.cloneLocked()
	next[t.ID] = t
	if err := r.commitLocked(ctx, next); err != nil {
		return nil, err
	}
	r.timeLogs = append(r.timeLogs, e)

	r.logger.Debugf("Logged %ds to task %s", e.DurationSeconds, t.ID)
	return &t, nil
}

// SubscribeToExternalChanges is a no-op, the memory repository has no external writers.
func (r *Repository) SubscribeToExternalChanges(ctx context.Context, fn func()) (stop func(), err error) {
	return storage.NoopSubscription(ctx, fn)
}

// TimeLogs returns the stored time log entries in append order.
func (r *Repository) TimeLogs() []model.TimeLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.TimeLogEntry{}, r.timeLogs...)
}

// Reset removes every task and time log.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.commitLocked(ctx, map[string]model.Task{}); err != nil {
		return err
	}
	r.timeLogs = nil

	return nil
}

func (r *Repository) ownTask(t model.Task) (model.Task, error) {
	if t.AccountID == "" {
		t.AccountID = r.accountID
	}
	if t.AccountID != r.accountID {
		return t, fmt.Errorf("task %s: %w", t.ID, model.ErrUnauthorized)
	}
	return t, nil
}

func (r *Repository) cloneLocked() map[string]model.Task {
	next := make(map[string]model.Task, len(r.tasks)+1)
	for id, t := range r.tasks {
		next[id] = t
	}
	return next
}

func (r *Repository) commitLocked(ctx context.Context, next map[string]model.Task) error {
	if err := r.persist(ctx, r.listLocked(next)); err != nil {
		return fmt.Errorf("could not persist tasks: %w: %w", model.ErrBackend, err)
	}
	r.tasks = next
	return nil
}

func (r *Repository) listLocked(set map[string]model.Task) []model.Task {
	tasks := make([]model.Task, 0, len(set))
	for _, t := range set {
		tasks = append(tasks, t)
	}
	storage.SortTasks(tasks)
	return tasks
}
