package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
)

// EventSink receives the task board notifications.
type EventSink interface {
	// TaskActivated is called when a task becomes the active one, the active
	// view should switch to the timer.
	TaskActivated(t model.Task)
}

// EventSinkFunc is a helper to use functions as EventSink.
type EventSinkFunc func(t model.Task)

// TaskActivated satisfies EventSink.
func (f EventSinkFunc) TaskActivated(t model.Task) { f(t) }

var noopEventSink = EventSinkFunc(func(model.Task) {})

// StoreConfig is the configuration of the task store.
type StoreConfig struct {
	Backend storage.Backend
	Events  EventSink
	Clock   func() time.Time
	Logger  log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Events == nil {
		c.Events = noopEventSink
	}

	if c.Clock == nil {
		c.Clock = func() time.Time { return time.Now().UTC() }
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Store"})

	return nil
}

// Store is the in-memory view of the task board over a storage backend.
//
// At most one task is doing at any time: promoting a task to doing moves the
// previous doing task back to todo in the same backend write. The view is
// only changed after the backend accepted the write.
type Store struct {
	backend storage.Backend
	events  EventSink
	now     func() time.Time
	logger  log.Logger

	// opMu serializes mutations and reloads.
	opMu    sync.Mutex
	mu      sync.RWMutex
	tasks   []model.Task
	reloads singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]func([]model.Task)
	nextSub int
}

// NewStore returns a new empty store, use Load to fill it.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store{
		backend: cfg.Backend,
		events:  cfg.Events,
		now:     cfg.Clock,
		logger:  cfg.Logger,
		subs:    map[int]func([]model.Task){},
	}, nil
}

// Load loads the board from the backend.
func (s *Store) Load(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload replaces the view with the backend tasks. Reloads never interleave,
// concurrent callers share the in flight reload.
func (s *Store) Reload(ctx context.Context) error {
	_, err, _ := s.reloads.Do("reload", func() (any, error) {
		if err := s.reload(ctx); err != nil {
			return nil, err
		}
		s.publish()
		return nil, nil
	})
	return err
}

func (s *Store) reload(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	tasks, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("could not load tasks: %w", err)
	}
	storage.SortTasks(tasks)

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.logger.Debugf("Loaded %d tasks", len(tasks))
	return nil
}

// CreateTask adds a new todo task at the end of the todo column.
func (s *Store) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, fmt.Errorf("title is required: %w", model.ErrNotValid)
	}

	s.opMu.Lock()
	now := s.now()
	t := model.Task{
		ID:          ulid.Make().String(),
		AccountID:   s.backend.AccountID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      model.TaskStatusTodo,
		Position:    s.columnLen(model.TaskStatusTodo, ""),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.backend.Create(ctx, t); err != nil {
		s.opMu.Unlock()
		return model.Task{}, fmt.Errorf("could not create task: %w", err)
	}
	s.apply(t)
	s.opMu.Unlock()

	s.logger.Infof("Task %s created", t.ID)
	s.publish()

	return t, nil
}

// UpdateTask applies the patch to the task. Moving a task to doing moves any
// other doing task back to todo. Entering done stamps the completion time and
// leaving done clears it.
func (s *Store) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	s.opMu.Lock()

	current, ok := s.find(id)
	if !ok {
		s.opMu.Unlock()
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	if patch.IsEmpty() {
		s.opMu.Unlock()
		return current, nil
	}

	now := s.now()
	updated := current
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			s.opMu.Unlock()
			return model.Task{}, fmt.Errorf("title is required: %w", model.ErrNotValid)
		}
		updated.Title = title
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Color != nil {
		updated.Color = *patch.Color
	}

	var evicted []model.Task
	if patch.Status != nil && *patch.Status != current.Status {
		status := *patch.Status
		if !status.Valid() {
			s.opMu.Unlock()
			return model.Task{}, fmt.Errorf("unknown status %q: %w", status, model.ErrNotValid)
		}

		updated.Status = status
		updated.Position = s.columnLen(status, id)
		switch {
		case status == model.TaskStatusDone:
			completedAt := now
			updated.CompletedAt = &completedAt
		case current.Status == model.TaskStatusDone:
			updated.CompletedAt = nil
		}

		if status == model.TaskStatusDoing {
			evicted = s.evictDoing(id, now)
		}
	}
	updated.UpdatedAt = now

	batch := append(evicted, updated)
	if err := s.backend.Update(ctx, batch...); err != nil {
		s.opMu.Unlock()
		return model.Task{}, fmt.Errorf("could not update task: %w", err)
	}

	s.apply(batch...)
	s.opMu.Unlock()

	for _, t := range evicted {
		s.logger.Infof("Task %s moved back to todo", t.ID)
	}
	activated := updated.IsActive() && !current.IsActive()
	if activated {
		s.logger.Infof("Task %s is now the active task", updated.ID)
	}

	s.publish()
	if activated {
		s.events.TaskActivated(updated)
	}

	return updated, nil
}

// DeleteTask removes the task. If it was the active task, there is no
// active task afterwards.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.opMu.Lock()
	current, ok := s.find(id)
	if !ok {
		s.opMu.Unlock()
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	if err := s.backend.Delete(ctx, id); err != nil {
		s.opMu.Unlock()
		return fmt.Errorf("could not delete task: %w", err)
	}

	s.mu.Lock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.opMu.Unlock()

	if current.IsActive() {
		s.logger.Infof("Active task %s deleted", id)
	} else {
		s.logger.Infof("Task %s deleted", id)
	}
	s.publish()

	return nil
}

// GetActiveTask returns the doing task, if any.
func (s *Store) GetActiveTask() (*model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.IsActive() {
			t := t
			return &t, true
		}
	}
	return nil, false
}

// GetTask returns a task of the view.
func (s *Store) GetTask(id string) (model.Task, error) {
	t, ok := s.find(id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	return t, nil
}

// ListTasks returns the view in board order.
func (s *Store) ListTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Task{}, s.tasks...)
}

// LogSession appends the entry through the backend. When the entry is
// attributed to a task, the task focus time is incremented in the same write
// and the updated task is returned.
func (s *Store) LogSession(ctx context.Context, e model.TimeLogEntry) (*model.Task, error) {
	if e.AccountID == "" {
		e.AccountID = s.backend.AccountID()
	}

	s.opMu.Lock()
	t, err := s.backend.AppendTimeLog(ctx, e)
	if err != nil {
		s.opMu.Unlock()
		return nil, fmt.Errorf("could not log session: %w", err)
	}
	if t == nil {
		s.opMu.Unlock()
		return nil, nil
	}
	s.apply(*t)
	s.opMu.Unlock()

	s.publish()

	return t, nil
}

// Watch reloads the store every time the backend reports an external change.
// It blocks until the context is done.
func (s *Store) Watch(ctx context.Context) error {
	stop, err := s.backend.SubscribeToExternalChanges(ctx, func() {
		if err := s.Reload(ctx); err != nil {
			if ctx.Err() == nil {
				s.logger.Warningf("Could not reload tasks after external change: %s", err)
			}
			return
		}
		s.logger.Debugf("Tasks reloaded after external change")
	})
	if err != nil {
		return fmt.Errorf("could not subscribe to external changes: %w", err)
	}
	defer stop()

	<-ctx.Done()
	return nil
}

// Subscribe registers fn to be called with the view after every change.
func (s *Store) Subscribe(fn func([]model.Task)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish() {
	s.subsMu.Lock()
	subs := make([]func([]model.Task), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	if len(subs) == 0 {
		return
	}

	tasks := s.ListTasks()
	for _, fn := range subs {
		fn(tasks)
	}
}

func (s *Store) find(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// columnLen returns the number of tasks in the column, ignoring exclude.
func (s *Store) columnLen(status model.TaskStatus, exclude string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.tasks {
		if t.Status == status && t.ID != exclude {
			n++
		}
	}
	return n
}

// evictDoing returns the doing tasks other than id moved back to todo.
func (s *Store) evictDoing(id string, now time.Time) []model.Task {
	pos := s.columnLen(model.TaskStatusTodo, id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var evicted []model.Task
	for _, t := range s.tasks {
		if t.ID == id || !t.IsActive() {
			continue
		}
		t.Status = model.TaskStatusTodo
		t.Position = pos
		t.UpdatedAt = now
		pos++
		evicted = append(evicted, t)
	}
	return evicted
}

// apply upserts the tasks in the view.
func (s *Store) apply(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tasks {
		found := false
		for i := range s.tasks {
			if s.tasks[i].ID == t.ID {
				s.tasks[i] = t
				found = true
				break
			}
		}
		if !found {
			s.tasks = append(s.tasks, t)
		}
	}
	storage.SortTasks(s.tasks)
}
