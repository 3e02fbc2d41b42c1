package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/slok/pomo/internal/conventions"
	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/storage/memory"
	"github.com/slok/pomo/internal/utils/file"
)

// TaskRepositoryConfig is the configuration for the local task repository.
type TaskRepositoryConfig struct {
	DataDir string
	Logger  log.Logger
}

func (c *TaskRepositoryConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.LocalTasks"})
	return nil
}

// TaskRepository is the guest storage.Backend. The board lives in memory and
// every write is synchronously persisted to the tasks blob before it's
// committed. Unattributed time logs are discarded.
type TaskRepository struct {
	*memory.Repository
	path   string
	logger log.Logger
}

var _ storage.Backend = &TaskRepository{}

// NewTaskRepository loads the tasks blob (if any) and returns the repository.
func NewTaskRepository(cfg TaskRepositoryConfig) (*TaskRepository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	path := conventions.TasksFilePath(cfg.DataDir)
	tasks, err := readTasks(path)
	if err != nil {
		return nil, err
	}

	r := &TaskRepository{path: path, logger: cfg.Logger}
	mem, err := memory.NewRepository(memory.RepositoryConfig{
		AccountID: model.GuestAccountID,
		Tasks:     tasks,
		Persist:   r.persist,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create memory repository: %w", err)
	}
	r.Repository = mem

	cfg.Logger.Debugf("Loaded %d tasks from %s", len(tasks), path)
	return r, nil
}

// Clear removes every task and the tasks blob.
func (r *TaskRepository) Clear(ctx context.Context) error {
	if err := r.Repository.Reset(ctx); err != nil {
		return err
	}
	if err := file.RemoveIfExists(r.path); err != nil {
		return fmt.Errorf("could not remove tasks file: %w: %w", model.ErrBackend, err)
	}
	r.logger.Infof("Guest tasks cleared")
	return nil
}

func (r *TaskRepository) persist(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blob := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		blob = append(blob, taskToJSON(t))
	}

	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal tasks: %w", err)
	}

	return file.WriteAtomic(r.path, data, 0o600)
}

func readTasks(path string) ([]model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read tasks file: %w: %w", model.ErrBackend, err)
	}

	var blob []taskJSON
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("could not parse tasks file %s: %w: %w", path, model.ErrBackend, err)
	}

	tasks := make([]model.Task, 0, len(blob))
	for _, t := range blob {
		tasks = append(tasks, t.toModel())
	}
	return tasks, nil
}

type taskJSON struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Position     int        `json:"position"`
	FocusSeconds int        `json:"focusSeconds"`
	Color        string     `json:"color,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func taskToJSON(t model.Task) taskJSON {
	return taskJSON{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Position:     t.Position,
		FocusSeconds: t.FocusSeconds,
		Color:        t.Color,
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (t taskJSON) toModel() model.Task {
	return model.Task{
		ID:           t.ID,
		AccountID:    model.GuestAccountID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       model.TaskStatus(t.Status),
		Position:     t.Position,
		FocusSeconds: t.FocusSeconds,
		Color:        t.Color,
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
