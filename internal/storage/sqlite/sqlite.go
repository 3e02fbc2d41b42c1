package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/pomo/internal/conventions"
	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath    string
	AccountID string
	// WatchInterval is how often the account revision is polled by
	// SubscribeToExternalChanges.
	WatchInterval time.Duration
	Logger        log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if c.WatchInterval <= 0 {
		c.WatchInterval = conventions.DefaultWatchInterval
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite", "account": c.AccountID})
	return nil
}

// Repository is the account scoped SQLite implementation of storage.Backend.
//
// Every query is filtered by the account. Every task write bumps the account
// revision so other processes sharing the database can detect the change.
type Repository struct {
	db            *sql.DB
	accountID     string
	watchInterval time.Duration
	logger        log.Logger
}

var _ storage.Backend = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{
		db:            db,
		accountID:     cfg.AccountID,
		watchInterval: cfg.WatchInterval,
		logger:        cfg.Logger,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// AccountID satisfies storage.Backend.
func (r *Repository) AccountID() string { return r.accountID }

const taskColumns = `
	id, account_id, title, description, status, position,
	focus_seconds, color, completed_at, created_at, updated_at
`

// Load returns the account tasks in board order.
func (r *Repository) Load(ctx context.Context) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE account_id = ?
		ORDER BY
			CASE status WHEN 'todo' THEN 0 WHEN 'doing' THEN 1 ELSE 2 END,
			position ASC,
			created_at ASC,
			id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, r.accountID)
	if err != nil {
		return nil, backendErr("could not query tasks", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, backendErr("could not scan row", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, backendErr("error iterating rows", err)
	}

	return tasks, nil
}

// Create stores a new task owned by the account.
func (r *Repository) Create(ctx context.Context, t model.Task) error {
	t, err := r.ownTask(t)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO tasks (` + taskColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			t.ID,
			t.AccountID,
			t.Title,
			t.Description,
			t.Status,
			t.Position,
			t.FocusSeconds,
			t.Color,
			nanosOrNil(t.CompletedAt),
			t.CreatedAt.UnixNano(),
			t.UpdatedAt.UnixNano(),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
				return fmt.Errorf("task %s: %w", t.ID, model.ErrAlreadyExists)
			}
			return backendErr("could not insert task", err)
		}

		return r.bumpRevision(ctx, tx)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// Update replaces the user editable fields of the tasks in a single
// transaction. The accrued focus time is not written, it only changes through
// AppendTimeLog. When the batch contains a doing task, any other doing task of
// the account is moved to the end of todo.
func (r *Repository) Update(ctx context.Context, tasks ...model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var doingIDs []string
	var activatedAt time.Time
	batch := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		t, err := r.ownTask(t)
		if err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
		if t.IsActive() {
			doingIDs = append(doingIDs, t.ID)
			activatedAt = t.UpdatedAt
		}
		batch = append(batch, t)
	}
	if len(doingIDs) > 1 {
		return fmt.Errorf("only one task can be doing, got %d: %w", len(doingIDs), model.ErrNotValid)
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE tasks
			SET
				title = ?,
				description = ?,
				status = ?,
				position = ?,
				color = ?,
				completed_at = ?,
				updated_at = ?
			WHERE id = ? AND account_id = ?
		`
		for _, t := range batch {
			if err := r.checkOwnership(ctx, tx, t.ID); err != nil {
				return err
			}

			_, err := tx.ExecContext(ctx, query,
				t.Title,
				t.Description,
				t.Status,
				t.Position,
				t.Color,
				nanosOrNil(t.CompletedAt),
				t.UpdatedAt.UnixNano(),
				t.ID,
				r.accountID,
			)
			if err != nil {
				return backendErr("could not update task", err)
			}
		}

		if len(doingIDs) == 1 {
			if err := r.demoteDoing(ctx, tx, doingIDs[0], activatedAt); err != nil {
				return err
			}
		}

		return r.bumpRevision(ctx, tx)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Updated %d tasks in repository", len(tasks))
	return nil
}

// demoteDoing moves every doing task of the account except the active one to
// the end of the todo column, stamped with the activation time.
func (r *Repository) demoteDoing(ctx context.Context, tx *sql.Tx, activeID string, at time.Time) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM tasks
		WHERE account_id = ? AND status = ? AND id <> ?
		ORDER BY position ASC, id ASC
	`, r.accountID, model.TaskStatusDoing, activeID)
	if err != nil {
		return backendErr("could not query doing tasks", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return backendErr("could not scan row", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return backendErr("error iterating rows", err)
	}

	query := `
		UPDATE tasks
		SET
			status = ?,
			position = (SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE account_id = ? AND status = ?),
			updated_at = ?
		WHERE id = ? AND account_id = ?
	`
	for _, id := range ids {
		_, err := tx.ExecContext(ctx, query, model.TaskStatusTodo, r.accountID, model.TaskStatusTodo, at.UnixNano(), id, r.accountID)
		if err != nil {
			return backendErr("could not demote doing task", err)
		}
	}

	if len(ids) > 0 {
		r.logger.Infof("Moved %d concurrently active tasks back to todo", len(ids))
	}
	return nil
}

// Delete deletes a task of the account.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.checkOwnership(ctx, tx, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND account_id = ?`, id, r.accountID)
		if err != nil {
			return backendErr("could not delete task", err)
		}

		return r.bumpRevision(ctx, tx)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

func (r *Repository) ownTask(t model.Task) (model.Task, error) {
	if t.AccountID == "" {
		t.AccountID = r.accountID
	}
	if t.AccountID != r.accountID {
		return t, fmt.Errorf("task %s belongs to another account: %w", t.ID, model.ErrUnauthorized)
	}
	return t, nil
}

// checkOwnership returns not found if the task doesn't exist and unauthorized
// if it exists but belongs to another account.
func (r *Repository) checkOwnership(ctx context.Context, tx *sql.Tx, id string) error {
	var owner string
	err := tx.QueryRowContext(ctx, `SELECT account_id FROM tasks WHERE id = ?`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return backendErr("could not query task owner", err)
	}
	if owner != r.accountID {
		return fmt.Errorf("task %s belongs to another account: %w", id, model.ErrUnauthorized)
	}
	return nil
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr("could not begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return backendErr("could not commit transaction", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var completedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID,
		&t.AccountID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Position,
		&t.FocusSeconds,
		&t.Color,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.CreatedAt = timeFromNanos(createdAt)
	t.UpdatedAt = timeFromNanos(updatedAt)
	if completedAt.Valid {
		c := timeFromNanos(completedAt.Int64)
		t.CompletedAt = &c
	}

	return t, nil
}

func backendErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, model.ErrBackend, err)
}

// Times are stored as unix nanoseconds.
func nanosOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	n := t.UnixNano()
	return &n
}

func timeFromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }
