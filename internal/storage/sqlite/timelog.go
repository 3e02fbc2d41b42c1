package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/slok/pomo/internal/model"
)

// AppendTimeLog stores the entry and, when attributed, accrues its duration to
// the task in the same transaction. Unattributed entries are kept.
func (r *Repository) AppendTimeLog(ctx context.Context, e model.TimeLogEntry) (*model.Task, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid time log entry: %w", err)
	}
	if e.AccountID == "" {
		e.AccountID = r.accountID
	}
	if e.AccountID != r.accountID {
		return nil, fmt.Errorf("time log for account %s: %w", e.AccountID, model.ErrUnauthorized)
	}

	var updated *model.Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO time_logs (id, account_id, task_id, duration_seconds, kind, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query, e.ID, e.AccountID, e.TaskID, e.DurationSeconds, e.Kind, e.CreatedAt.UnixNano())
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: time_logs.") {
				return fmt.Errorf("time log %s: %w", e.ID, model.ErrAlreadyExists)
			}
			return backendErr("could not insert time log", err)
		}

		if !e.Attributed() {
			return nil
		}

		if err := r.checkOwnership(ctx, tx, e.TaskID); err != nil {
			return err
		}

		query = `
			UPDATE tasks
			SET
				focus_seconds = focus_seconds + ?,
				updated_at = MAX(updated_at, ?)
			WHERE id = ? AND account_id = ?
		`
		if _, err := tx.ExecContext(ctx, query, e.DurationSeconds, e.CreatedAt.UnixNano(), e.TaskID, r.accountID); err != nil {
			return backendErr("could not accrue task time", err)
		}

		row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, e.TaskID)
		t, err := scanTask(row)
		if err != nil {
			return backendErr("could not read task", err)
		}
		updated = &t

		return r.bumpRevision(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		r.logger.Debugf("Logged %ds to task %s", e.DurationSeconds, e.TaskID)
	} else {
		r.logger.Debugf("Stored unattributed %s time log: %s", e.Kind, e.ID)
	}
	return updated, nil
}

// ListTimeLogs returns the account time log entries, oldest first.
func (r *Repository) ListTimeLogs(ctx context.Context) ([]model.TimeLogEntry, error) {
	query := `
		SELECT id, account_id, task_id, duration_seconds, kind, created_at
		FROM time_logs
		WHERE account_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, r.accountID)
	if err != nil {
		return nil, backendErr("could not query time logs", err)
	}
	defer rows.Close()

	entries := []model.TimeLogEntry{}
	for rows.Next() {
		var e model.TimeLogEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.AccountID, &e.TaskID, &e.DurationSeconds, &e.Kind, &createdAt); err != nil {
			return nil, backendErr("could not scan row", err)
		}
		e.CreatedAt = timeFromNanos(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, backendErr("error iterating rows", err)
	}

	return entries, nil
}
