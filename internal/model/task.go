package model

import (
	"fmt"
	"strings"
	"time"
)

// GuestAccountID is the owner of every task in guest (local) mode.
const GuestAccountID = "guest"

// TaskStatus represents the board column of a task.
type TaskStatus string

const (
	// TaskStatusTodo is a task waiting to be worked on.
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusDoing is the active task. At most one task can be doing.
	TaskStatusDoing TaskStatus = "doing"
	// TaskStatusDone is a completed task.
	TaskStatusDone TaskStatus = "done"
)

// Valid returns true if the status is a known one.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus parses a status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown task status %q: %w", s, ErrNotValid)
	}
	return st, nil
}

// Task represents a task on the board.
type Task struct {
	ID           string
	AccountID    string
	Title        string
	Description  string
	Status       TaskStatus
	Position     int
	FocusSeconds int
	Color        string
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive returns true if the task is the active (doing) task.
func (t Task) IsActive() bool { return t.Status == TaskStatusDoing }

// Validate validates the task.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrNotValid)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", t.Status, ErrNotValid)
	}
	if t.FocusSeconds < 0 {
		return fmt.Errorf("focus seconds can't be negative: %w", ErrNotValid)
	}
	return nil
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Color       *string
}

// IsEmpty returns true if the patch doesn't change anything.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Color == nil
}
