package model

import (
	"fmt"
	"time"
)

// SessionKind is the kind of a timer interval.
type SessionKind string

const (
	SessionKindWork  SessionKind = "work"
	SessionKindBreak SessionKind = "break"
)

// TimeLogEntry is an append-only record of a completed timer interval.
type TimeLogEntry struct {
	ID              string
	AccountID       string
	TaskID          string // Empty when the session is not attributed to a task.
	DurationSeconds int
	Kind            SessionKind
	CreatedAt       time.Time
}

// Attributed returns true if the entry accrues time to a task.
func (e TimeLogEntry) Attributed() bool {
	return e.TaskID != "" && e.Kind == SessionKindWork
}

// Validate validates the time log entry.
func (e TimeLogEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if e.Kind != SessionKindWork && e.Kind != SessionKindBreak {
		return fmt.Errorf("unknown session kind %q: %w", e.Kind, ErrNotValid)
	}
	if e.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive: %w", ErrNotValid)
	}
	return nil
}
