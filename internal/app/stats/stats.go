package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
)

// TaskStore is the task store used by the service.
type TaskStore interface {
	ListTasks() []model.Task
}

// ServiceConfig is the configuration for the stats service.
type ServiceConfig struct {
	Store TaskStore
	// Location is the time zone used to group completions by day.
	Location *time.Location
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}

	if c.Location == nil {
		c.Location = time.Local
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service computes the board statistics.
type Service struct {
	store    TaskStore
	location *time.Location
	logger   log.Logger
}

// NewService creates a new stats service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		store:    cfg.Store,
		location: cfg.Location,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the stats request parameters.
type Request struct{}

// Day is a group of tasks completed the same day.
type Day struct {
	// Date is the midnight of the day.
	Date  time.Time
	Tasks []model.Task
}

// Stats are the board statistics.
type Stats struct {
	Todo  int
	Doing int
	Done  int
	// TotalFocus is the focus time accrued by all the tasks on the board.
	TotalFocus time.Duration
	// AverageCompletion is the average time from creation to completion of
	// the done tasks.
	AverageCompletion time.Duration
	// CompletedByDay has the done tasks grouped by completion day, newest
	// first.
	CompletedByDay []Day
}

// Run computes the statistics of the current board.
func (s *Service) Run(ctx context.Context, req Request) (*Stats, error) {
	tasks := s.store.ListTasks()

	st := &Stats{}
	var completed []model.Task
	var completionTotal time.Duration
	for _, t := range tasks {
		st.TotalFocus += time.Duration(t.FocusSeconds) * time.Second

		switch t.Status {
		case model.TaskStatusTodo:
			st.Todo++
		case model.TaskStatusDoing:
			st.Doing++
		case model.TaskStatusDone:
			st.Done++
			if t.CompletedAt != nil {
				completed = append(completed, t)
				completionTotal += t.CompletedAt.Sub(t.CreatedAt)
			}
		}
	}

	if len(completed) > 0 {
		st.AverageCompletion = completionTotal / time.Duration(len(completed))
	}
	st.CompletedByDay = s.groupByDay(completed)

	s.logger.Debugf("stats computed for %d tasks", len(tasks))
	return st, nil
}

func (s *Service) groupByDay(tasks []model.Task) []Day {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CompletedAt.After(*tasks[j].CompletedAt)
	})

	var days []Day
	for _, t := range tasks {
		local := t.CompletedAt.In(s.location)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
		if n := len(days); n > 0 && days[n-1].Date.Equal(date) {
			days[n-1].Tasks = append(days[n-1].Tasks, t)
			continue
		}
		days = append(days, Day{Date: date, Tasks: []model.Task{t}})
	}

	return days
}
