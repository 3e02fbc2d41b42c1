package task

import (
	"fmt"
	"strings"

	"github.com/slok/pomo/internal/model"
)

// MinIDPrefix is the shortest ID prefix accepted as a task reference.
const MinIDPrefix = 4

// ResolveTask finds a task by reference. The reference can be the full ID, an
// unambiguous ID prefix or the exact title of a single task.
func (s *Store) ResolveTask(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("task reference is required: %w", model.ErrNotValid)
	}

	if t, ok := s.find(ref); ok {
		return t, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var byPrefix, byTitle []model.Task
	upper := strings.ToUpper(ref)
	for _, t := range s.tasks {
		if len(ref) >= MinIDPrefix && strings.HasPrefix(t.ID, upper) {
			byPrefix = append(byPrefix, t)
		}
		if t.Title == ref {
			byTitle = append(byTitle, t)
		}
	}

	switch {
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return model.Task{}, fmt.Errorf("task reference %q matches %d tasks: %w", ref, len(byPrefix), model.ErrNotValid)
	case len(byTitle) == 1:
		return byTitle[0], nil
	case len(byTitle) > 1:
		return model.Task{}, fmt.Errorf("task title %q matches %d tasks: %w", ref, len(byTitle), model.ErrNotValid)
	}

	return model.Task{}, fmt.Errorf("task %s: %w", ref, model.ErrNotFound)
}
