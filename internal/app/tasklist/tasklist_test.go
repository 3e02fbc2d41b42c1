package tasklist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/app/tasklist"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage/memory"
	"github.com/slok/pomo/internal/task"
)

func TestNewService(t *testing.T) {
	_, err := tasklist.NewService(tasklist.ServiceConfig{})
	assert.Error(t, err)
}

func TestService_Run(t *testing.T) {
	board := []model.Task{
		{ID: "d1", Title: "done", Status: model.TaskStatusDone},
		{ID: "t2", Title: "todo 2", Status: model.TaskStatusTodo, Position: 1},
		{ID: "t1", Title: "todo 1", Status: model.TaskStatusTodo},
		{ID: "a1", Title: "doing", Status: model.TaskStatusDoing},
	}
	todo := model.TaskStatusTodo

	tests := map[string]struct {
		req    tasklist.Request
		expIDs []string
	}{
		"list all tasks in board order": {
			req:    tasklist.Request{},
			expIDs: []string{"t1", "t2", "a1", "d1"},
		},
		"list filtered by status": {
			req:    tasklist.Request{StatusFilter: &todo},
			expIDs: []string{"t1", "t2"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{Tasks: board})
			require.NoError(err)
			store, err := task.NewStore(task.StoreConfig{Backend: repo})
			require.NoError(err)
			require.NoError(store.Load(ctx))

			svc, err := tasklist.NewService(tasklist.ServiceConfig{Store: store})
			require.NoError(err)

			got, err := svc.Run(ctx, test.req)
			require.NoError(err)

			ids := []string{}
			for _, tk := range got {
				ids = append(ids, tk.ID)
			}
			assert.Equal(t, test.expIDs, ids)
		})
	}
}
