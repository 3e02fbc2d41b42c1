package taskupdate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/app/taskupdate"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage/memory"
	"github.com/slok/pomo/internal/task"
)

func ptr[T any](v T) *T { return &v }

func TestNewService(t *testing.T) {
	_, err := taskupdate.NewService(taskupdate.ServiceConfig{})
	assert.Error(t, err)
}

func TestService_Run(t *testing.T) {
	board := []model.Task{
		{ID: "01HAAAAAAAAAAAAAAAAAAAAAA1", Title: "write docs", Status: model.TaskStatusDoing},
		{ID: "01HBBBBBBBBBBBBBBBBBBBBBB1", Title: "review", Status: model.TaskStatusTodo},
	}

	tests := map[string]struct {
		req    taskupdate.Request
		exp    func(t *testing.T, got model.Task, store *task.Store)
		expErr error
	}{
		"edit the title by ID prefix": {
			req: taskupdate.Request{Ref: "01hb", Title: ptr("review PR")},
			exp: func(t *testing.T, got model.Task, _ *task.Store) {
				assert.Equal(t, "01HBBBBBBBBBBBBBBBBBBBBBB1", got.ID)
				assert.Equal(t, "review PR", got.Title)
			},
		},
		"moving to doing should demote the active task": {
			req: taskupdate.Request{Ref: "review", Status: ptr(model.TaskStatusDoing)},
			exp: func(t *testing.T, got model.Task, store *task.Store) {
				assert.Equal(t, model.TaskStatusDoing, got.Status)
				old, err := store.GetTask("01HAAAAAAAAAAAAAAAAAAAAAA1")
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusTodo, old.Status)
			},
		},
		"moving to done should stamp the completion": {
			req: taskupdate.Request{Ref: "write docs", Status: ptr(model.TaskStatusDone)},
			exp: func(t *testing.T, got model.Task, store *task.Store) {
				assert.NotNil(t, got.CompletedAt)
				_, ok := store.GetActiveTask()
				assert.False(t, ok)
			},
		},
		"an empty update should fail": {
			req:    taskupdate.Request{Ref: "review"},
			expErr: model.ErrNotValid,
		},
		"a missing task should fail": {
			req:    taskupdate.Request{Ref: "missing", Color: ptr("blue")},
			expErr: model.ErrNotFound,
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

			svc, err := taskupdate.NewService(taskupdate.ServiceConfig{Store: store})
			require.NoError(err)

			got, err := svc.Run(ctx, test.req)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(err)
			test.exp(t, *got, store)
		})
	}
}
