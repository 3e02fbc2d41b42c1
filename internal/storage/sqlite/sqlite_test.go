package sqlite_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage/sqlite"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func taskFixture(id string, status model.TaskStatus, pos int) model.Task {
	return model.Task{
		ID:        id,
		Title:     "task " + id,
		Status:    status,
		Position:  pos,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func newRepo(t *testing.T, dbPath, account string) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath:        dbPath,
		AccountID:     account,
		WatchInterval: 10 * time.Millisecond,
		Logger:        log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRepositoryConfig(t *testing.T) {
	tests := map[string]struct {
		cfg    sqlite.RepositoryConfig
		expErr bool
	}{
		"Missing db path should fail.": {
			cfg:    sqlite.RepositoryConfig{AccountID: "acc"},
			expErr: true,
		},

		"Missing account should fail.": {
			cfg:    sqlite.RepositoryConfig{DBPath: "/tmp/x.db"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := sqlite.NewRepository(context.Background(), test.cfg)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryCRUD(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")

	done := taskFixture("d1", model.TaskStatusDone, 0)
	completed := t0.Add(time.Hour)
	done.CompletedAt = &completed
	done.Color = "red"
	done.Description = "with details"

	require.NoError(repo.Create(ctx, taskFixture("t2", model.TaskStatusTodo, 1)))
	require.NoError(repo.Create(ctx, done))
	require.NoError(repo.Create(ctx, taskFixture("t1", model.TaskStatusTodo, 0)))

	tasks, err := repo.Load(ctx)
	require.NoError(err)
	require.Len(tasks, 3)
	assert.Equal("t1", tasks[0].ID)
	assert.Equal("t2", tasks[1].ID)
	assert.Equal(done.ID, tasks[2].ID)
	assert.Equal("acc-1", tasks[2].AccountID)
	assert.Equal("red", tasks[2].Color)
	assert.Equal("with details", tasks[2].Description)
	require.NotNil(tasks[2].CompletedAt)
	assert.Equal(completed, *tasks[2].CompletedAt)

	// Duplicates.
	err = repo.Create(ctx, taskFixture("t1", model.TaskStatusTodo, 0))
	assert.ErrorIs(err, model.ErrAlreadyExists)

	// Update.
	t1 := tasks[0]
	t1.Title = "renamed"
	require.NoError(repo.Update(ctx, t1))

	// Delete.
	require.NoError(repo.Delete(ctx, "t2"))
	err = repo.Delete(ctx, "t2")
	assert.ErrorIs(err, model.ErrNotFound)

	tasks, err = repo.Load(ctx)
	require.NoError(err)
	require.Len(tasks, 2)
	assert.Equal("renamed", tasks[0].Title)
}

func TestRepositoryKeepsSubSecondTimes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")

	created := t0.Add(123456789 * time.Nanosecond)
	completed := created.Add(1500 * time.Millisecond)
	task := taskFixture("d1", model.TaskStatusDone, 0)
	task.CreatedAt = created
	task.UpdatedAt = completed
	task.CompletedAt = &completed
	require.NoError(repo.Create(ctx, task))

	_, err := repo.AppendTimeLog(ctx, model.TimeLogEntry{ID: "l1", Kind: model.SessionKindBreak, DurationSeconds: 300, CreatedAt: created})
	require.NoError(err)

	tasks, err := repo.Load(ctx)
	require.NoError(err)
	require.Len(tasks, 1)
	assert.Equal(created, tasks[0].CreatedAt)
	assert.Equal(completed, tasks[0].UpdatedAt)
	require.NotNil(tasks[0].CompletedAt)
	assert.Equal(completed, *tasks[0].CompletedAt)

	logs, err := repo.ListTimeLogs(ctx)
	require.NoError(err)
	require.Len(logs, 1)
	assert.Equal(created, logs[0].CreatedAt)
}

func TestRepositoryUpdateKeepsAccruedFocus(t *testing.T) {
	tests := map[string]struct {
		edit func(t *model.Task)
	}{
		"Editing the color from a stale copy should keep the focus time.": {
			edit: func(t *model.Task) { t.Color = "red" },
		},

		"Moving a stale copy to done should keep the focus time.": {
			edit: func(t *model.Task) {
				t.Status = model.TaskStatusDone
				t.CompletedAt = &t0
			},
		},

		"A stale copy with a lower focus time should not roll it back.": {
			edit: func(t *model.Task) { t.FocusSeconds = 60 },
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()
			dbPath := filepath.Join(t.TempDir(), "test.db")

			deviceA := newRepo(t, dbPath, "acc-1")
			deviceB := newRepo(t, dbPath, "acc-1")

			require.NoError(deviceA.Create(ctx, taskFixture("t1", model.TaskStatusDoing, 0)))
			stale, err := deviceA.Load(ctx)
			require.NoError(err)

			_, err = deviceB.AppendTimeLog(ctx, model.TimeLogEntry{ID: "l1", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0})
			require.NoError(err)

			edited := stale[0]
			test.edit(&edited)
			require.NoError(deviceA.Update(ctx, edited))

			tasks, err := deviceB.Load(ctx)
			require.NoError(err)
			require.Len(tasks, 1)
			assert.Equal(1500, tasks[0].FocusSeconds)
		})
	}
}

func TestRepositoryUpdateDemotesOtherDoingTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")

	require.NoError(repo.Create(ctx, taskFixture("t1", model.TaskStatusDoing, 0)))
	require.NoError(repo.Create(ctx, taskFixture("t2", model.TaskStatusTodo, 0)))
	require.NoError(repo.Create(ctx, taskFixture("t3", model.TaskStatusTodo, 1)))
	require.NoError(repo.Create(ctx, taskFixture("t4", model.TaskStatusTodo, 2)))

	// Only the new doing task is sent, like a stale client would.
	activatedAt := t0.Add(90*time.Minute + 250*time.Millisecond)
	activated := taskFixture("t2", model.TaskStatusDoing, 0)
	activated.UpdatedAt = activatedAt
	require.NoError(repo.Update(ctx, activated))

	tasks, err := repo.Load(ctx)
	require.NoError(err)
	doing := 0
	for _, task := range tasks {
		if task.IsActive() {
			doing++
			assert.Equal("t2", task.ID)
		}
	}
	assert.Equal(1, doing)

	// The demoted task goes to the end of todo with the activation time.
	var demoted model.Task
	for _, task := range tasks {
		if task.ID == "t1" {
			demoted = task
		}
	}
	assert.Equal(model.TaskStatusTodo, demoted.Status)
	assert.Equal(3, demoted.Position)
	assert.Equal(activatedAt, demoted.UpdatedAt)

	// A batch with two doing tasks is rejected.
	err = repo.Update(ctx, taskFixture("t1", model.TaskStatusDoing, 0), taskFixture("t2", model.TaskStatusDoing, 0))
	assert.ErrorIs(err, model.ErrNotValid)
}

func TestRepositoryUpdateBatchIsAtomic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")

	require.NoError(repo.Create(ctx, taskFixture("t1", model.TaskStatusTodo, 0)))

	renamed := taskFixture("t1", model.TaskStatusTodo, 0)
	renamed.Title = "renamed"
	err := repo.Update(ctx, renamed, taskFixture("missing", model.TaskStatusTodo, 0))
	assert.ErrorIs(err, model.ErrNotFound)

	tasks, err := repo.Load(ctx)
	require.NoError(err)
	assert.Equal("task t1", tasks[0].Title)
}

func TestRepositoryAccountIsolation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	alice := newRepo(t, dbPath, "alice")
	bob := newRepo(t, dbPath, "bob")

	require.NoError(alice.Create(ctx, taskFixture("a1", model.TaskStatusDoing, 0)))
	require.NoError(bob.Create(ctx, taskFixture("b1", model.TaskStatusDoing, 0)))

	tasks, err := bob.Load(ctx)
	require.NoError(err)
	require.Len(tasks, 1)
	assert.Equal("b1", tasks[0].ID)

	// Bob's doing task doesn't demote Alice's one.
	aliceTasks, err := alice.Load(ctx)
	require.NoError(err)
	require.Len(aliceTasks, 1)
	assert.Equal(model.TaskStatusDoing, aliceTasks[0].Status)

	// Bob can't touch Alice's tasks.
	err = bob.Update(ctx, taskFixture("a1", model.TaskStatusDone, 0))
	assert.ErrorIs(err, model.ErrUnauthorized)
	err = bob.Delete(ctx, "a1")
	assert.ErrorIs(err, model.ErrUnauthorized)
	_, err = bob.AppendTimeLog(ctx, model.TimeLogEntry{ID: "l1", TaskID: "a1", Kind: model.SessionKindWork, DurationSeconds: 60, CreatedAt: t0})
	assert.ErrorIs(err, model.ErrUnauthorized)

	foreign := taskFixture("b2", model.TaskStatusTodo, 0)
	foreign.AccountID = "alice"
	err = bob.Create(ctx, foreign)
	assert.ErrorIs(err, model.ErrUnauthorized)
}

func TestRepositoryAppendTimeLog(t *testing.T) {
	tests := map[string]struct {
		entries  []model.TimeLogEntry
		expFocus int
		expLogs  int
		expErr   error
	}{
		"An attributed work entry should accrue time to the task.": {
			entries: []model.TimeLogEntry{
				{ID: "l1", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0.Add(time.Hour)},
			},
			expFocus: 1500,
			expLogs:  1,
		},

		"Two attributed entries should accumulate.": {
			entries: []model.TimeLogEntry{
				{ID: "l1", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0},
				{ID: "l2", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1800, CreatedAt: t0},
			},
			expFocus: 3300,
			expLogs:  2,
		},

		"A break entry should be kept without accruing time.": {
			entries: []model.TimeLogEntry{
				{ID: "l1", Kind: model.SessionKindBreak, DurationSeconds: 300, CreatedAt: t0},
			},
			expFocus: 0,
			expLogs:  1,
		},

		"A duplicated entry should not accrue time twice.": {
			entries: []model.TimeLogEntry{
				{ID: "l1", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0},
				{ID: "l1", TaskID: "t1", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0},
			},
			expFocus: 1500,
			expLogs:  1,
			expErr:   model.ErrAlreadyExists,
		},

		"An entry for a missing task should not be stored.": {
			entries: []model.TimeLogEntry{
				{ID: "l1", TaskID: "missing", Kind: model.SessionKindWork, DurationSeconds: 1500, CreatedAt: t0},
			},
			expFocus: 0,
			expLogs:  0,
			expErr:   model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")
			require.NoError(repo.Create(ctx, taskFixture("t1", model.TaskStatusDoing, 0)))

			var err error
			for _, e := range test.entries {
				var got *model.Task
				got, err = repo.AppendTimeLog(ctx, e)
				if err == nil && e.Attributed() {
					require.NotNil(got)
					assert.Equal("t1", got.ID)
				}
			}

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}

			tasks, err := repo.Load(ctx)
			require.NoError(err)
			assert.Equal(test.expFocus, tasks[0].FocusSeconds)

			logs, err := repo.ListTimeLogs(ctx)
			require.NoError(err)
			assert.Len(logs, test.expLogs)
		})
	}
}

func TestRepositoryRevision(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "test.db"), "acc-1")

	rev, err := repo.Revision(ctx)
	require.NoError(err)
	assert.Equal(int64(0), rev)

	require.NoError(repo.Create(ctx, taskFixture("t1", model.TaskStatusTodo, 0)))
	require.NoError(repo.Update(ctx, taskFixture("t1", model.TaskStatusDoing, 0)))

	rev, err = repo.Revision(ctx)
	require.NoError(err)
	assert.Equal(int64(2), rev)

	// Failed writes don't change the revision.
	_ = repo.Delete(ctx, "missing")
	rev, err = repo.Revision(ctx)
	require.NoError(err)
	assert.Equal(int64(2), rev)
}

func TestRepositorySubscribeToExternalChanges(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	watcher := newRepo(t, dbPath, "acc-1")
	otherDevice := newRepo(t, dbPath, "acc-1")
	otherAccount := newRepo(t, dbPath, "acc-2")

	var calls atomic.Int32
	stop, err := watcher.SubscribeToExternalChanges(ctx, func() { calls.Add(1) })
	require.NoError(err)
	defer stop()

	// Other accounts don't notify.
	require.NoError(otherAccount.Create(ctx, taskFixture("x1", model.TaskStatusTodo, 0)))
	time.Sleep(50 * time.Millisecond)
	require.Equal(int32(0), calls.Load())

	require.NoError(otherDevice.Create(ctx, taskFixture("t1", model.TaskStatusTodo, 0)))
	require.Eventually(func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// After stopping no more notifications are delivered.
	stop()
	require.NoError(otherDevice.Delete(ctx, "t1"))
	time.Sleep(50 * time.Millisecond)
	require.Equal(int32(1), calls.Load())
}
