package lib_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/pkg/lib"
)

// newTestClient creates a guest client with a temp data dir for test isolation.
func newTestClient(t *testing.T, cfg lib.Config) *lib.Client {
	t.Helper()

	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}

	client, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func newAccountClient(t *testing.T, accountID string, dbPath string) *lib.Client {
	t.Helper()
	return newTestClient(t, lib.Config{
		AccountID:     accountID,
		DBPath:        dbPath,
		WatchInterval: 10 * time.Millisecond,
	})
}

func statusPtr(s lib.TaskStatus) *lib.TaskStatus { return &s }
func intPtr(i int) *int                          { return &i }

func TestCreateTask(t *testing.T) {
	tests := map[string]struct {
		opts      lib.CreateTaskOpts
		expStatus lib.TaskStatus
		expIs     error
	}{
		"Creating a task should add it to todo.": {
			opts:      lib.CreateTaskOpts{Title: "write report", Color: "red"},
			expStatus: lib.TaskStatusTodo,
		},

		"Creating a started task should make it the active task.": {
			opts:      lib.CreateTaskOpts{Title: "write report", Start: true},
			expStatus: lib.TaskStatusDoing,
		},

		"Creating a task without a title should fail.": {
			opts:  lib.CreateTaskOpts{Title: " "},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			client := newTestClient(t, lib.Config{})

			got, err := client.CreateTask(ctx, test.opts)
			if test.expIs != nil {
				assert.ErrorIs(err, test.expIs)
				return
			}
			require.NoError(err)

			assert.NotEmpty(got.ID)
			assert.Equal(test.opts.Title, got.Title)
			assert.Equal(test.opts.Color, got.Color)
			assert.Equal(test.expStatus, got.Status)

			tasks, err := client.ListTasks(ctx, nil)
			require.NoError(err)
			require.Len(tasks, 1)
			assert.Equal(*got, tasks[0])
		})
	}
}

func TestGuestDataIsPersisted(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	client := newTestClient(t, lib.Config{DataDir: dir})
	tk, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: "persisted", Start: true})
	require.NoError(err)
	require.NoError(client.Close())

	client = newTestClient(t, lib.Config{DataDir: dir})
	active, err := client.ActiveTask(ctx)
	require.NoError(err)
	require.NotNil(active)
	assert.Equal(tk.ID, active.ID)
	assert.True(client.Guest())
}

func TestSingleActiveTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	var activated []string
	var mu sync.Mutex
	client := newTestClient(t, lib.Config{OnTaskActivated: func(tk lib.Task) {
		mu.Lock()
		defer mu.Unlock()
		activated = append(activated, tk.Title)
	}})

	_, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: "first"})
	require.NoError(err)
	_, err = client.CreateTask(ctx, lib.CreateTaskOpts{Title: "second"})
	require.NoError(err)

	_, err = client.MoveTask(ctx, "first", lib.TaskStatusDoing)
	require.NoError(err)
	_, err = client.MoveTask(ctx, "second", lib.TaskStatusDoing)
	require.NoError(err)

	doing, err := client.ListTasks(ctx, &lib.ListTasksOpts{Status: statusPtr(lib.TaskStatusDoing)})
	require.NoError(err)
	require.Len(doing, 1)
	assert.Equal("second", doing[0].Title)

	todo, err := client.ListTasks(ctx, &lib.ListTasksOpts{Status: statusPtr(lib.TaskStatusTodo)})
	require.NoError(err)
	require.Len(todo, 1)
	assert.Equal("first", todo[0].Title)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal([]string{"first", "second"}, activated)
}

func TestUpdateTask(t *testing.T) {
	tests := map[string]struct {
		ref     string
		opts    lib.UpdateTaskOpts
		expIs   error
		expTask func(t *testing.T, got lib.Task)
	}{
		"Updating a task by title should work.": {
			ref:  "write report",
			opts: lib.UpdateTaskOpts{Status: statusPtr(lib.TaskStatusDone)},
			expTask: func(t *testing.T, got lib.Task) {
				assert.Equal(t, lib.TaskStatusDone, got.Status)
				assert.NotNil(t, got.CompletedAt)
			},
		},

		"Updating a missing task should fail.": {
			ref:   "missing",
			opts:  lib.UpdateTaskOpts{Status: statusPtr(lib.TaskStatusDone)},
			expIs: lib.ErrNotFound,
		},

		"Updating without changes should fail.": {
			ref:   "write report",
			expIs: lib.ErrNotValid,
		},

		"Updating to an unknown status should fail.": {
			ref:   "write report",
			opts:  lib.UpdateTaskOpts{Status: statusPtr("blocked")},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			client := newTestClient(t, lib.Config{})
			_, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: "write report"})
			require.NoError(err)

			got, err := client.UpdateTask(ctx, test.ref, test.opts)
			if test.expIs != nil {
				assert.ErrorIs(err, test.expIs)
				return
			}
			require.NoError(err)
			test.expTask(t, *got)
		})
	}
}

func TestRemoveTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, lib.Config{})
	tk, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: "remove me", Start: true})
	require.NoError(err)

	removed, err := client.RemoveTask(ctx, tk.ID[:8])
	require.NoError(err)
	assert.Equal(tk.ID, removed.ID)

	active, err := client.ActiveTask(ctx)
	require.NoError(err)
	assert.Nil(active)

	_, err = client.RemoveTask(ctx, tk.ID)
	assert.ErrorIs(err, lib.ErrNotFound)
}

func TestAccountClientsAreIsolated(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pomo.db")

	alice := newAccountClient(t, "alice", dbPath)
	bob := newAccountClient(t, "bob", dbPath)
	assert.False(alice.Guest())

	_, err := alice.CreateTask(ctx, lib.CreateTaskOpts{Title: "alice task"})
	require.NoError(err)

	tasks, err := bob.ListTasks(ctx, nil)
	require.NoError(err)
	assert.Empty(tasks)

	_, err = bob.MoveTask(ctx, "alice task", lib.TaskStatusDoing)
	assert.ErrorIs(err, lib.ErrNotFound)
}

func TestWatchSyncsAccountClients(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dbPath := filepath.Join(t.TempDir(), "pomo.db")

	desktop := newAccountClient(t, "alice", dbPath)
	phone := newAccountClient(t, "alice", dbPath)

	watchErr := make(chan error, 1)
	go func() { watchErr <- desktop.Watch(ctx) }()
	// Let the watcher read the initial revision.
	time.Sleep(50 * time.Millisecond)

	_, err := phone.CreateTask(ctx, lib.CreateTaskOpts{Title: "from phone", Start: true})
	require.NoError(err)

	require.Eventually(func() bool {
		active, err := desktop.ActiveTask(ctx)
		return err == nil && active != nil && active.Title == "from phone"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(<-watchErr)
}

func TestStats(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, lib.Config{})
	for _, title := range []string{"a", "b", "c"} {
		_, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: title})
		require.NoError(err)
	}
	_, err := client.MoveTask(ctx, "a", lib.TaskStatusDone)
	require.NoError(err)
	_, err = client.MoveTask(ctx, "b", lib.TaskStatusDoing)
	require.NoError(err)

	st, err := client.Stats(ctx)
	require.NoError(err)
	assert.Equal(1, st.Todo)
	assert.Equal(1, st.Doing)
	assert.Equal(1, st.Done)
	require.Len(st.CompletedByDay, 1)
	require.Len(st.CompletedByDay[0].Tasks, 1)
	assert.Equal("a", st.CompletedByDay[0].Tasks[0].Title)
}

func TestExportAndClearGuest(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	guest := newTestClient(t, lib.Config{DataDir: dir})
	tk, err := guest.CreateTask(ctx, lib.CreateTaskOpts{Title: "guest task", Start: true})
	require.NoError(err)

	// An account client still reaches the guest board of its data dir.
	account := newTestClient(t, lib.Config{DataDir: dir, AccountID: "alice", DBPath: filepath.Join(t.TempDir(), "pomo.db")})
	exp, err := account.ExportGuest(ctx)
	require.NoError(err)
	require.Len(exp.Tasks, 1)
	assert.Equal(tk.ID, exp.CurrentTaskID)

	var buf bytes.Buffer
	require.NoError(guest.ExportGuestJSON(ctx, &buf))
	var raw map[string]any
	require.NoError(json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(tk.ID, raw["currentTaskId"])
	assert.Len(raw["tasks"], 1)

	require.NoError(guest.ClearGuest(ctx))
	tasks, err := guest.ListTasks(ctx, nil)
	require.NoError(err)
	assert.Empty(tasks)

	_, err = os.Stat(filepath.Join(dir, "tasks.json"))
	assert.True(os.IsNotExist(err))
}

func TestTimerSettings(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, lib.Config{})

	tm, err := client.TimerStatus(ctx)
	require.NoError(err)
	assert.Equal(25, tm.Settings.WorkMinutes)
	assert.Equal(25*time.Minute, tm.State.Remaining)
	assert.Equal(lib.SessionKindWork, tm.State.Session)

	file := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(os.WriteFile(file, []byte("work_minutes: 50\nshort_break_minutes: 10\n"), 0o644))

	tm, err = client.UpdateTimerSettings(ctx, lib.UpdateTimerSettingsOpts{
		File:             file,
		LongBreakMinutes: intPtr(30),
		WorkMinutes:      intPtr(45),
	})
	require.NoError(err)
	assert.Equal(45, tm.Settings.WorkMinutes)
	assert.Equal(10, tm.Settings.ShortBreakMinutes)
	assert.Equal(30, tm.Settings.LongBreakMinutes)
	assert.Equal(45*time.Minute, tm.State.Remaining)

	tm, err = client.UpdateTimerSettings(ctx, lib.UpdateTimerSettingsOpts{WorkMinutes: intPtr(0)})
	require.NoError(err)
	assert.Equal(25, tm.Settings.WorkMinutes)

	tm, err = client.ResetTimer(ctx, true)
	require.NoError(err)
	assert.Equal(0, tm.State.CompletedWorkSessions)
	assert.Equal(25*time.Minute, tm.State.Remaining)
}

func TestFocus(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	clock := lib.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	client := newTestClient(t, lib.Config{Clock: clock})

	_, err := client.UpdateTimerSettings(ctx, lib.UpdateTimerSettingsOpts{WorkMinutes: intPtr(1), ShortBreakMinutes: intPtr(1)})
	require.NoError(err)
	_, err = client.CreateTask(ctx, lib.CreateTaskOpts{Title: "deep work", Start: true})
	require.NoError(err)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			if clock.Fire() == 0 {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	var sessions []lib.Session
	res, err := client.Focus(ctx, lib.FocusOpts{
		Intervals: 2,
		OnSession: func(s lib.Session) { sessions = append(sessions, s) },
	})
	close(done)
	require.NoError(err)

	require.Len(res.Sessions, 2)
	assert.Equal(sessions, res.Sessions)
	assert.Equal(lib.SessionKindWork, res.Sessions[0].Kind)
	assert.True(res.Sessions[0].Attributed)
	assert.Equal(lib.SessionKindBreak, res.Sessions[1].Kind)
	assert.False(res.Sessions[1].Attributed)
	assert.Equal(0, res.Failed)

	active, err := client.ActiveTask(ctx)
	require.NoError(err)
	require.NotNil(active)
	assert.Equal(time.Minute, active.Focus)

	tm, err := client.TimerStatus(ctx)
	require.NoError(err)
	assert.Equal(1, tm.State.CompletedWorkSessions)
	assert.Equal(lib.SessionKindWork, tm.State.Session)
}
