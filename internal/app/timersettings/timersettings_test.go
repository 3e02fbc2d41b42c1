package timersettings_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/app/timersettings"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage/io"
	"github.com/slok/pomo/internal/storage/local"
)

func ptr[T any](v T) *T { return &v }

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config timersettings.ServiceConfig
		expErr bool
	}{
		"missing repository should fail": {
			config: timersettings.ServiceConfig{SettingsLoader: io.NewSettingsYAMLRepository(fstest.MapFS{})},
			expErr: true,
		},
		"missing loader should fail": {
			config: timersettings.ServiceConfig{Repository: &local.TimerRepository{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := timersettings.NewService(test.config)
			assert.Equal(t, test.expErr, err != nil)
		})
	}
}

func TestService_Run(t *testing.T) {
	files := fstest.MapFS{
		"pomo.yaml": {Data: []byte("work_minutes: 50\nshort_break_minutes: 10\nsound_enabled: false\n")},
		"bad.yaml":  {Data: []byte("work_minutes: [\n")},
	}

	tests := map[string]struct {
		stored *model.TimerSnapshot
		req    timersettings.Request
		exp    model.TimerSnapshot
		expErr bool
	}{
		"settings from a file": {
			req: timersettings.Request{File: "pomo.yaml"},
			exp: model.TimerSnapshot{
				Settings: model.TimerSettings{WorkMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 15, SessionsBeforeLongBreak: 4},
				State:    model.TimerState{RemainingSeconds: 3000, IntervalSeconds: 3000, CurrentCycle: 1},
			},
		},
		"fields should override the file": {
			req: timersettings.Request{File: "pomo.yaml", WorkMinutes: ptr(40), SoundEnabled: ptr(true)},
			exp: model.TimerSnapshot{
				Settings: model.TimerSettings{WorkMinutes: 40, ShortBreakMinutes: 10, LongBreakMinutes: 15, SessionsBeforeLongBreak: 4, SoundEnabled: true},
				State:    model.TimerState{RemainingSeconds: 2400, IntervalSeconds: 2400, CurrentCycle: 1},
			},
		},
		"a paused break should be recomputed with the new settings": {
			stored: &model.TimerSnapshot{
				Settings: model.DefaultTimerSettings(),
				State:    model.TimerState{RemainingSeconds: 100, IntervalSeconds: 300, IsBreak: true, CompletedWorkSessions: 1, CurrentCycle: 1},
			},
			req: timersettings.Request{ShortBreakMinutes: ptr(7)},
			exp: model.TimerSnapshot{
				Settings: model.TimerSettings{WorkMinutes: 25, ShortBreakMinutes: 7, LongBreakMinutes: 15, SessionsBeforeLongBreak: 4, SoundEnabled: true},
				State:    model.TimerState{RemainingSeconds: 420, IntervalSeconds: 420, IsBreak: true, CompletedWorkSessions: 1, CurrentCycle: 1},
			},
		},
		"values below the minimum should be normalized": {
			req: timersettings.Request{WorkMinutes: ptr(0), SessionsBeforeLongBreak: ptr(1)},
			exp: model.TimerSnapshot{
				Settings: model.DefaultTimerSettings(),
				State:    model.TimerState{RemainingSeconds: 1500, IntervalSeconds: 1500, CurrentCycle: 1},
			},
		},
		"an invalid file should fail": {
			req:    timersettings.Request{File: "bad.yaml"},
			expErr: true,
		},
		"a missing file should fail": {
			req:    timersettings.Request{File: "missing.yaml"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := local.NewTimerRepository(local.TimerRepositoryConfig{DataDir: t.TempDir()})
			require.NoError(err)
			if test.stored != nil {
				require.NoError(repo.SaveTimer(ctx, *test.stored))
			}

			svc, err := timersettings.NewService(timersettings.ServiceConfig{
				Repository:     repo,
				SettingsLoader: io.NewSettingsYAMLRepository(files),
			})
			require.NoError(err)

			got, err := svc.Run(ctx, test.req)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(err)
			assert.Equal(t, test.exp, *got)

			stored, err := repo.GetTimer(ctx)
			require.NoError(err)
			assert.Equal(t, test.exp, *stored)
		})
	}
}
