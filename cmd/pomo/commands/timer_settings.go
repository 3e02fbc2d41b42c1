package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/pomo/internal/app/timersettings"
	"github.com/slok/pomo/internal/storage/io"
)

type TimerSettingsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file                    string
	workMinutes             int
	shortBreakMinutes       int
	longBreakMinutes        int
	sessionsBeforeLongBreak int
	sound                   bool
	format                  string

	workSet     bool
	shortSet    bool
	longSet     bool
	sessionsSet bool
	soundSet    bool
}

// NewTimerSettingsCommand returns the timer settings command.
func NewTimerSettingsCommand(rootCmd *RootCommand, timerCmd *kingpin.CmdClause) *TimerSettingsCommand {
	c := &TimerSettingsCommand{rootCmd: rootCmd}

	c.Cmd = timerCmd.Command("settings", "Change the timer settings, values below their minimum use the defaults.")
	c.Cmd.Flag("file", "Settings YAML file, the flags override its values.").Short('f').StringVar(&c.file)
	c.Cmd.Flag("work", "Work interval minutes.").IsSetByUser(&c.workSet).IntVar(&c.workMinutes)
	c.Cmd.Flag("short-break", "Short break minutes.").IsSetByUser(&c.shortSet).IntVar(&c.shortBreakMinutes)
	c.Cmd.Flag("long-break", "Long break minutes.").IsSetByUser(&c.longSet).IntVar(&c.longBreakMinutes)
	c.Cmd.Flag("long-break-every", "Work sessions before a long break.").IsSetByUser(&c.sessionsSet).IntVar(&c.sessionsBeforeLongBreak)
	c.Cmd.Flag("sound", "Ring when an interval finishes.").IsSetByUser(&c.soundSet).BoolVar(&c.sound)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TimerSettingsCommand) Name() string { return c.Cmd.FullCommand() }

func (c TimerSettingsCommand) Run(ctx context.Context) error {
	req := timersettings.Request{}
	if c.workSet {
		req.WorkMinutes = &c.workMinutes
	}
	if c.shortSet {
		req.ShortBreakMinutes = &c.shortBreakMinutes
	}
	if c.longSet {
		req.LongBreakMinutes = &c.longBreakMinutes
	}
	if c.sessionsSet {
		req.SessionsBeforeLongBreak = &c.sessionsBeforeLongBreak
	}
	if c.soundSet {
		req.SoundEnabled = &c.sound
	}

	if c.file != "" {
		// The loader reads from the root filesystem, use an absolute path without the leading slash.
		path, err := filepath.Abs(c.file)
		if err != nil {
			return fmt.Errorf("could not resolve settings file path: %w", err)
		}
		req.File = path[1:]
	}

	repo, err := newTimerRepository(c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := timersettings.NewService(timersettings.ServiceConfig{
		Repository:     repo,
		SettingsLoader: io.NewSettingsYAMLRepository(os.DirFS("/")),
		Logger:         c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	snap, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not update timer settings: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTimer(*snap); err != nil {
		return fmt.Errorf("could not print timer: %w", err)
	}

	return nil
}
