package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/pomo/cmd/pomo/commands"
	"github.com/slok/pomo/internal/log"
	loglogrus "github.com/slok/pomo/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("pomo", "Pomodoro timer and task board.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	focusCmd := commands.NewFocusCommand(rootCmd, app)
	statsCmd := commands.NewStatsCommand(rootCmd, app)

	// Task subcommands share a parent command.
	taskCmd := commands.NewTaskCommand(app)
	taskAddCmd := commands.NewTaskAddCommand(rootCmd, taskCmd)
	taskListCmd := commands.NewTaskListCommand(rootCmd, taskCmd)
	taskMoveCmd := commands.NewTaskMoveCommand(rootCmd, taskCmd)
	taskEditCmd := commands.NewTaskEditCommand(rootCmd, taskCmd)
	taskRmCmd := commands.NewTaskRmCommand(rootCmd, taskCmd)

	// Timer subcommands share a parent command.
	timerCmd := commands.NewTimerCommand(app)
	timerStatusCmd := commands.NewTimerStatusCommand(rootCmd, timerCmd)
	timerResetCmd := commands.NewTimerResetCommand(rootCmd, timerCmd)
	timerSettingsCmd := commands.NewTimerSettingsCommand(rootCmd, timerCmd)

	// Guest subcommands share a parent command.
	guestCmd := commands.NewGuestCommand(app)
	guestExportCmd := commands.NewGuestExportCommand(rootCmd, guestCmd)
	guestClearCmd := commands.NewGuestClearCommand(rootCmd, guestCmd)

	cmds := map[string]commands.Command{
		focusCmd.Name():         focusCmd,
		statsCmd.Name():         statsCmd,
		taskAddCmd.Name():       taskAddCmd,
		taskListCmd.Name():      taskListCmd,
		taskMoveCmd.Name():      taskMoveCmd,
		taskEditCmd.Name():      taskEditCmd,
		taskRmCmd.Name():        taskRmCmd,
		timerStatusCmd.Name():   timerStatusCmd,
		timerResetCmd.Name():    timerResetCmd,
		timerSettingsCmd.Name(): timerSettingsCmd,
		guestExportCmd.Name():   guestExportCmd,
		guestClearCmd.Name():    guestClearCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that print tables or JSON run quiet unless --debug is set.
	printerCommands := map[string]bool{
		"task list":    true,
		"timer status": true,
		"stats":        true,
		"guest export": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	rootCmd.Logger = newLogger(*rootCmd)

	return runCommand(ctx, cmdName, cmds[cmdName], rootCmd.Logger)
}

// runCommand runs the command until it ends or a termination signal arrives,
// a focus run needs the signal to stop and save the timer.
func runCommand(ctx context.Context, name string, cmd commands.Command, logger log.Logger) error {
	var g run.Group

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer signalCancel()
	g.Add(func() error {
		<-signalCtx.Done()
		logger.Debugf("Termination signal received")
		return nil
	}, func(error) { signalCancel() })

	cmdCtx, cmdCancel := context.WithCancel(ctx)
	defer cmdCancel()
	g.Add(func() error {
		if err := cmd.Run(cmdCtx); err != nil {
			return fmt.Errorf("%q command failed: %w", name, err)
		}
		return nil
	}, func(error) { cmdCancel() })

	return g.Run()
}

func newLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	l := logrus.New()
	l.Out = config.Stderr
	if config.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	switch config.LoggerType {
	case commands.LoggerTypeJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	}

	kv := log.Kv{"version": Version}
	if config.AccountID != "" {
		kv["account"] = config.AccountID
	}
	logger := loglogrus.NewLogrus(logrus.NewEntry(l)).WithValues(kv)
	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	if err := Run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
