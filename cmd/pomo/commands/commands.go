package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/pomo/internal/conventions"
	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/printer"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/storage/local"
	"github.com/slok/pomo/internal/storage/sqlite"
	"github.com/slok/pomo/internal/task"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug         bool
	NoLog         bool
	NoColor       bool
	LoggerType    string
	DataDir       string
	AccountID     string
	DBPath        string
	WatchInterval time.Duration

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Directory of the guest board and the timer.").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("account", "Signed in account ID, empty uses the guest board.").StringVar(&c.AccountID)
	app.Flag("db-path", "Path to the account SQLite database file (default: <data-dir>/pomo.db).").StringVar(&c.DBPath)
	app.Flag("watch-interval", "How often the account board is checked for changes of other clients.").Default(conventions.DefaultWatchInterval.String()).DurationVar(&c.WatchInterval)

	return c
}

// newTaskStore returns the loaded task store of the selected board: the
// account database when an account is set, the guest files otherwise. The
// returned function releases the storage.
func newTaskStore(ctx context.Context, rootCmd *RootCommand) (*task.Store, func() error, error) {
	logger := rootCmd.Logger

	var backend storage.Backend
	closeFn := func() error { return nil }
	if rootCmd.AccountID == "" {
		repo, err := newGuestRepository(rootCmd)
		if err != nil {
			return nil, nil, err
		}
		backend = repo
	} else {
		dbPath := rootCmd.DBPath
		if dbPath == "" {
			dbPath = conventions.DBPath(rootCmd.DataDir)
		}
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath:        dbPath,
			AccountID:     rootCmd.AccountID,
			WatchInterval: rootCmd.WatchInterval,
			Logger:        logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create repository: %w", err)
		}
		backend = repo
		closeFn = repo.Close
	}

	store, err := task.NewStore(task.StoreConfig{
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("could not create task store: %w", err)
	}

	if err := store.Load(ctx); err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("could not load tasks: %w", err)
	}

	return store, closeFn, nil
}

func newGuestRepository(rootCmd *RootCommand) (*local.TaskRepository, error) {
	repo, err := local.NewTaskRepository(local.TaskRepositoryConfig{
		DataDir: rootCmd.DataDir,
		Logger:  rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create guest repository: %w", err)
	}
	return repo, nil
}

func newTimerRepository(rootCmd *RootCommand) (*local.TimerRepository, error) {
	repo, err := local.NewTimerRepository(local.TimerRepositoryConfig{
		DataDir: rootCmd.DataDir,
		Logger:  rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create timer repository: %w", err)
	}
	return repo, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}

func addFormatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// parseStatus parses a board column name.
func parseStatus(s string) (model.TaskStatus, error) {
	status := model.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status: %s (must be: todo, doing, done)", s)
	}
	return status, nil
}
