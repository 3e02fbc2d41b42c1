package lib

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/pomo/internal/conventions"
	"github.com/slok/pomo/internal/log"
	"github.com/slok/pomo/internal/model"
	"github.com/slok/pomo/internal/storage"
	"github.com/slok/pomo/internal/storage/local"
	"github.com/slok/pomo/internal/storage/sqlite"
	"github.com/slok/pomo/internal/task"
	"github.com/slok/pomo/internal/timer"
	"github.com/slok/pomo/internal/tracker"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses the guest (local) storage
// under ~/.pomo.
type Config struct {
	// AccountID is the signed in account. When set, the tasks are stored in
	// the account scoped database and kept in sync with other clients of the
	// same account. Empty uses the guest storage.
	AccountID string

	// DataDir is the base directory for the guest data and the timer.
	// Default: ~/.pomo.
	DataDir string

	// DBPath is the account database path.
	// Default: <DataDir>/pomo.db.
	DBPath string

	// WatchInterval is how often the account database is checked for
	// changes made by other clients.
	// Default: 2s.
	WatchInterval time.Duration

	// Clock drives the focus timer.
	// Default: wall clock. Use [NewManualClock] in tests.
	Clock Clock

	// OnTaskActivated is called when a task becomes the active one.
	OnTaskActivated func(Task)

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.WatchInterval <= 0 {
		c.WatchInterval = conventions.DefaultWatchInterval
	}

	if c.Clock == nil {
		c.Clock = timer.RealClock
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	accountID string
	dataDir   string
	guestRepo *local.TaskRepository
	store     *task.Store
	tracker   *tracker.Service
	timerRepo *local.TimerRepository
	clock     timer.Clock
	logger    log.Logger
	closeFn   func() error
}

// New creates a new SDK client and loads the task board.
//
// The caller must call [Client.Close] when done:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backend, closeFn, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, mapError(err)
	}

	var events task.EventSink
	if cfg.OnTaskActivated != nil {
		events = task.EventSinkFunc(func(t model.Task) { cfg.OnTaskActivated(fromInternalTask(t)) })
	}

	store, err := task.NewStore(task.StoreConfig{
		Backend: backend,
		Events:  events,
		Logger:  cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create task store: %w", err)
	}
	if err := store.Load(ctx); err != nil {
		_ = closeFn()
		return nil, mapError(fmt.Errorf("could not load tasks: %w", err))
	}

	trk, err := tracker.NewService(tracker.ServiceConfig{Store: store, Logger: cfg.Logger})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}

	timerRepo, err := local.NewTimerRepository(local.TimerRepositoryConfig{
		DataDir: cfg.DataDir,
		Logger:  cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create timer repository: %w", err)
	}

	guestRepo, _ := backend.(*local.TaskRepository)

	return &Client{
		accountID: cfg.AccountID,
		dataDir:   cfg.DataDir,
		guestRepo: guestRepo,
		store:     store,
		tracker:   trk,
		timerRepo: timerRepo,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		closeFn:   closeFn,
	}, nil
}

// newBackend selects the storage strategy: the account database when signed
// in, the guest files otherwise.
func newBackend(ctx context.Context, cfg Config) (storage.Backend, func() error, error) {
	if cfg.AccountID == "" {
		repo, err := local.NewTaskRepository(local.TaskRepositoryConfig{
			DataDir: cfg.DataDir,
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create guest repository: %w", err)
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath:        cfg.DBPath,
		AccountID:     cfg.AccountID,
		WatchInterval: cfg.WatchInterval,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create account repository: %w", err)
	}
	return repo, repo.Close, nil
}

// Guest returns true when the client uses the guest storage.
func (c *Client) Guest() bool { return c.accountID == "" }

// Watch keeps the task board in sync with the changes made by other clients
// of the same account. It blocks until the context is cancelled. For guest
// clients it only waits for the cancellation.
func (c *Client) Watch(ctx context.Context) error {
	return mapError(c.store.Watch(ctx))
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
