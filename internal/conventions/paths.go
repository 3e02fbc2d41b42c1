package conventions

import (
	"path/filepath"
	"time"
)

const (
	// DefaultDataDir is the default pomo data directory name (relative to home).
	DefaultDataDir = ".pomo"

	// Local (guest) blobs.

	// TasksFile is the filename of the guest task board blob.
	TasksFile = "tasks.json"
	// TimerFile is the filename of the timer settings and state blob.
	TimerFile = "timer.json"

	// Remote (account) store.

	// DBFile is the default filename of the account database.
	DBFile = "pomo.db"
	// DefaultWatchInterval is how often the account store is polled for changes.
	DefaultWatchInterval = 2 * time.Second
)

// TasksFilePath returns the path of the guest task board blob.
func TasksFilePath(dataDir string) string {
	return filepath.Join(dataDir, TasksFile)
}

// TimerFilePath returns the path of the timer blob.
func TimerFilePath(dataDir string) string {
	return filepath.Join(dataDir, TimerFile)
}

// DBPath returns the default path of the account database.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
