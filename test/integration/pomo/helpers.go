package pomo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/pomo/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "pomo"
	}

	// go test changes the CWD to the test package directory, relative paths would not resolve.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("POMO_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("pomo binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "POMO_INTEGRATION"
		envBinary     = "POMO_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Board is the storage a command runs against.
type Board struct {
	DataDir   string
	DBPath    string
	AccountID string
}

func (b Board) args() []string {
	args := []string{"--data-dir", b.DataDir}
	if b.AccountID != "" {
		args = append(args, "--account", b.AccountID, "--db-path", b.DBPath)
	}
	return args
}

// RunPomoCmd runs a pomo command against the board with logging disabled.
func RunPomoCmd(ctx context.Context, config Config, board Board, cmdArgs ...string) (stdout, stderr []byte, err error) {
	args := append(board.args(), cmdArgs...)
	return testutils.RunPomoArgs(ctx, nil, config.Binary, args, true)
}

// RunTaskAdd adds a task.
func RunTaskAdd(ctx context.Context, config Config, board Board, title string, start bool) (stdout, stderr []byte, err error) {
	args := []string{"task", "add", title, "--format", "json"}
	if start {
		args = append(args, "--start")
	}
	return RunPomoCmd(ctx, config, board, args...)
}

// RunTaskMove moves a task to another column.
func RunTaskMove(ctx context.Context, config Config, board Board, ref, status string) (stdout, stderr []byte, err error) {
	return RunPomoCmd(ctx, config, board, "task", "move", ref, status, "--format", "json")
}

// RunTaskList lists the tasks in JSON format.
func RunTaskList(ctx context.Context, config Config, board Board) (stdout, stderr []byte, err error) {
	return RunPomoCmd(ctx, config, board, "task", "list", "--format", "json")
}

// RunTimerSettings changes the timer settings.
func RunTimerSettings(ctx context.Context, config Config, board Board, flags ...string) (stdout, stderr []byte, err error) {
	args := append([]string{"timer", "settings", "--format", "json"}, flags...)
	return RunPomoCmd(ctx, config, board, args...)
}

// RunGuestExport exports the guest board.
func RunGuestExport(ctx context.Context, config Config, board Board) (stdout, stderr []byte, err error) {
	return RunPomoCmd(ctx, config, board, "guest", "export")
}

// RunGuestClear clears the guest board.
func RunGuestClear(ctx context.Context, config Config, board Board) (stdout, stderr []byte, err error) {
	return RunPomoCmd(ctx, config, board, "guest", "clear", "--yes")
}
