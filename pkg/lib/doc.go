// Package lib provides a Go SDK for the pomo task board and focus timer.
//
// This package allows applications to manage tasks and run pomodoro focus
// sessions without shelling out to the pomo CLI binary.
//
// # Quick Start
//
// Create a client, add a task and focus on it:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Create a task and make it the active one.
//	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{Title: "write report", Start: true})
//
//	// Run a work interval and the following break.
//	res, err := client.Focus(ctx, lib.FocusOpts{Intervals: 2})
//
// # Storage
//
// Without an account the board is stored in the guest files of
// [Config].DataDir. Setting [Config].AccountID stores the board in the account
// database instead, where every task is scoped to the account. Use
// [Client.Watch] to keep a client in sync with the other clients of the same
// account.
//
// The guest board can be exported with [Client.ExportGuest] to migrate it to
// an account, and removed afterwards with [Client.ClearGuest].
//
// # Active task
//
// At most one task is doing at any time. Moving a task to doing moves the
// previous active task back to todo. Completed work sessions of a focus run
// are logged to the active task, breaks are never attributed to a task.
//
// # Timer
//
// The timer settings and state are stored in the data dir, a focus run
// resumes from where the previous one stopped. Use [Client.TimerStatus],
// [Client.ResetTimer] and [Client.UpdateTimerSettings] to manage it.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: The task does not exist.
//   - [ErrAlreadyExists]: The resource already exists.
//   - [ErrNotValid]: Invalid input (e.g. an empty title or an ambiguous task reference).
//   - [ErrUnauthorized]: The task belongs to another account.
//   - [ErrBackend]: The storage failed, the operation had no effect.
//
// # Testing
//
// Use a temporary data dir and a [ManualClock] to drive focus runs in tests:
//
//	clock := lib.NewManualClock(time.Now())
//	client, _ := lib.New(ctx, lib.Config{DataDir: t.TempDir(), Clock: clock})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
