package printer

import (
	"github.com/slok/pomo/internal/app/stats"
	"github.com/slok/pomo/internal/model"
)

// Printer knows how to print the board and timer information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintTimer(snap model.TimerSnapshot) error
	PrintStats(st stats.Stats) error
	PrintMessage(msg string) error
}
