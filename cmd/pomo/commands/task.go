package commands

import (
	"github.com/alecthomas/kingpin/v2"
)

// NewTaskCommand returns the task parent command.
func NewTaskCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("task", "Manage the task board.")
}
