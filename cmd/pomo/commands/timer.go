package commands

import (
	"github.com/alecthomas/kingpin/v2"
)

// NewTimerCommand returns the timer parent command.
func NewTimerCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("timer", "Manage the focus timer.")
}
