package commands

import (
	"github.com/alecthomas/kingpin/v2"
)

// NewGuestCommand returns the guest parent command.
func NewGuestCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("guest", "Manage the guest board, stored locally when not signed in.")
}
