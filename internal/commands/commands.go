package commands

import (
	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/output"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []string `json:"actions,omitempty"`
}

// commandCatalog returns the machine-readable command list.
func commandCatalog() []CommandInfo {
	return []CommandInfo{
		{Name: "reschedule", Description: "Push overdue deferred tasks forward"},
		{Name: "import", Description: "Import saved Slack items as OmniFocus tasks"},
		{Name: "auth", Description: "Manage Slack credentials", Actions: []string{"login", "logout", "status"}},
		{Name: "config", Description: "Manage configuration", Actions: []string{"show", "path", "set", "unset"}},
		{Name: "api", Description: "Call a Slack API method directly"},
		{Name: "doctor", Description: "Check that everything is set up"},
		{Name: "commands", Description: "List available commands"},
	}
}

// NewCommandsCmd creates the commands command, a machine-readable catalog
// for shell completion and scripting.
func NewCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "commands",
		Short:  "List available commands",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			return app.OK(commandCatalog(), output.WithSummary("Available commands"))
		},
	}
}

// All returns every top-level command.
func All() []*cobra.Command {
	return []*cobra.Command{
		NewRescheduleCmd(),
		NewImportCmd(),
		NewAuthCmd(),
		NewConfigCmd(),
		NewAPICmd(),
		NewDoctorCmd(),
		NewCommandsCmd(),
	}
}
