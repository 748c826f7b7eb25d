package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/importer"
	"github.com/slackfocus/slackfocus/internal/output"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	var (
		dryRun bool
		remove bool
		limit  int
		tags   []string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import saved Slack items as OmniFocus tasks",
		Long: `Fetch every saved (starred) item from Slack and create one OmniFocus
task per item. Message text goes into the task name, with author, channel,
full text, and permalink preserved in the note.

Tasks land in the configured project, or the inbox when none is set.`,
		Example: `  slackfocus import
  slackfocus import --dry-run
  slackfocus import --remove --limit 10
  slackfocus import --project "Slack Inbox" --tag slack`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)
			cfg := app.Config

			allTags := cfg.DefaultTags
			if len(tags) > 0 {
				allTags = tags
			}

			formatter := importer.NewFormatter(
				app.Names,
				cfg.TitlePrefix,
				cfg.DefaultProject,
				allTags,
				cfg.AppendPermalink(),
			)

			run := importer.New(app.Slack, app.Store, formatter, importer.Options{
				PageSize: cfg.PageSize,
				Limit:    limit,
				DryRun:   dryRun,
				Remove:   remove || cfg.RemoveAfterImport,
			})

			stats, err := run.Run(ctx)
			if err != nil {
				return err
			}

			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			summary := fmt.Sprintf("%s %d of %d saved item(s)", verb, stats.TasksCreated, stats.ItemsFound)
			return app.OK(stats, output.WithSummary(summary))
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be imported without creating tasks")
	cmd.Flags().BoolVar(&remove, "remove", false, "Unsave each item in Slack after its task is created")
	cmd.Flags().IntVar(&limit, "limit", 0, "Import at most N items (0 = no limit)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to apply to created tasks (repeatable, overrides config)")

	return cmd
}
