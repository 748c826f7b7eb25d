package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/dateparse"
	"github.com/slackfocus/slackfocus/internal/output"
	"github.com/slackfocus/slackfocus/internal/reschedule"
)

// NewRescheduleCmd creates the reschedule command.
func NewRescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <project> [date]",
		Short: "Push overdue deferred tasks forward",
		Long: `Find every task in an OmniFocus project whose defer date has passed
and move it to a new date (today when no date is given).

A task is overdue when its defer date is before the start of today and it
is not completed. Nested tasks and sub-projects are included.`,
		Example: `  slackfocus reschedule "Weekly Review"
  slackfocus reschedule "Weekly Review" tomorrow
  slackfocus reschedule Errands +3d
  slackfocus reschedule Errands 2025-07-01`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)

			expr := "today"
			if len(args) == 2 {
				expr = args[1]
			}
			target, err := dateparse.Resolve(expr, time.Now())
			if err != nil {
				return err
			}

			result := reschedule.New(app.Store, nil).Reschedule(ctx, args[0], target)
			if !result.Success {
				return result.Err
			}

			summary := fmt.Sprintf("Rescheduled %d task(s) to %s", result.RescheduledCount, dateparse.Format(target))
			if result.RescheduledCount == 0 {
				summary = "No overdue tasks in " + args[0]
			}
			return app.OK(result, output.WithSummary(summary))
		},
	}
}
