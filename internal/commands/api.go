package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/output"
)

// NewAPICmd creates the api command for raw Slack Web API access.
func NewAPICmd() *cobra.Command {
	var jqExpr string

	cmd := &cobra.Command{
		Use:   "api <method> [key=value ...]",
		Short: "Call a Slack API method directly",
		Long: `Call any Slack Web API method with the stored token. Parameters are
given as key=value pairs. Useful for methods not covered by dedicated
commands.`,
		Example: `  slackfocus api auth.test
  slackfocus api stars.list limit=10
  slackfocus api users.info user=U12345678 --jq .user.profile.display_name`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)

			method := args[0]
			params := url.Values{}
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return output.ErrUsageHint(
						fmt.Sprintf("Invalid parameter %q", arg),
						"Parameters are key=value pairs",
					)
				}
				params.Set(key, value)
			}

			raw, err := app.Slack.CallRaw(ctx, method, params)
			if err != nil {
				return err
			}

			var data any
			if err := json.Unmarshal(raw, &data); err != nil {
				return output.ErrAPI(0, method+": unparseable response")
			}

			if jqExpr != "" {
				data, err = applyJQ(jqExpr, data)
				if err != nil {
					return err
				}
			}

			return app.OK(data, output.WithSummary(method))
		},
	}

	cmd.Flags().StringVar(&jqExpr, "jq", "", "Filter the response through a jq expression")

	return cmd
}

// applyJQ runs a jq expression over data. A single result is returned as-is,
// multiple results as a slice.
func applyJQ(expr string, data any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint(
			fmt.Sprintf("Invalid jq expression: %v", err),
			"See https://jqlang.org/manual/ for syntax",
		)
	}

	var results []any
	iter := query.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, output.ErrUsage(fmt.Sprintf("jq: %v", err))
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
