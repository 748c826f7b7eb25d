package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/auth"
	"github.com/slackfocus/slackfocus/internal/output"
)

// NewAuthCmd creates the auth command and its subcommands.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Slack credentials",
		Long:  "Log in with a Slack user token, inspect the stored identity, or log out.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Slack user token",
		Long: `Validate a Slack user token against auth.test and store it in the
system keychain (or a locked file when no keychain is available).

The token can be passed with --token, piped on stdin, or typed at the
prompt. Create one at https://api.slack.com/apps with the stars:read,
stars:write, users:read, and channels:read scopes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)

			if token == "" {
				var err error
				token, err = readToken()
				if err != nil {
					return err
				}
			}
			if token == "" {
				return output.ErrUsageHint("No token provided", "Pass --token or pipe the token on stdin")
			}

			identity, err := app.Slack.AuthTestWithToken(ctx, token)
			if err != nil {
				return err
			}

			creds := &auth.Credentials{
				Token:     token,
				UserID:    identity.UserID,
				Team:      identity.Team,
				Workspace: identity.Workspace,
				SavedAt:   time.Now().Unix(),
			}
			if err := app.Auth.Login(creds); err != nil {
				return err
			}

			return app.OK(identity, output.WithSummary(
				fmt.Sprintf("Logged in as %s (%s)", identity.User, identity.Team),
			))
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Slack user token (xoxp-...)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			return app.OK(map[string]bool{"logged_out": true},
				output.WithSummary("Credentials removed"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)

			creds, err := app.Auth.Stored()
			if err != nil || creds == nil || creds.Token == "" {
				return output.ErrAuth("Not logged in")
			}

			// Re-validate so a revoked token shows up here, not mid-import.
			identity, err := app.Slack.AuthTest(ctx)
			if err != nil {
				return err
			}

			return app.OK(identity, output.WithSummary(
				fmt.Sprintf("Logged in as %s (%s)", identity.User, identity.Team),
			))
		},
	}
}

// readToken reads a token from stdin, prompting when attached to a terminal.
func readToken() (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", output.ErrUsage("Cannot read token from stdin")
	}
	if (fi.Mode() & os.ModeCharDevice) != 0 {
		fmt.Fprint(os.Stderr, "Slack user token: ")
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", output.ErrUsage("Cannot read token from stdin")
	}
	return strings.TrimSpace(line), nil
}
