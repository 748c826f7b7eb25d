package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/config"
	"github.com/slackfocus/slackfocus/internal/output"
)

// checkResult is one doctor check.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// doctorReport is the full doctor output.
type doctorReport struct {
	Healthy bool          `json:"healthy"`
	Checks  []checkResult `json:"checks"`
}

// RenderLines implements output.LineRenderer.
func (r doctorReport) RenderLines() []string {
	var lines []string
	for _, c := range r.Checks {
		mark := "ok"
		if !c.OK {
			mark = "FAIL"
		}
		line := fmt.Sprintf("[%s] %s", mark, c.Name)
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		lines = append(lines, line)
	}
	return lines
}

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that everything is set up",
		Long: `Run environment checks: platform, config, Slack credentials, and
OmniFocus scripting access. Exits non-zero when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appctx.FromContext(ctx)

			report := doctorReport{Healthy: true}
			add := func(name string, err error, okDetail string) {
				c := checkResult{Name: name, OK: err == nil, Detail: okDetail}
				if err != nil {
					c.Detail = err.Error()
					report.Healthy = false
				}
				report.Checks = append(report.Checks, c)
			}

			add("platform", checkPlatform(), runtime.GOOS)
			add("config", nil, config.GlobalConfigPath())
			add("slack token", checkToken(app), "")

			identity, err := app.Slack.AuthTest(ctx)
			detail := ""
			if identity != nil {
				detail = fmt.Sprintf("%s (%s)", identity.User, identity.Team)
			}
			add("slack api", err, detail)

			add("osascript", checkOsascript(), "")
			add("omnifocus", checkOmniFocus(ctx, app), "")

			summary := "All checks passed"
			if !report.Healthy {
				summary = "Some checks failed"
			}
			if err := app.OK(report, output.WithSummary(summary)); err != nil {
				return err
			}
			if !report.Healthy {
				return output.ErrUsage("doctor found problems")
			}
			return nil
		},
	}
}

func checkPlatform() error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("OmniFocus scripting requires macOS, running on %s", runtime.GOOS)
	}
	return nil
}

func checkToken(app *appctx.App) error {
	_, err := app.Auth.Token()
	return err
}

func checkOsascript() error {
	if _, err := exec.LookPath("osascript"); err != nil {
		return fmt.Errorf("osascript not found in PATH")
	}
	return nil
}

func checkOmniFocus(ctx context.Context, app *appctx.App) error {
	pinger, ok := app.Store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}
